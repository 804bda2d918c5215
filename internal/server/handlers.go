package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/snonux/rsstranslator/internal"
	"codeberg.org/snonux/rsstranslator/internal/config"
	"codeberg.org/snonux/rsstranslator/internal/registry"
)

// Handler handles HTTP requests for the published files
type Handler struct {
	cfg     *config.Config
	started time.Time
}

// NewHandler creates a new handler serving cfg's public directory
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg, started: time.Now()}
}

// HealthCheck reports that the server is up
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": internal.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// GetFeed serves one translated feed document, /feed/<name>.xml
func (h *Handler) GetFeed(c *gin.Context) {
	file := c.Param("file")
	name, ok := strings.CutSuffix(file, ".xml")
	if !ok || !internal.ValidFeedName(name) {
		c.String(http.StatusNotFound, "feed not found")
		return
	}

	h.serveFile(c, h.cfg.OutputFile(name), "application/xml; charset=utf-8")
}

// GetOPML serves the aggregated subscription list
func (h *Handler) GetOPML(c *gin.Context) {
	h.serveFile(c, h.cfg.OPMLFile, "text/x-opml; charset=utf-8")
}

// GetRegistry serves the feed registry document
func (h *Handler) GetRegistry(c *gin.Context) {
	h.serveFile(c, h.cfg.RegistryFile, "application/json; charset=utf-8")
}

func (h *Handler) serveFile(c *gin.Context, path, contentType string) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to read file")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=300")
	c.File(path)
}

// feedStatus describes one registered feed in ListFeeds
type feedStatus struct {
	Name       string     `json:"name"`
	SourceURL  string     `json:"source_url"`
	FeedURL    string     `json:"feed_url"`
	Translated bool       `json:"translated"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ListFeeds lists the registered feeds and whether a translation exists
func (h *Handler) ListFeeds(c *gin.Context) {
	reg, err := registry.Load(h.cfg.RegistryFile)
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"feeds": []feedStatus{}, "count": 0})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	feeds := make([]feedStatus, 0, len(reg.Entries()))
	for _, e := range reg.Entries() {
		status := feedStatus{
			Name:      e.Name,
			SourceURL: e.URL,
			FeedURL:   h.cfg.FeedURL(e.Name),
		}
		if info, err := os.Stat(h.cfg.OutputFile(e.Name)); err == nil {
			modTime := info.ModTime().UTC()
			status.Translated = true
			status.UpdatedAt = &modTime
		}
		feeds = append(feeds, status)
	}

	c.JSON(http.StatusOK, gin.H{"feeds": feeds, "count": len(feeds)})
}
