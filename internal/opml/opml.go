// Package opml builds the subscription list that points feed readers at
// every translated feed.
package opml

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"codeberg.org/snonux/rsstranslator/internal"
	"codeberg.org/snonux/rsstranslator/internal/config"
	"codeberg.org/snonux/rsstranslator/internal/registry"
)

// Document is an OPML 2.0 document
type Document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head is the OPML head element
type Head struct {
	Title string `xml:"title,omitempty"`
}

// Body is the OPML body element
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is a group (Outlines set) or a subscription (Type "rss")
type Outline struct {
	Text     string    `xml:"text,attr"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Build creates one outline group titled title holding one rss outline per
// entry, in registry order
func Build(title string, entries []registry.Entry, feedURL func(name string) string) *Document {
	group := Outline{Text: title}
	for _, e := range entries {
		group.Outlines = append(group.Outlines, Outline{
			Text:   e.Name,
			Type:   "rss",
			XMLURL: feedURL(e.Name),
		})
	}

	return &Document{
		Version: "2.0",
		Head:    Head{Title: title},
		Body:    Body{Outlines: []Outline{group}},
	}
}

// Marshal renders the document with an XML declaration and indentation
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode OPML: %w", err)
	}
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// Write builds the subscription list for entries and stores it at cfg.OPMLFile
func Write(cfg *config.Config, entries []registry.Entry) error {
	data, err := Build(cfg.OPMLTitle, entries, cfg.FeedURL).Marshal()
	if err != nil {
		return err
	}

	if err := internal.WriteFileAtomic(cfg.OPMLFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write OPML file: %w", err)
	}
	return nil
}
