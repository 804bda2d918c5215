package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/rsstranslator/internal"
)

// Translation providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Cache backends
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// Default values
const (
	DefaultPublicDir          = "www"
	DefaultDataDir            = "data"
	DefaultCredentialsFile    = "ai_key.json"
	DefaultOpenAIModel        = "gpt-3.5-turbo"
	DefaultGeminiModel        = "gemini-2.0-flash"
	DefaultLanguage           = "zh"
	DefaultTranslationTimeout = 60 * time.Second
	DefaultMaxTitleLength     = 200
	DefaultBreakerFailures    = 5
	DefaultSiteURL            = "https://tools.yamcloud.com/rss_translator/feed/"
	DefaultOPMLTitle          = "Translated RSS"
	DefaultServerAddr         = ":8080"
)

// Config holds everything a run needs. It is built once at startup and
// passed by pointer into the components.
type Config struct {
	PublicDir       string
	DataDir         string
	RegistryFile    string
	OPMLFile        string
	CredentialsFile string

	Provider           string
	Model              string
	Language           string
	APIKey             string
	BaseURL            string
	TranslationTimeout time.Duration
	MaxTitleLength     int
	BreakerFailures    uint32

	CacheBackend string
	SQLitePath   string

	FetchTimeout time.Duration
	UserAgent    string

	SiteURL    string
	OPMLTitle  string
	ServerAddr string
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paths.public", DefaultPublicDir)
	v.SetDefault("paths.data", DefaultDataDir)
	v.SetDefault("paths.credentials", DefaultCredentialsFile)
	v.SetDefault("translation.provider", ProviderOpenAI)
	v.SetDefault("translation.language", DefaultLanguage)
	v.SetDefault("translation.timeout", DefaultTranslationTimeout)
	v.SetDefault("translation.max_title_length", DefaultMaxTitleLength)
	v.SetDefault("translation.breaker_failures", DefaultBreakerFailures)
	v.SetDefault("cache.backend", CacheBackendJSON)
	v.SetDefault("fetch.timeout", time.Duration(0))
	v.SetDefault("fetch.user_agent", "rsstranslator/"+internal.Version)
	v.SetDefault("site.url", DefaultSiteURL)
	v.SetDefault("opml.title", DefaultOPMLTitle)
	v.SetDefault("server.addr", DefaultServerAddr)
}

// FromViper builds a Config from v. Paths that depend on other paths are
// derived here when they are not set explicitly.
func FromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		PublicDir:          v.GetString("paths.public"),
		DataDir:            v.GetString("paths.data"),
		RegistryFile:       v.GetString("paths.registry"),
		OPMLFile:           v.GetString("paths.opml"),
		CredentialsFile:    v.GetString("paths.credentials"),
		Provider:           strings.ToLower(v.GetString("translation.provider")),
		Model:              v.GetString("translation.model"),
		Language:           v.GetString("translation.language"),
		APIKey:             v.GetString("translation.api_key"),
		BaseURL:            v.GetString("translation.base_url"),
		TranslationTimeout: v.GetDuration("translation.timeout"),
		MaxTitleLength:     v.GetInt("translation.max_title_length"),
		BreakerFailures:    v.GetUint32("translation.breaker_failures"),
		CacheBackend:       strings.ToLower(v.GetString("cache.backend")),
		SQLitePath:         v.GetString("cache.sqlite_path"),
		FetchTimeout:       v.GetDuration("fetch.timeout"),
		UserAgent:          v.GetString("fetch.user_agent"),
		SiteURL:            v.GetString("site.url"),
		OPMLTitle:          v.GetString("opml.title"),
		ServerAddr:         v.GetString("server.addr"),
	}

	if cfg.RegistryFile == "" {
		cfg.RegistryFile = filepath.Join(cfg.PublicDir, "feeds_list.json")
	}
	if cfg.OPMLFile == "" {
		cfg.OPMLFile = filepath.Join(cfg.PublicDir, "translated.opml")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "translations.db")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// APIKeyEnv returns the environment variable holding the provider's API key
func APIKeyEnv(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown translation provider: %q (valid: openai, gemini)", c.Provider)
	}

	switch c.CacheBackend {
	case CacheBackendJSON, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache backend: %q (valid: json, sqlite)", c.CacheBackend)
	}

	if c.Language == "" {
		return fmt.Errorf("target language must not be empty")
	}
	if c.TranslationTimeout <= 0 {
		return fmt.Errorf("translation timeout must be positive, got %s", c.TranslationTimeout)
	}
	if c.MaxTitleLength <= 0 {
		return fmt.Errorf("max title length must be positive, got %d", c.MaxTitleLength)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative, got %s", c.FetchTimeout)
	}

	return nil
}

// OutputFile returns the translated feed document of a feed
func (c *Config) OutputFile(feedName string) string {
	return filepath.Join(c.PublicDir, feedName+".xml")
}

// FeedURL returns the public address of a translated feed
func (c *Config) FeedURL(feedName string) string {
	return c.SiteURL + feedName + ".xml"
}
