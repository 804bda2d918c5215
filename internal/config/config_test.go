package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"PublicDir", cfg.PublicDir, "www"},
		{"DataDir", cfg.DataDir, "data"},
		{"RegistryFile", cfg.RegistryFile, filepath.Join("www", "feeds_list.json")},
		{"OPMLFile", cfg.OPMLFile, filepath.Join("www", "translated.opml")},
		{"CredentialsFile", cfg.CredentialsFile, "ai_key.json"},
		{"Provider", cfg.Provider, "openai"},
		{"Model", cfg.Model, "gpt-3.5-turbo"},
		{"Language", cfg.Language, "zh"},
		{"TranslationTimeout", cfg.TranslationTimeout, 60 * time.Second},
		{"MaxTitleLength", cfg.MaxTitleLength, 200},
		{"BreakerFailures", cfg.BreakerFailures, uint32(5)},
		{"CacheBackend", cfg.CacheBackend, "json"},
		{"SQLitePath", cfg.SQLitePath, filepath.Join("data", "translations.db")},
		{"FetchTimeout", cfg.FetchTimeout, time.Duration(0)},
		{"SiteURL", cfg.SiteURL, DefaultSiteURL},
		{"OPMLTitle", cfg.OPMLTitle, "Translated RSS"},
		{"ServerAddr", cfg.ServerAddr, ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !strings.HasPrefix(cfg.UserAgent, "rsstranslator/") {
		t.Errorf("Unexpected user agent: %s", cfg.UserAgent)
	}
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("paths.public", "/srv/public")
	v.Set("paths.data", "/srv/data")
	v.Set("translation.provider", "Gemini")
	v.Set("translation.timeout", "15s")
	v.Set("fetch.timeout", "30s")
	v.Set("cache.backend", "sqlite")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}

	if cfg.RegistryFile != filepath.Join("/srv/public", "feeds_list.json") {
		t.Errorf("Unexpected registry file: %s", cfg.RegistryFile)
	}
	if cfg.SQLitePath != filepath.Join("/srv/data", "translations.db") {
		t.Errorf("Unexpected sqlite path: %s", cfg.SQLitePath)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("Expected provider gemini, got %s", cfg.Provider)
	}
	if cfg.Model != DefaultGeminiModel {
		t.Errorf("Expected model %s, got %s", DefaultGeminiModel, cfg.Model)
	}
	if cfg.TranslationTimeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %s", cfg.TranslationTimeout)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected 30s fetch timeout, got %s", cfg.FetchTimeout)
	}
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"unknown provider", "translation.provider", "deepl"},
		{"unknown backend", "cache.backend", "redis"},
		{"empty language", "translation.language", ""},
		{"zero timeout", "translation.timeout", "0s"},
		{"zero title length", "translation.max_title_length", 0},
		{"negative fetch timeout", "fetch.timeout", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			if _, err := FromViper(v); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{
		PublicDir: "www",
		DataDir:   "data",
		SiteURL:   "https://example.com/feed/",
	}

	if got := cfg.OutputFile("hackernews"); got != filepath.Join("www", "hackernews.xml") {
		t.Errorf("OutputFile = %s", got)
	}
	if got := cfg.FeedURL("hackernews"); got != "https://example.com/feed/hackernews.xml" {
		t.Errorf("FeedURL = %s", got)
	}
}

func TestAPIKeyEnv(t *testing.T) {
	if got := APIKeyEnv(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnv(openai) = %s", got)
	}
	if got := APIKeyEnv(ProviderGemini); got != "GEMINI_API_KEY" {
		t.Errorf("APIKeyEnv(gemini) = %s", got)
	}
}
