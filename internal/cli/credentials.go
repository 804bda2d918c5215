package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"codeberg.org/snonux/rsstranslator/internal/config"
)

// Credentials is the content of the credentials file
type Credentials struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

// LoadCredentials reads the credentials file. A missing file yields empty
// credentials.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	return &creds, nil
}

// GetAPIKey retrieves the provider's API key from environment or config
func GetAPIKey(provider string) string {
	// First check environment variable
	if key := os.Getenv(config.APIKeyEnv(provider)); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.api_key")
}

// LoadConfig builds the run configuration from viper and fills in the API
// key and base URL from the credentials file when they are not configured
func LoadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}

	cfg.APIKey = GetAPIKey(cfg.Provider)
	if cfg.APIKey != "" && cfg.BaseURL != "" {
		return cfg, nil
	}

	creds, err := LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = creds.APIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = creds.BaseURL
	}

	return cfg, nil
}
