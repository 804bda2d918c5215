package cli

import (
	"time"

	"codeberg.org/snonux/rsstranslator/internal/config"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	PublicDir    string
	DataDir      string
	RegistryFile string
	CacheBackend string
	FetchTimeout time.Duration

	// Translation flags
	Provider string
	Model    string
	Language string

	// translate flags
	FeedName string

	// add flags
	AddName string
	AddURL  string
	AddFile string
	NoProbe bool

	// serve flags
	ServerAddr string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		PublicDir:    config.DefaultPublicDir,
		DataDir:      config.DefaultDataDir,
		CacheBackend: config.CacheBackendJSON,
		Provider:     config.ProviderOpenAI,
		Language:     config.DefaultLanguage,
		ServerAddr:   config.DefaultServerAddr,
	}
}
