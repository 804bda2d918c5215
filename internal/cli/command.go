package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/rsstranslator/internal"
)

// CreateRootCommand creates and configures the root cobra command. Without a
// subcommand the root translates every registered feed.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rsstranslator",
		Short: "RSS/Atom feed title translator",
		Long: `rsstranslator fetches RSS and Atom feeds, translates the item titles
with a large language model and publishes the translated feeds together
with an OPML subscription list.

Translations are cached per feed, so unchanged titles are never sent to
the translation service twice.

Examples:
  rsstranslator                                  # Translate all registered feeds
  rsstranslator translate --name hacker_news     # Translate a single feed
  rsstranslator add -u https://go.dev/blog/feed.atom
  rsstranslator serve                            # Publish the translated feeds`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateRunCommand creates the command translating all registered feeds
func CreateRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Translate all registered feeds",
		Args:  cobra.NoArgs,
	}
}

// CreateTranslateCommand creates the command translating one feed
func CreateTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a single registered feed",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&flags.FeedName, "name", "n", "", "Name of the registered feed")
	cmd.MarkFlagRequired("name")
	return cmd
}

// CreateAddCommand creates the command registering new feeds
func CreateAddCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a feed and rebuild the OPML",
		Long: `Register a feed and rebuild the OPML subscription list.

The URL is downloaded and parsed first, only RSS and Atom feeds are
accepted. Without --name the feed title provides the name.

A feed file holds one feed per line, either "URL" or "name = URL".`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&flags.AddName, "name", "n", "", "Feed name (default: derived from the feed title)")
	cmd.Flags().StringVarP(&flags.AddURL, "url", "u", "", "Feed URL")
	cmd.Flags().StringVarP(&flags.AddFile, "file", "f", "", "Register feeds from file (one per line)")
	cmd.Flags().BoolVar(&flags.NoProbe, "no-probe", false, "Register without downloading the feed first")
	cmd.MarkFlagsOneRequired("url", "file")
	cmd.MarkFlagsMutuallyExclusive("url", "file")
	cmd.MarkFlagsMutuallyExclusive("name", "file")
	return cmd
}

// CreateBuildCommand creates the command resetting the registry
func CreateBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Reset the feed registry to the default feed list and rebuild the OPML",
		Args:  cobra.NoArgs,
	}
}

// CreateOPMLCommand creates the command rebuilding the OPML
func CreateOPMLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "opml",
		Short: "Rebuild the OPML subscription list from the feed registry",
		Args:  cobra.NoArgs,
	}
}

// CreateServeCommand creates the command publishing the public directory
func CreateServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translated feeds and the OPML over HTTP",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&flags.ServerAddr, "addr", flags.ServerAddr, "Listen address")
	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// CreateListModelsCommand creates the command listing chat models
func CreateListModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List chat models of the configured provider for the current API key",
		Args:  cobra.NoArgs,
	}
}

// CreateArchiveCommand creates the command rotating the cache directory
func CreateArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move the translation cache directory to a timestamped archive",
		Args:  cobra.NoArgs,
	}
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.rsstranslator.yaml)")
	cmd.PersistentFlags().StringVar(&flags.PublicDir, "public", flags.PublicDir, "Output directory for translated feeds and the OPML")
	cmd.PersistentFlags().StringVar(&flags.DataDir, "data", flags.DataDir, "Translation cache directory")
	cmd.PersistentFlags().StringVar(&flags.RegistryFile, "registry", "", "Feed registry file (default is <public>/feeds_list.json)")
	cmd.PersistentFlags().StringVar(&flags.CacheBackend, "cache-backend", flags.CacheBackend, "Translation cache backend: json or sqlite")
	cmd.PersistentFlags().DurationVar(&flags.FetchTimeout, "fetch-timeout", 0, "Feed download timeout (0 keeps the transport default)")

	// Translation flags
	cmd.PersistentFlags().StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Translation provider: openai or gemini")
	cmd.PersistentFlags().StringVarP(&flags.Model, "model", "m", "", "Translation model (default depends on the provider)")
	cmd.PersistentFlags().StringVarP(&flags.Language, "language", "l", flags.Language, "Target language as BCP 47 tag (e.g. zh, ja, de)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("paths.public", cmd.PersistentFlags().Lookup("public"))
	viper.BindPFlag("paths.data", cmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("paths.registry", cmd.PersistentFlags().Lookup("registry"))
	viper.BindPFlag("cache.backend", cmd.PersistentFlags().Lookup("cache-backend"))
	viper.BindPFlag("fetch.timeout", cmd.PersistentFlags().Lookup("fetch-timeout"))
	viper.BindPFlag("translation.provider", cmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("translation.language", cmd.PersistentFlags().Lookup("language"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".rsstranslator" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rsstranslator")
	}

	// Environment variables, e.g. RSSTRANSLATOR_TRANSLATION_LANGUAGE
	viper.SetEnvPrefix("RSSTRANSLATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
