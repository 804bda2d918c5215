package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/rsstranslator/internal/cli"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Without a subcommand translate everything
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runAll(cmd.Context())
	}

	runCmd := cli.CreateRunCommand()
	runCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runAll(cmd.Context())
	}

	translateCmd := cli.CreateTranslateCommand(flags)
	translateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return translateOne(cmd.Context(), flags.FeedName)
	}

	addCmd := cli.CreateAddCommand(flags)
	addCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if flags.AddFile != "" {
			return addFromFile(cmd.Context(), flags.AddFile, !flags.NoProbe)
		}
		return addFeed(cmd.Context(), flags.AddName, flags.AddURL, !flags.NoProbe)
	}

	buildCmd := cli.CreateBuildCommand()
	buildCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return buildRegistry()
	}

	opmlCmd := cli.CreateOPMLCommand()
	opmlCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeOPML()
	}

	serveCmd := cli.CreateServeCommand(flags)
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	}

	listModelsCmd := cli.CreateListModelsCommand()
	listModelsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return listModels(cmd.Context())
	}

	archiveCmd := cli.CreateArchiveCommand()
	archiveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return archiveCache()
	}

	rootCmd.AddCommand(runCmd, translateCmd, addCmd, buildCmd, opmlCmd, serveCmd, listModelsCmd, archiveCmd)

	// Stop between titles on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
