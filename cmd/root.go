package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/teams-token-grabber/internal/app"
	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals // The exit code is produced by a command and consumed by Execute.
	exitCode = app.ExitCodeSuccess

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "teams-token-grabber",
		Short: "Acquire Microsoft Teams access tokens through a real browser session.",
		Long: `Teams Token Grabber drives a Chrome session on a persistent profile until the
Teams web client has obtained an access token for every configured resource,
then prints the tokens as JSON or YAML.

Run 'auth login' once to sign in interactively, then 'auth refresh' to renew
the tokens headlessly for as long as the saved session stays valid.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command and exits the process with the command's exit code.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	// Commands observe the cancelled context and close the browser before returning,
	// so Execute waits for them instead of exiting on the signal.
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorf(ctx, "%v", err)

		exitCode = app.ExitCodeFailure
	}

	stop()

	_ = logger.Logger().Sync()

	os.Exit(exitCode)
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", version.Full()))

	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)

	return nil
}
