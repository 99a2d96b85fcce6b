package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/teams-token-grabber/internal/app"
	"github.com/oshokin/teams-token-grabber/internal/config"
)

const (
	flagTimeout    = "timeout"
	flagHeadless   = "headless"
	flagFresh      = "fresh"
	flagProfileDir = "profile-dir"
	flagOutput     = "output"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var (
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Acquire and manage Teams access tokens",
		Long: `Acquire Teams access tokens through a browser session on a persistent profile.

On success the tokens are printed to stdout and nothing else is written there.
Exit codes: 0 on success, 1 on timeout or failure, 3 when the saved session
has expired and a headless refresh cannot renew it.`,
		PersistentPreRunE: initConfig,
	}

	authLoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in through a visible browser window and print the tokens",
		Long: `Opens Chrome on the persistent profile at the Teams web client.

Complete the sign-in in the window, including any multi-factor prompt. The
command finishes as soon as the web client holds a token for every configured
resource, and the session stays in the profile for later headless refreshes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = app.ExecuteAuthCommand(cmd.Context(), appConfig, cmd.OutOrStdout())

			return nil
		},
	}

	authRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Renew the tokens headlessly from the saved session",
		Long: `Starts Chrome without a window on the persistent profile and waits for the
Teams web client to renew its tokens from the saved session.

When the session has expired the command exits with code 3; run 'auth login'
to sign in again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = app.ExecuteAuthCommand(cmd.Context(), appConfig, cmd.OutOrStdout())

			return nil
		},
	}

	authResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Delete the persistent browser profile",
		Long: `Deletes the browser profile holding the saved session, cookies and token cache.
The next 'auth login' starts from a blank profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exitCode = app.ExecuteResetCommand(cmd.Context(), appConfig)

			return nil
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	addRunFlags(authLoginCmd.Flags(), false)
	addRunFlags(authRefreshCmd.Flags(), true)

	authResetCmd.Flags().String(flagProfileDir, "", "browser profile directory (default is the state directory)")

	authCmd.AddCommand(authLoginCmd, authRefreshCmd, authResetCmd)

	rootCmd.AddCommand(authCmd)
}

func addRunFlags(flags *pflag.FlagSet, headless bool) {
	flags.IntP(
		flagTimeout,
		"t",
		int(config.DefaultTimeout.Seconds()),
		"seconds to wait for a complete token set")

	flags.Bool(
		flagHeadless,
		headless,
		"run the browser without a window")

	flags.Bool(
		flagFresh,
		false,
		"delete the browser profile before launching")

	flags.String(
		flagProfileDir,
		"",
		"browser profile directory (default is the state directory)")

	flags.StringP(
		flagOutput,
		"o",
		"",
		"payload format: json or yaml (default is the configured format)")
}

// bindFlagsToConfig applies command-line flags on top of the loaded configuration and validates the result.
// The headless and fresh flags always apply because their defaults differ per command.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup(flagTimeout); flag != nil && flag.Changed {
		seconds, _ := flags.GetInt(flagTimeout)
		cfg.Timeout = (time.Duration(seconds) * time.Second).String()
	}

	if flags.Lookup(flagHeadless) != nil {
		cfg.Headless, _ = flags.GetBool(flagHeadless)
	}

	if flags.Lookup(flagFresh) != nil {
		cfg.ForceFresh, _ = flags.GetBool(flagFresh)
	}

	if flag := flags.Lookup(flagProfileDir); flag != nil && flag.Changed {
		cfg.ProfileDir, _ = flags.GetString(flagProfileDir)
	}

	if flag := flags.Lookup(flagOutput); flag != nil && flag.Changed {
		cfg.OutputFormat, _ = flags.GetString(flagOutput)
	}

	return config.ValidateConfig(cfg)
}
