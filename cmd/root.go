package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/assetbump/assetbump/pkg/buildinfo"
	"github.com/assetbump/assetbump/pkg/cdn"
	"github.com/assetbump/assetbump/pkg/exitcode"
	"github.com/assetbump/assetbump/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assetbump",
		Short: "Keep CDN-hosted static assets in your markup up to date",
		Long: `Assetbump scans a repository's markup files for <script> and <link> tags
referencing assets hosted on public CDNs, checks each referenced package for
newer published versions, rewrites the markup in place, and opens one pull
request per updated asset.

Examples:
   assetbump update                # scan, update, open pull requests
   assetbump update --dry-run      # compute updates without remote side effects
   assetbump version               # show version`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("assetbump {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the command tree and maps failures to exit codes.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	logger.Error("Command execution failed", logger.Err(err))

	var upstream *cdn.UpstreamError
	switch {
	case errors.As(err, &upstream):
		os.Exit(exitcode.NetworkError)
	default:
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "assetbump",
		DryRun:    dryRun,
	}

	if err := logger.Initialize(config); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}
