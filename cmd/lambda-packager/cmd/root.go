package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/packager"
	"github.com/oshokin/lambda-deploy/internal/version"
)

// newRootCommand builds the lambda-packager command tree.
func newRootCommand() *cobra.Command {
	var (
		// archivePath is where the zip package is written.
		archivePath string
		// logLevel is the minimum level of log messages.
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:          "lambda-packager [source]",
		Short:        "Package a handler file into a Lambda zip archive",
		Long:         "Wraps a single handler source file (default " + archive.DefaultSource + ") into a zip archive with one member, ready for lambda-deploy.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)
			logger.DebugKV(cmd.Context(), "Build information", version.KV()...)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ArchivePath: archivePath,
				Output:      cmd.OutOrStdout(),
			}

			if len(args) > 0 {
				options.Source = args[0]
			}

			return packager.Run(ctx, options)
		},
	}

	rootCmd.Flags().StringVarP(&archivePath, "output", "o", archive.DefaultFilename, "path of the zip archive to write")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// Execute runs the lambda-packager CLI and exits with non-zero status on error.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
