package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/deployer"
	"github.com/oshokin/lambda-deploy/internal/version"
)

// flags collects raw command-line values before they are layered over the settings file.
type flags struct {
	configPath     string
	saveConfigPath string
	output         string
	logLevel       string

	functionName string
	archivePath  string
	role         string
	handler      string
	runtime      string
	description  string
	region       string
	s3Bucket     string
	s3Key        string
	timeout      int32
	memorySize   int32
	publish      bool
	dryRun       bool
	wait         time.Duration
	callTimeout  time.Duration
}

// newRootCommand builds the lambda-deploy command tree and the flag values it binds.
//
//nolint:funlen // Flag declarations are long but flat.
func newRootCommand() (*cobra.Command, *flags) {
	values := new(flags)

	rootCmd := &cobra.Command{
		Use:   "lambda-deploy",
		Short: "Deploy or update an AWS Lambda function.",
		Long: `Deploys a zip package to AWS Lambda.

The function code is updated first; when Lambda reports that the function does
not exist, it is created with the given runtime, role, handler, timeout and memory.
Settings can come from a YAML file (--config); flags given on the command line win.
With --dry-run nothing is sent to AWS and the planned deployment is printed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(values.logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", values.logLevel)
			}

			logger.SetLevel(level)
			logger.DebugKV(cmd.Context(), "Build information", version.KV()...)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			format, err := deployer.ParseFormat(values.output)
			if err != nil {
				return err
			}

			cfg, err := buildConfig(cmd, values)
			if err != nil {
				return err
			}

			options := &deployer.Options{
				Config:         cfg,
				SaveConfigPath: values.saveConfigPath,
				Format:         format,
				Output:         cmd.OutOrStdout(),
			}

			return deployer.Run(ctx, options)
		},
	}

	// Setup command flags with consistent naming and descriptions.
	fs := rootCmd.Flags()
	fs.StringVarP(&values.configPath, "config", "c", "", "path to a YAML settings file")
	fs.StringVar(&values.saveConfigPath, "save-config", "", "write the effective settings to this YAML file")
	fs.StringVarP(&values.output, "output", "o", string(deployer.FormatText), "report format: text or yaml")

	fs.StringVarP(&values.functionName, "function-name", "f", "", "name of the Lambda function (required)")
	fs.StringVarP(&values.archivePath, "zip", "z", archive.DefaultFilename, "path to the Lambda zip package")
	fs.StringVarP(&values.role, "role", "r", "",
		"IAM role ARN for the function, e.g. arn:aws:iam::123456789012:role/lambda-role (required)")
	fs.StringVar(&values.handler, "handler", config.DefaultHandler, "function handler (module.function)")
	fs.StringVar(&values.runtime, "runtime", config.DefaultRuntime, "Lambda runtime")
	fs.StringVar(&values.description, "description", config.DefaultDescription, "description for new functions")
	fs.Int32Var(&values.timeout, "timeout", config.DefaultTimeout, "function timeout in seconds")
	fs.Int32Var(&values.memorySize, "memory", config.DefaultMemorySize, "function memory in MB")
	fs.BoolVar(&values.publish, "publish", true, "publish a new version when updating code")
	fs.BoolVar(&values.dryRun, "dry-run", false, "print the planned deployment without calling AWS")
	fs.StringVar(&values.region, "region", "", "AWS region (defaults to the AWS environment)")
	fs.StringVar(&values.s3Bucket, "s3-bucket", "", "stage the package in this S3 bucket before deploying")
	fs.StringVar(&values.s3Key, "s3-key", "", "S3 object key for the staged package (defaults to the zip file name)")
	fs.DurationVar(&values.wait, "wait", 0, "wait up to this long for the function to become ready (0 disables)")
	fs.DurationVar(&values.callTimeout, "call-timeout", config.DefaultCallTimeout, "timeout for each AWS API call")

	rootCmd.PersistentFlags().StringVar(&values.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd, values
}

// buildConfig loads the settings file, if any, and overlays the flags set on the command line.
func buildConfig(cmd *cobra.Command, values *flags) (*config.Config, error) {
	cfg := config.New()

	if values.configPath != "" {
		loaded, err := config.Load(values.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	changed := cmd.Flags().Changed

	overlay := []struct {
		flag  string
		apply func()
	}{
		{"function-name", func() { cfg.FunctionName = values.functionName }},
		{"zip", func() { cfg.ArchivePath = values.archivePath }},
		{"role", func() { cfg.Role = values.role }},
		{"handler", func() { cfg.Handler = values.handler }},
		{"runtime", func() { cfg.Runtime = values.runtime }},
		{"description", func() { cfg.Description = values.description }},
		{"region", func() { cfg.Region = values.region }},
		{"s3-bucket", func() { cfg.S3Bucket = values.s3Bucket }},
		{"s3-key", func() { cfg.S3Key = values.s3Key }},
		{"timeout", func() { cfg.Timeout = values.timeout }},
		{"memory", func() { cfg.MemorySize = values.memorySize }},
		{"publish", func() { cfg.Publish = &values.publish }},
		{"wait", func() { cfg.Wait = values.wait }},
		{"call-timeout", func() { cfg.CallTimeout = values.callTimeout }},
	}

	for _, item := range overlay {
		if changed(item.flag) {
			item.apply()
		}
	}

	cfg.DryRun = values.dryRun

	return cfg, nil
}

// Execute runs the lambda-deploy CLI and exits with non-zero status on error.
func Execute() {
	rootCmd, _ := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
