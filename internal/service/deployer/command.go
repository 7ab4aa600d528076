package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/domain/deployment"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/common"
)

// ClientFactory builds the AWS clients for a live deployment.
type ClientFactory func(ctx context.Context, cfg *config.Config) (common.FunctionAPI, common.CodeStore, error)

// Options contains inputs for the deploy entry point.
type Options struct {
	// Config holds the effective settings (file values overlaid with flags).
	Config *config.Config
	// SaveConfigPath, when set, persists the effective settings after validation.
	SaveConfigPath string
	// Format selects the report format.
	Format Format
	// Output receives the report. Defaults to stdout.
	Output io.Writer
	// NewClients overrides how AWS clients are built. Defaults to common.NewClient.
	NewClients ClientFactory
}

// errConfigRequired is returned when Run is called without settings.
var errConfigRequired = errors.New("deploy settings are required")

// Run validates the settings, deploys the function and renders the result.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lambda-deploy")

	if opts == nil || opts.Config == nil {
		return errConfigRequired
	}

	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return deployment.NewError(deployment.KindValidation, "validate settings", err)
	}

	if opts.SaveConfigPath != "" {
		if err := config.Save(opts.SaveConfigPath, cfg); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}

		logger.InfoKV(ctx, "Saved deploy settings", "path", opts.SaveConfigPath)
	}

	req := cfg.Request()
	ctx = logger.WithKV(ctx, "function_name", req.FunctionName)

	warnUnknownRuntime(ctx, req.Runtime)

	d, err := newDeployer(ctx, cfg, opts.NewClients)
	if err != nil {
		logger.ErrorKV(ctx, "AWS client is not available", "error", err)
		return err
	}

	result, err := d.Deploy(ctx, req)
	if err != nil {
		if result != nil {
			ctx = logger.WithKV(ctx, "outcome", result.Outcome, "function_arn", result.FunctionArn)
		}

		logger.ErrorKV(ctx, "Deployment failed", "kind", deployment.KindOf(err), "error", err)

		return err
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	return Render(output, result, opts.Format)
}

// newDeployer builds the AWS clients for live runs only.
// A missing archive is reported before any client construction.
func newDeployer(ctx context.Context, cfg *config.Config, factory ClientFactory) (*Deployer, error) {
	if cfg.DryRun {
		return New(nil), nil
	}

	if err := CheckArchive(cfg.ArchivePath); err != nil {
		return nil, err
	}

	if factory == nil {
		factory = defaultClients
	}

	functions, store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return New(functions, WithCodeStore(store)), nil
}

func defaultClients(ctx context.Context, cfg *config.Config) (common.FunctionAPI, common.CodeStore, error) {
	client, err := common.NewClient(ctx, cfg.Region, common.WithCallTimeout(cfg.CallTimeout))
	if err != nil {
		return nil, nil, err
	}

	logger.DebugKV(ctx, "AWS client ready", "region", client.Region())

	return client, client, nil
}

// warnUnknownRuntime flags runtimes missing from the SDK's enum; newer runtimes may still be valid.
func warnUnknownRuntime(ctx context.Context, runtime string) {
	if slices.Contains(lambdatypes.Runtime("").Values(), lambdatypes.Runtime(runtime)) {
		return
	}

	logger.WarnKV(ctx, "Runtime is not known to this build, deploying anyway", "runtime", runtime)
}
