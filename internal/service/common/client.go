//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"

	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/domain/deployment"
	"github.com/oshokin/lambda-deploy/internal/version"
)

// FunctionAPI is the subset of the Lambda API used for deployments.
type FunctionAPI interface {
	GetFunction(
		ctx context.Context,
		params *lambda.GetFunctionInput,
		optFns ...func(*lambda.Options),
	) (*lambda.GetFunctionOutput, error)
	UpdateFunctionCode(
		ctx context.Context,
		params *lambda.UpdateFunctionCodeInput,
		optFns ...func(*lambda.Options),
	) (*lambda.UpdateFunctionCodeOutput, error)
	CreateFunction(
		ctx context.Context,
		params *lambda.CreateFunctionInput,
		optFns ...func(*lambda.Options),
	) (*lambda.CreateFunctionOutput, error)
}

// CodeStore stages deployment packages in S3.
type CodeStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	_ FunctionAPI = (*lambda.Client)(nil)
	_ FunctionAPI = (*Client)(nil)
	_ CodeStore   = (*s3.Client)(nil)
	_ CodeStore   = (*Client)(nil)
)

// Client wraps the Lambda and S3 clients with convenience helpers.
type Client struct {
	// functions is the Lambda API client.
	functions *lambda.Client
	// objects is the S3 API client used to stage archives.
	objects *s3.Client
	// region is the resolved AWS region.
	region string

	// callTimeout is the default timeout for individual API calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for API calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errNoRegion is returned when neither the flags nor the environment name a region.
	errNoRegion = errors.New("no region configured, pass --region or set AWS_REGION")
	// errNoCredentialsProvider is returned when the loaded config carries no credentials provider.
	errNoCredentialsProvider = errors.New("no credentials provider")
)

// NewClient loads the default AWS configuration and builds the API clients.
// An empty region defers to the environment and shared config files.
// Any problem that leaves the tool unable to talk to AWS is reported as
// deployment.ErrClientUnavailable.
func NewClient(ctx context.Context, region string, opts ...Option) (*Client, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithAPIOptions([]func(*middleware.Stack) error{
			awsmiddleware.AddUserAgentKeyValue(version.UserAgentKey, version.Short()),
		}),
	}

	if region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, deployment.NewUnavailableError("load aws config", err)
	}

	if cfg.Region == "" {
		return nil, deployment.NewUnavailableError("resolve region", errNoRegion)
	}

	client := &Client{
		functions:   lambda.NewFromConfig(cfg),
		objects:     s3.NewFromConfig(cfg),
		region:      cfg.Region,
		callTimeout: config.DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	if err = client.checkCredentials(ctx, cfg.Credentials); err != nil {
		return nil, err
	}

	return client, nil
}

// Region returns the region the client talks to.
func (c *Client) Region() string {
	return c.region
}

// GetFunction returns the function configuration and code location.
func (c *Client) GetFunction(
	ctx context.Context,
	params *lambda.GetFunctionInput,
	optFns ...func(*lambda.Options),
) (*lambda.GetFunctionOutput, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.functions.GetFunction(callCtx, params, optFns...)
}

// UpdateFunctionCode replaces the code of an existing function.
func (c *Client) UpdateFunctionCode(
	ctx context.Context,
	params *lambda.UpdateFunctionCodeInput,
	optFns ...func(*lambda.Options),
) (*lambda.UpdateFunctionCodeOutput, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.functions.UpdateFunctionCode(callCtx, params, optFns...)
}

// CreateFunction creates a new function.
func (c *Client) CreateFunction(
	ctx context.Context,
	params *lambda.CreateFunctionInput,
	optFns ...func(*lambda.Options),
) (*lambda.CreateFunctionOutput, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.functions.CreateFunction(callCtx, params, optFns...)
}

// PutObject uploads an object to S3.
func (c *Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.objects.PutObject(callCtx, params, optFns...)
}

// checkCredentials resolves credentials once so a missing setup fails before any deployment step.
func (c *Client) checkCredentials(ctx context.Context, provider aws.CredentialsProvider) error {
	if provider == nil {
		return deployment.NewUnavailableError("resolve credentials", errNoCredentialsProvider)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := provider.Retrieve(callCtx); err != nil {
		return deployment.NewUnavailableError("resolve credentials", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
