package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/domain/deployment"
)

// Config holds everything needed to deploy one Lambda function.
type Config struct {
	// FunctionName is the Lambda function to create or update.
	FunctionName string `yaml:"function_name"`
	// ArchivePath is the zip package to deploy.
	ArchivePath string `yaml:"archive"`
	// Role is the IAM execution role ARN.
	Role string `yaml:"role"`
	// Handler is the function entry point within the package.
	Handler string `yaml:"handler"`
	// Runtime is the Lambda runtime identifier.
	Runtime string `yaml:"runtime"`
	// Description is attached to newly created functions.
	Description string `yaml:"description,omitempty"`
	// Region overrides the AWS region from the environment.
	Region string `yaml:"region,omitempty"`
	// S3Bucket stages the archive in S3 when set.
	S3Bucket string `yaml:"s3_bucket,omitempty"`
	// S3Key is the S3 object key; defaults to the archive file name.
	S3Key string `yaml:"s3_key,omitempty"`
	// Timeout is the function timeout in seconds.
	Timeout int32 `yaml:"timeout"`
	// MemorySize is the function memory in MB.
	MemorySize int32 `yaml:"memory"`
	// Publish requests a new version on code updates. Nil means true.
	Publish *bool `yaml:"publish,omitempty"`
	// Wait bounds waiting for the function to become ready after deploying.
	Wait time.Duration `yaml:"wait,omitempty"`
	// CallTimeout bounds each AWS API call.
	CallTimeout time.Duration `yaml:"call_timeout,omitempty"`
	// DryRun is set at runtime from the command line. It is not persisted.
	DryRun bool `yaml:"-"`
}

const (
	// DefaultHandler is the entry point used when none is configured.
	DefaultHandler = "lambda_function.lambda_handler"

	// DefaultRuntime is the runtime used when none is configured.
	DefaultRuntime = "python3.9"

	// DefaultDescription is attached to functions created by this tool.
	DefaultDescription = "Deployed via lambda-deploy"

	// DefaultTimeout is the function timeout in seconds.
	DefaultTimeout int32 = 30

	// DefaultMemorySize is the function memory in MB.
	DefaultMemorySize int32 = 128

	// DefaultCallTimeout bounds a single AWS API call.
	DefaultCallTimeout = 2 * time.Minute

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errFunctionNameRequired is returned when the function name is missing.
	errFunctionNameRequired = errors.New("function name must be provided")
	// errRoleRequired is returned when the execution role is missing.
	errRoleRequired = errors.New("execution role must be provided")
	// errNegativeValue is returned for negative numeric settings.
	errNegativeValue = errors.New("value must not be negative")
	// errNonPositiveValue is returned when the timeout or memory size is not above zero.
	errNonPositiveValue = errors.New("value must be positive")
)

// New returns a Config populated with defaults.
func New() *Config {
	publish := true

	return &Config{
		ArchivePath: archive.DefaultFilename,
		Handler:     DefaultHandler,
		Runtime:     DefaultRuntime,
		Description: DefaultDescription,
		Timeout:     DefaultTimeout,
		MemorySize:  DefaultMemorySize,
		Publish:     &publish,
		CallTimeout: DefaultCallTimeout,
	}
}

// Load reads configuration from path. Missing fields keep their defaults.
// The result is not validated: flags may still fill required fields.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := New()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return cfg, nil
}

// Save validates cfg and writes it to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for unset ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.FunctionName == "" {
		return errFunctionNameRequired
	}

	if cfg.Role == "" {
		return errRoleRequired
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout %d: %w", cfg.Timeout, errNonPositiveValue)
	}

	if cfg.MemorySize <= 0 {
		return fmt.Errorf("memory %d: %w", cfg.MemorySize, errNonPositiveValue)
	}

	if cfg.Wait < 0 || cfg.CallTimeout < 0 {
		return fmt.Errorf("wait and call timeout: %w", errNegativeValue)
	}

	if cfg.ArchivePath == "" {
		cfg.ArchivePath = archive.DefaultFilename
	}

	if cfg.Handler == "" {
		cfg.Handler = DefaultHandler
	}

	if cfg.Runtime == "" {
		cfg.Runtime = DefaultRuntime
	}

	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}

	if cfg.Publish == nil {
		publish := true
		cfg.Publish = &publish
	}

	if cfg.S3Bucket != "" && cfg.S3Key == "" {
		cfg.S3Key = filepath.Base(cfg.ArchivePath)
	}

	return nil
}

// Request converts a validated Config into a deployment request.
func (c *Config) Request() *deployment.Request {
	return &deployment.Request{
		FunctionName: c.FunctionName,
		ArchivePath:  c.ArchivePath,
		Role:         c.Role,
		Handler:      c.Handler,
		Runtime:      c.Runtime,
		Description:  c.Description,
		Region:       c.Region,
		S3Bucket:     c.S3Bucket,
		S3Key:        c.S3Key,
		Timeout:      c.Timeout,
		MemorySize:   c.MemorySize,
		WaitTimeout:  c.Wait,
		Publish:      c.Publish == nil || *c.Publish,
		DryRun:       c.DryRun,
	}
}
