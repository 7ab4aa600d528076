package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/config"
	"github.com/oshokin/lambda-deploy/internal/service/common"
	"github.com/oshokin/lambda-deploy/internal/service/deployer"
	"github.com/oshokin/lambda-deploy/internal/service/packager"
)

const handlerSource = `import json

def lambda_handler(event, context):
    return {"statusCode": 200, "body": json.dumps("Hello from Lambda!")}
`

// memoryLambda is a tiny stand-in for the Lambda service keeping functions by name.
type memoryLambda struct {
	// functions maps names to their stored code.
	functions map[string][]byte
	// versions counts published versions per function.
	versions map[string]int
}

func newMemoryLambda() *memoryLambda {
	return &memoryLambda{
		functions: make(map[string][]byte),
		versions:  make(map[string]int),
	}
}

func (m *memoryLambda) arn(name string) *string {
	return aws.String("arn:aws:lambda:eu-west-1:123456789012:function:" + name)
}

// GetFunction reports stored functions as active.
func (m *memoryLambda) GetFunction(
	_ context.Context,
	params *lambda.GetFunctionInput,
	_ ...func(*lambda.Options),
) (*lambda.GetFunctionOutput, error) {
	name := aws.ToString(params.FunctionName)
	if _, ok := m.functions[name]; !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: aws.String("Function not found: " + name)}
	}

	return &lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{
			FunctionArn:      m.arn(name),
			State:            lambdatypes.StateActive,
			LastUpdateStatus: lambdatypes.LastUpdateStatusSuccessful,
		},
	}, nil
}

// UpdateFunctionCode replaces stored code or answers ResourceNotFoundException.
func (m *memoryLambda) UpdateFunctionCode(
	_ context.Context,
	params *lambda.UpdateFunctionCodeInput,
	_ ...func(*lambda.Options),
) (*lambda.UpdateFunctionCodeOutput, error) {
	name := aws.ToString(params.FunctionName)
	if _, ok := m.functions[name]; !ok {
		return nil, &lambdatypes.ResourceNotFoundException{Message: aws.String("Function not found: " + name)}
	}

	m.functions[name] = params.ZipFile

	version := "$LATEST"
	if params.Publish {
		m.versions[name]++
		version = strconv.Itoa(m.versions[name])
	}

	checksum, err := archive.Checksum(params.ZipFile)
	if err != nil {
		return nil, err
	}

	return &lambda.UpdateFunctionCodeOutput{
		FunctionArn: m.arn(name),
		Version:     aws.String(version),
		CodeSha256:  aws.String(checksum),
	}, nil
}

// CreateFunction stores a new function.
func (m *memoryLambda) CreateFunction(
	_ context.Context,
	params *lambda.CreateFunctionInput,
	_ ...func(*lambda.Options),
) (*lambda.CreateFunctionOutput, error) {
	name := aws.ToString(params.FunctionName)
	if _, ok := m.functions[name]; ok {
		return nil, &lambdatypes.ResourceConflictException{Message: aws.String("Function already exist: " + name)}
	}

	m.functions[name] = params.Code.ZipFile

	checksum, err := archive.Checksum(params.Code.ZipFile)
	if err != nil {
		return nil, err
	}

	return &lambda.CreateFunctionOutput{
		FunctionArn: m.arn(name),
		Version:     aws.String("$LATEST"),
		CodeSha256:  aws.String(checksum),
	}, nil
}

// TestPackageThenDeploy packages a handler, creates the function, then updates it.
func TestPackageThenDeploy(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, archive.DefaultSource)
	zipPath := filepath.Join(dir, archive.DefaultFilename)
	require.NoError(t, os.WriteFile(source, []byte(handlerSource), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, packager.Run(ctx, &packager.Options{
		Source:      source,
		ArchivePath: zipPath,
		Output:      new(bytes.Buffer),
	}))

	service := newMemoryLambda()
	clients := func(context.Context, *config.Config) (common.FunctionAPI, common.CodeStore, error) {
		return service, nil, nil
	}

	newConfig := func() *config.Config {
		cfg := config.New()
		cfg.FunctionName = "hello"
		cfg.Role = "arn:aws:iam::123456789012:role/hello"
		cfg.ArchivePath = zipPath
		cfg.Wait = 10 * time.Second

		return cfg
	}

	// First deployment creates the function.
	var out bytes.Buffer

	require.NoError(t, deployer.Run(ctx, &deployer.Options{
		Config:     newConfig(),
		Output:     &out,
		NewClients: clients,
	}))
	require.Contains(t, out.String(), "Created new Lambda: arn:aws:lambda:eu-west-1:123456789012:function:hello")

	// Second deployment updates and publishes.
	out.Reset()
	require.NoError(t, deployer.Run(ctx, &deployer.Options{
		Config:     newConfig(),
		Output:     &out,
		NewClients: clients,
	}))
	require.Contains(t, out.String(), "Updated existing Lambda")
	require.Contains(t, out.String(), "Version: 1")

	// What Lambda stored is the packaged handler.
	stored := filepath.Join(dir, "stored.zip")
	require.NoError(t, os.WriteFile(stored, service.functions["hello"], 0o600))

	got, err := archive.ReadEntry(stored, archive.DefaultSource)
	require.NoError(t, err)
	require.Equal(t, handlerSource, string(got))
}

// TestDryRunWithoutAWS runs the deploy entry point with no AWS environment at all.
func TestDryRunWithoutAWS(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(archive.DefaultSource, []byte(handlerSource), 0o600))

	ctx := context.Background()
	require.NoError(t, packager.Run(ctx, &packager.Options{Output: new(bytes.Buffer)}))

	cfg := config.New()
	cfg.FunctionName = "hello"
	cfg.Role = "arn:aws:iam::123456789012:role/hello"
	cfg.DryRun = true

	var out bytes.Buffer

	require.NoError(t, deployer.Run(ctx, &deployer.Options{
		Config: cfg,
		Output: &out,
		Format: deployer.FormatYAML,
	}))
	require.Contains(t, out.String(), "outcome: dry-run")
	require.Contains(t, out.String(), "archive: "+archive.DefaultFilename)
	require.Contains(t, out.String(), "- "+archive.DefaultSource)
}
