package deployer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oshokin/lambda-deploy/internal/archive"
	"github.com/oshokin/lambda-deploy/internal/domain/deployment"
	"github.com/oshokin/lambda-deploy/internal/logger"
	"github.com/oshokin/lambda-deploy/internal/service/common"
)

const zipContentType = "application/zip"

var (
	errNoFunctionClient = errors.New("lambda client is not configured")
	errNoCodeStore      = errors.New("s3 client is not configured")
)

// Deployer runs the update-or-create procedure against a Lambda API.
type Deployer struct {
	// functions is the Lambda API; nil only makes sense for dry-runs.
	functions common.FunctionAPI
	// store stages archives in S3 when a request asks for it.
	store common.CodeStore
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithCodeStore sets the S3 client used for requests with an S3 bucket.
func WithCodeStore(store common.CodeStore) Option {
	return func(d *Deployer) {
		d.store = store
	}
}

// New creates a Deployer on top of the given Lambda API.
func New(functions common.FunctionAPI, opts ...Option) *Deployer {
	d := &Deployer{
		functions: functions,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Deploy updates the function code, or creates the function when it does not exist yet.
// A dry-run returns an OutcomeDryRun result and makes no remote call.
// Failures are returned as *deployment.Error. The only failure that comes with a result
// is a failed wait: the function was already changed and the result says how.
func (d *Deployer) Deploy(ctx context.Context, req *deployment.Request) (*deployment.Result, error) {
	if req == nil {
		return nil, req.Validate()
	}

	if err := CheckArchive(req.ArchivePath); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	code, err := os.ReadFile(filepath.Clean(req.ArchivePath))
	if err != nil {
		return nil, deployment.NewError(deployment.KindValidation, "read archive", err)
	}

	checksum, err := archive.Checksum(code)
	if err != nil {
		return nil, deployment.NewError(deployment.KindValidation, "checksum archive", err)
	}

	if req.DryRun {
		logger.Info(ctx, "Dry run requested, skipping all AWS calls")

		return &deployment.Result{
			Outcome: deployment.OutcomeDryRun,
			Plan:    newPlan(ctx, req, code, checksum),
		}, nil
	}

	if d.functions == nil {
		return nil, deployment.NewUnavailableError("deploy", errNoFunctionClient)
	}

	if req.UsesS3() {
		if err = d.upload(ctx, req, code); err != nil {
			return nil, err
		}

		// The function code now lives in S3.
		code = nil
	}

	result, err := d.updateOrCreate(ctx, req, code)
	if err != nil {
		return nil, err
	}

	if result.CodeSha256 != "" && result.CodeSha256 != checksum {
		logger.WarnKV(ctx, "Deployed code checksum differs from local archive",
			"local_sha256", checksum,
			"remote_sha256", result.CodeSha256)
	}

	if req.WaitTimeout > 0 {
		if err = d.wait(ctx, req, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// CheckArchive verifies that path names an existing regular file.
func CheckArchive(path string) error {
	if path == "" {
		return deployment.NewError(deployment.KindValidation, "check archive", deployment.ErrArchiveNotFound)
	}

	stat, err := os.Stat(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return deployment.NewError(deployment.KindValidation, "check archive",
				fmt.Errorf("%w: %s", deployment.ErrArchiveNotFound, path))
		}

		return deployment.NewError(deployment.KindValidation, "check archive", err)
	}

	if !stat.Mode().IsRegular() {
		return deployment.NewError(deployment.KindValidation, "check archive",
			fmt.Errorf("%w: %s is not a regular file", deployment.ErrArchiveNotFound, path))
	}

	return nil
}

// updateOrCreate makes at most two calls: update, then create if update said not found.
func (d *Deployer) updateOrCreate(
	ctx context.Context,
	req *deployment.Request,
	code []byte,
) (*deployment.Result, error) {
	logger.InfoKV(ctx, "Updating function code", "publish", req.Publish)

	updated, err := d.functions.UpdateFunctionCode(ctx, updateInput(req, code))
	if err == nil {
		result := &deployment.Result{
			Outcome:     deployment.OutcomeUpdated,
			FunctionArn: aws.ToString(updated.FunctionArn),
			Version:     aws.ToString(updated.Version),
			CodeSha256:  aws.ToString(updated.CodeSha256),
		}

		logger.InfoKV(ctx, "Updated existing Lambda", "arn", result.FunctionArn, "version", result.Version)

		return result, nil
	}

	if !common.IsNotFound(err) {
		return nil, deployment.NewError(deployment.KindRemote, "update function code", err)
	}

	logger.InfoKV(ctx, "Function does not exist, creating it", "runtime", req.Runtime, "handler", req.Handler)

	created, err := d.functions.CreateFunction(ctx, createInput(req, code))
	if err != nil {
		return nil, deployment.NewError(deployment.KindRemote, "create function", err)
	}

	result := &deployment.Result{
		Outcome:     deployment.OutcomeCreated,
		FunctionArn: aws.ToString(created.FunctionArn),
		Version:     aws.ToString(created.Version),
		CodeSha256:  aws.ToString(created.CodeSha256),
	}

	logger.InfoKV(ctx, "Created new Lambda", "arn", result.FunctionArn)

	return result, nil
}

// upload stages the archive in S3.
func (d *Deployer) upload(ctx context.Context, req *deployment.Request, code []byte) error {
	if d.store == nil {
		return deployment.NewUnavailableError("upload archive", errNoCodeStore)
	}

	logger.InfoKV(ctx, "Uploading archive to S3", "bucket", req.S3Bucket, "key", req.S3Key, "bytes", len(code))

	_, err := d.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(req.S3Bucket),
		Key:         aws.String(req.S3Key),
		Body:        bytes.NewReader(code),
		ContentType: aws.String(zipContentType),
	})
	if err != nil {
		return deployment.NewError(deployment.KindRemote, "upload archive", err)
	}

	return nil
}

// wait blocks until Lambda reports the function ready or WaitTimeout elapses.
func (d *Deployer) wait(ctx context.Context, req *deployment.Request, result *deployment.Result) error {
	logger.InfoKV(ctx, "Waiting for function to become ready", "timeout", req.WaitTimeout.String())

	params := &lambda.GetFunctionInput{
		FunctionName: aws.String(req.FunctionName),
	}

	var err error

	switch result.Outcome {
	case deployment.OutcomeCreated:
		err = lambda.NewFunctionActiveV2Waiter(d.functions).Wait(ctx, params, req.WaitTimeout)
	default:
		err = lambda.NewFunctionUpdatedV2Waiter(d.functions).Wait(ctx, params, req.WaitTimeout)
	}

	if err != nil {
		return deployment.NewError(deployment.KindRemote, "wait",
			fmt.Errorf("function %s was %s but is not ready: %w", result.FunctionArn, result.Outcome, err))
	}

	logger.Info(ctx, "Function is ready")

	return nil
}

func updateInput(req *deployment.Request, code []byte) *lambda.UpdateFunctionCodeInput {
	input := &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(req.FunctionName),
		Publish:      req.Publish,
	}

	if req.UsesS3() {
		input.S3Bucket = aws.String(req.S3Bucket)
		input.S3Key = aws.String(req.S3Key)
	} else {
		input.ZipFile = code
	}

	return input
}

func createInput(req *deployment.Request, code []byte) *lambda.CreateFunctionInput {
	functionCode := new(lambdatypes.FunctionCode)
	if req.UsesS3() {
		functionCode.S3Bucket = aws.String(req.S3Bucket)
		functionCode.S3Key = aws.String(req.S3Key)
	} else {
		functionCode.ZipFile = code
	}

	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(req.FunctionName),
		Role:         aws.String(req.Role),
		Runtime:      lambdatypes.Runtime(req.Runtime),
		Handler:      aws.String(req.Handler),
		Code:         functionCode,
		Timeout:      aws.Int32(req.Timeout),
		MemorySize:   aws.Int32(req.MemorySize),
		PackageType:  lambdatypes.PackageTypeZip,
	}

	if req.Description != "" {
		input.Description = aws.String(req.Description)
	}

	return input
}

// newPlan describes a deployment that will not be executed.
func newPlan(ctx context.Context, req *deployment.Request, code []byte, checksum string) *deployment.Plan {
	entries, err := archive.Entries(code)
	if err != nil {
		logger.WarnKV(ctx, "Archive is not a readable zip file", "path", req.ArchivePath, "error", err)
	}

	return &deployment.Plan{
		FunctionName: req.FunctionName,
		ArchivePath:  req.ArchivePath,
		Runtime:      req.Runtime,
		Role:         req.Role,
		Handler:      req.Handler,
		Region:       req.Region,
		S3Bucket:     req.S3Bucket,
		S3Key:        req.S3Key,
		CodeSha256:   checksum,
		Entries:      entries,
		ArchiveSize:  int64(len(code)),
		Timeout:      req.Timeout,
		MemorySize:   req.MemorySize,
		Publish:      req.Publish,
	}
}
