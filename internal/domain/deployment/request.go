package deployment

import (
	"fmt"
	"time"
)

// Request describes one create-or-update call for a Lambda function.
type Request struct {
	// FunctionName identifies the function within the account and region.
	FunctionName string
	// ArchivePath is the local zip file used as the deployment package.
	ArchivePath string
	// Role is the execution role ARN. It is passed through as is.
	Role string
	// Handler is the entry point inside the package, e.g. module.function.
	Handler string
	// Runtime is the Lambda runtime identifier, e.g. python3.9.
	Runtime string
	// Description is sent when the function is created.
	Description string
	// Region overrides the region resolved from the AWS environment.
	Region string
	// S3Bucket, when set, stages the archive in S3 and deploys from there.
	S3Bucket string
	// S3Key is the object key for the staged archive. It is required with S3Bucket.
	S3Key string
	// Timeout is the function timeout in seconds.
	Timeout int32
	// MemorySize is the memory allocation in MB.
	MemorySize int32
	// WaitTimeout bounds waiting for the function to become ready; zero skips waiting.
	WaitTimeout time.Duration
	// Publish asks the service to publish a new version on code updates.
	Publish bool
	// DryRun describes the deployment without any remote call.
	DryRun bool
}

// Validate checks fields that can be verified locally, apart from the archive itself.
func (r *Request) Validate() error {
	switch {
	case r == nil:
		return NewError(KindValidation, "validate request", ErrInvalidRequest)
	case r.FunctionName == "":
		return NewError(KindValidation, "validate request", fmt.Errorf("%w: function name is required", ErrInvalidRequest))
	case r.Role == "":
		return NewError(KindValidation, "validate request", fmt.Errorf("%w: role is required", ErrInvalidRequest))
	case r.ArchivePath == "":
		return NewError(KindValidation, "validate request", fmt.Errorf("%w: archive path is required", ErrInvalidRequest))
	case r.Timeout <= 0:
		return NewError(KindValidation, "validate request",
			fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalidRequest, r.Timeout))
	case r.MemorySize <= 0:
		return NewError(KindValidation, "validate request",
			fmt.Errorf("%w: memory size must be positive, got %d", ErrInvalidRequest, r.MemorySize))
	case r.S3Bucket != "" && r.S3Key == "":
		return NewError(KindValidation, "validate request",
			fmt.Errorf("%w: s3 key is required with s3 bucket %q", ErrInvalidRequest, r.S3Bucket))
	case r.WaitTimeout < 0:
		return NewError(KindValidation, "validate request",
			fmt.Errorf("%w: wait timeout must not be negative", ErrInvalidRequest))
	}

	return nil
}

// UsesS3 reports whether the archive is staged in S3 before deploying.
func (r *Request) UsesS3() bool {
	return r.S3Bucket != ""
}
