//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
)

// resourceNotFoundCode is the Lambda error code for a missing function.
const resourceNotFoundCode = "ResourceNotFoundException"

// IsNotFound reports whether err says the function does not exist.
//
// The typed exception is what the SDK deserializes for Lambda responses. The
// error code check covers errors that only reach us as a generic smithy.APIError,
// e.g. when a proxy or a newer service model returns an undeclared shape; it
// depends on AWS keeping the code string stable.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *lambdatypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == resourceNotFoundCode
	}

	return false
}
