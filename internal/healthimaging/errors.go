package healthimaging

import (
	"errors"
	"fmt"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// Vendor error codes the HTTP layer branches on.
const (
	CodeResourceNotFound     = "ResourceNotFoundException"
	CodeValidation           = "ValidationException"
	CodeAccessDenied         = "AccessDeniedException"
	CodeThrottling           = "ThrottlingException"
	CodeServiceQuotaExceeded = "ServiceQuotaExceededException"
	CodeConflict             = "ConflictException"
)

// RemoteError is a failure reported by the imaging service or its client.
// Err is the SDK error, untouched.
type RemoteError struct {
	Operation  string
	Code       string
	Message    string
	Fault      string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s failed: %s: %s", e.Operation, e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// newRemoteError pulls the vendor code, message and HTTP status out of an SDK error.
func newRemoteError(operation string, err error) *RemoteError {
	re := &RemoteError{Operation: operation, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		re.Code = apiErr.ErrorCode()
		re.Message = apiErr.ErrorMessage()
		re.Fault = apiErr.ErrorFault().String()
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		re.StatusCode = respErr.HTTPStatusCode()
	}

	return re
}

// ContractError means the service answered with something other than what
// the operation guarantees (wrong content type or encoding, missing
// mandatory field).
type ContractError struct {
	Operation string
	Field     string
	Want      string
	Got       string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: unexpected %s %q, want %q", e.Operation, e.Field, e.Got, e.Want)
}

// IsNotFound reports whether err is a RemoteError for a missing resource.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Code == CodeResourceNotFound
}
