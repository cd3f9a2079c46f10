package remediation

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

const UnknownErrorCode = "Unknown"

// RemediationError is the single error kind for a failed remediation call.
type RemediationError struct {
	Bucket string
	Code   string
	Err    error
}

func NewRemediationError(bucket string, cause error) *RemediationError {
	code := UnknownErrorCode

	var apiErr smithy.APIError
	if errors.As(cause, &apiErr) && apiErr.ErrorCode() != "" {
		code = apiErr.ErrorCode()
	}

	return &RemediationError{Bucket: bucket, Code: code, Err: cause}
}

func (e *RemediationError) Error() string {
	return fmt.Sprintf("remediation failed: bucket=%s code=%s cause=%v", e.Bucket, e.Code, e.Err)
}

func (e *RemediationError) Unwrap() error {
	return e.Err
}
