package buckets

import (
	"errors"
	"fmt"
)

var (
	ErrApplyingBucketAcl         = errors.New("failed to set bucket acl")
	ErrApplyingPublicAccessBlock = errors.New("failed to enable public access block")
	ErrInvalidBucketName         = errors.New("invalid bucket name")
)

func ErrorApplyingBucketAcl(bucketName string, cause error) error {
	return fmt.Errorf("%w: bucket=%s cause=%w", ErrApplyingBucketAcl, bucketName, cause)
}

func ErrorApplyingPublicAccessBlock(bucketName string, cause error) error {
	return fmt.Errorf("%w: bucket=%s cause=%w", ErrApplyingPublicAccessBlock, bucketName, cause)
}

func ErrorInvalidBucketName(bucketName string) error {
	return fmt.Errorf("%w: bucket=%s", ErrInvalidBucketName, bucketName)
}
