package buckets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	BucketNameMinChars = 3
	BucketNameMaxChars = 63

	PrivateAcl = types.BucketCannedACLPrivate
)

var (
	ReservedPrefixes = []string{
		"xn--",
		"sthree-",
	}

	ReservedSuffixes = []string{
		"-s3alias",
		"--ol-s3",
	}

	bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)
	ipAddressPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
)

// S3ClientInterface defines the S3 operations required for remediation
type S3ClientInterface interface {
	PutBucketAcl(ctx context.Context, input *s3.PutBucketAclInput, opts ...func(*s3.Options)) (*s3.PutBucketAclOutput, error)
	PutPublicAccessBlock(ctx context.Context, input *s3.PutPublicAccessBlockInput, opts ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
}

// MakePrivate resets the bucket ACL to the private canned ACL. Repeating the
// call has no further effect.
func MakePrivate(ctx context.Context, s3Client S3ClientInterface, bucketName string) error {
	_, err := s3Client.PutBucketAcl(ctx, &s3.PutBucketAclInput{
		Bucket: aws.String(bucketName),
		ACL:    PrivateAcl,
	})
	if err != nil {
		return ErrorApplyingBucketAcl(bucketName, err)
	}
	return nil
}

func BlockPublicAccess(ctx context.Context, s3Client S3ClientInterface, bucketName string) error {
	_, err := s3Client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucketName),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	if err != nil {
		return ErrorApplyingPublicAccessBlock(bucketName, err)
	}
	return nil
}

// ValidateBucketName checks the general purpose bucket naming rules.
// S3 remains authoritative, callers only use this as a hint.
func ValidateBucketName(name string) error {
	if len(name) < BucketNameMinChars || len(name) > BucketNameMaxChars {
		return ErrorInvalidBucketName(name)
	}

	if !bucketNamePattern.MatchString(name) || strings.Contains(name, "..") {
		return ErrorInvalidBucketName(name)
	}

	if ipAddressPattern.MatchString(name) || HasReservedPrefix(name) || HasReservedSuffix(name) {
		return ErrorInvalidBucketName(name)
	}

	return nil
}

func HasReservedPrefix(name string) bool {
	for _, prefix := range ReservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func HasReservedSuffix(name string) bool {
	for _, suffix := range ReservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

func BucketArn(bucketName string) string {
	return fmt.Sprintf("arn:aws:s3:::%s", bucketName)
}
