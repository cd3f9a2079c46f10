package accounts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type AWSContext struct {
	AccountID string
	Region    string
	StackName string
}

type contextKey string

const AWSContextKey contextKey = "awsContext"

// STSClientInterface defines the STS operations required to resolve the caller account
type STSClientInterface interface {
	GetCallerIdentity(ctx context.Context, input *sts.GetCallerIdentityInput, opts ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func GetAccountID(ctx context.Context, stsClient STSClientInterface) (string, error) {
	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}

	return aws.ToString(result.Account), nil
}

func WithAWSContext(ctx context.Context, awsCtx AWSContext) context.Context {
	return context.WithValue(ctx, AWSContextKey, awsCtx)
}

// FromContext returns the AWSContext stored on ctx, or a zero value.
func FromContext(ctx context.Context) AWSContext {
	awsCtx, _ := ctx.Value(AWSContextKey).(AWSContext)
	return awsCtx
}
