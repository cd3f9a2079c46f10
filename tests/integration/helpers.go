package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const allUsersGroupURI = "http://acs.amazonaws.com/groups/global/AllUsers"

type TestClients struct {
	S3     *s3.Client
	Lambda *lambda.Client
	IAM    *iam.Client
	Region string
}

// setupTestClients skips the calling test unless a deployed stack is named.
func setupTestClients(t *testing.T) (*TestClients, string) {
	stackName := os.Getenv("STACK_NAME")
	if stackName == "" {
		t.Skip("STACK_NAME environment variable must be set to run integration tests")
	}

	awsConfig, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		t.Fatalf("Unable to load AWS config: %v", err)
	}

	return &TestClients{
		S3:     s3.NewFromConfig(awsConfig),
		Lambda: lambda.NewFromConfig(awsConfig),
		IAM:    iam.NewFromConfig(awsConfig),
		Region: awsConfig.Region,
	}, stackName
}

func functionName(stackName string) string {
	return fmt.Sprintf("%s-AutoRemediateFunction", stackName)
}

func findingEvent(bucketName string) []byte {
	event := map[string]interface{}{
		"detail-type": "Macie Finding",
		"source":      "aws.macie",
		"detail": map[string]interface{}{
			"type": "Policy:IAMUser/S3BucketPublic",
			"resourcesAffected": map[string]interface{}{
				"s3Bucket": map[string]interface{}{
					"name": bucketName,
				},
			},
		},
	}
	payload, _ := json.Marshal(event)
	return payload
}

func invokeRemediation(t *testing.T, ctx context.Context, lambdaClient *lambda.Client, stackName string, payload []byte) map[string]string {
	result, err := lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName(stackName)),
		InvocationType: lambdaTypes.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	require.NoError(t, err)
	require.Nil(t, result.FunctionError, "function error: %s", string(result.Payload))

	var response map[string]string
	require.NoError(t, json.Unmarshal(result.Payload, &response))
	return response
}

func lambdaFunctionExists(ctx context.Context, lambdaClient *lambda.Client, functionName string) bool {
	_, err := lambdaClient.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	})
	return err == nil
}

func iamRoleExists(ctx context.Context, iamClient *iam.Client, roleName string) bool {
	_, err := iamClient.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(roleName),
	})
	return err == nil
}

func bucketExists(ctx context.Context, s3Client *s3.Client, bucketName string) bool {
	_, err := s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	return err == nil
}

// createPublicReadBucket creates a bucket whose ACL grants AllUsers read access
// and removes it when the test finishes.
func createPublicReadBucket(t *testing.T, ctx context.Context, clients *TestClients, bucketName string) {
	input := &s3.CreateBucketInput{
		Bucket:          aws.String(bucketName),
		ObjectOwnership: types.ObjectOwnershipBucketOwnerPreferred,
	}
	if clients.Region != "" && clients.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(clients.Region),
		}
	}

	_, err := clients.S3.CreateBucket(ctx, input)
	require.NoError(t, err)

	t.Cleanup(func() {
		deleteBucket(context.Background(), clients.S3, bucketName)
	})

	_, err = clients.S3.DeletePublicAccessBlock(ctx, &s3.DeletePublicAccessBlockInput{
		Bucket: aws.String(bucketName),
	})
	require.NoError(t, err)

	_, err = clients.S3.PutBucketAcl(ctx, &s3.PutBucketAclInput{
		Bucket: aws.String(bucketName),
		ACL:    types.BucketCannedACLPublicRead,
	})
	require.NoError(t, err)
}

func deleteBucket(ctx context.Context, s3Client *s3.Client, bucketName string) {
	for i := 0; i < 3; i++ {
		_, err := s3Client.DeleteBucket(ctx, &s3.DeleteBucketInput{
			Bucket: aws.String(bucketName),
		})
		if err == nil || !bucketExists(ctx, s3Client, bucketName) {
			return
		}

		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}
}

func hasPublicGrant(t *testing.T, ctx context.Context, s3Client *s3.Client, bucketName string) bool {
	acl, err := s3Client.GetBucketAcl(ctx, &s3.GetBucketAclInput{
		Bucket: aws.String(bucketName),
	})
	require.NoError(t, err)

	for _, grant := range acl.Grants {
		if grant.Grantee != nil && aws.ToString(grant.Grantee.URI) == allUsersGroupURI {
			return true
		}
	}
	return false
}

func generateUniqueBucketName(baseName string) string {
	return fmt.Sprintf("%s-%s", baseName, uuid.New().String()[:12])
}
