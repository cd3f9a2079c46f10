package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNSClient struct {
	mock.Mock
}

func (m *mockSNSClient) Publish(ctx context.Context, input *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func newNotification(t *testing.T) RemediationNotification {
	tmpl, err := ParseRemediationTemplate()
	require.NoError(t, err)

	return RemediationNotification{
		Account:     "123456789012",
		Region:      "us-east-1",
		Bucket:      "my-bucket",
		Date:        "2025-06-26T14:30:25Z",
		FindingID:   "64b917aa3ed3b4be2cbf0b0a2e8f0e11",
		FindingType: "Policy:IAMUser/S3BucketPublic",
		Outcome:     "remediated",
		Severity:    "High",
		Stack:       "auto-remediate",
		Template:    tmpl,
		Topic:       "arn:aws:sns:us-east-1:123456789012:test-topic",
	}
}

func TestRemediationNotificationMessage(t *testing.T) {
	notification := newNotification(t)

	message, err := notification.Message()
	require.NoError(t, err)

	expected := `Public bucket remediation remediated:

Account: 123456789012
Region: us-east-1
Stack: auto-remediate
Time: 2025-06-26T14:30:25Z

Bucket: my-bucket
Finding: 64b917aa3ed3b4be2cbf0b0a2e8f0e11
Finding Type: Policy:IAMUser/S3BucketPublic
Severity: High
`

	if message != expected {
		t.Errorf("Template output mismatch.\nExpected:\n%s\nGot:\n%s", expected, message)
	}

	assert.Equal(t, "Bucket Remediation remediated: my-bucket", notification.Subject())
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:test-topic", notification.TopicArn())
}

func TestRemediationNotificationMessageWithError(t *testing.T) {
	notification := newNotification(t)
	notification.Outcome = "failed"
	notification.ErrorMessage = "failed to set bucket acl: bucket=my-bucket cause=AccessDenied"

	message, err := notification.Message()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(message, "Severity: High\nError: failed to set bucket acl: bucket=my-bucket cause=AccessDenied\n"))
}

func TestSubjectIsTruncated(t *testing.T) {
	notification := newNotification(t)
	notification.Bucket = strings.Repeat("a", 120)

	assert.Len(t, notification.Subject(), MaxSubjectLength)
}

func TestSendNotification(t *testing.T) {
	notification := newNotification(t)
	client := new(mockSNSClient)
	client.On("Publish", mock.Anything, mock.MatchedBy(func(input *sns.PublishInput) bool {
		return aws.ToString(input.TopicArn) == notification.Topic &&
			aws.ToString(input.Subject) == "Bucket Remediation remediated: my-bucket" &&
			strings.Contains(aws.ToString(input.Message), "Bucket: my-bucket")
	})).Return(&sns.PublishOutput{MessageId: aws.String("msg-1")}, nil)

	err := SendNotification(context.Background(), client, notification)
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSendNotificationError(t *testing.T) {
	client := new(mockSNSClient)
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("topic not found"))

	err := SendNotification(context.Background(), client, newNotification(t))
	assert.EqualError(t, err, "topic not found")
}
