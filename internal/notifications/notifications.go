package notifications

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
)

// SNS rejects subjects longer than this.
const MaxSubjectLength = 100

//go:embed templates/remediation-notification.txt
var remediationTemplate string

// SNSNotification represents an abstraction for a notification to be published via AWS SNS.
type SNSNotification interface {
	Message() (string, error)
	Subject() string
	TopicArn() string
}

// SNSPublisher defines the SNS operations required to send notifications
type SNSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type RemediationNotification struct {
	Account      string
	Region       string
	Bucket       string
	Date         string
	ErrorMessage string
	FindingID    string
	FindingType  string
	Outcome      string
	Severity     string
	Stack        string
	Template     *template.Template
	Topic        string
}

func ParseRemediationTemplate() (*template.Template, error) {
	return template.New("remediation").Parse(remediationTemplate)
}

func (n RemediationNotification) Message() (string, error) {
	var buf bytes.Buffer
	if err := n.Template.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n RemediationNotification) Subject() string {
	subject := fmt.Sprintf("Bucket Remediation %s: %s", n.Outcome, n.Bucket)
	if len(subject) > MaxSubjectLength {
		subject = subject[:MaxSubjectLength]
	}
	return subject
}

func (n RemediationNotification) TopicArn() string {
	return n.Topic
}

func SendNotification(ctx context.Context, client SNSPublisher, notification SNSNotification) error {
	message, err := notification.Message()
	if err != nil {
		return err
	}

	result, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(notification.TopicArn()),
		Subject:  aws.String(notification.Subject()),
		Message:  aws.String(message),
	})
	if err != nil {
		return err
	}

	log.Info().Str("messageId", aws.ToString(result.MessageId)).Msg("notification sent")
	return nil
}
