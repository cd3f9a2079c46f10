package remediation

import (
	"context"
	"text/template"
	"time"

	"autoremediate/internal/accounts"
	"autoremediate/internal/audit"
	"autoremediate/internal/metrics"
	"autoremediate/internal/notifications"
)

type NotificationReporter struct {
	Client   notifications.SNSPublisher
	Template *template.Template
	Topic    string
}

func (n *NotificationReporter) Name() string { return "sns" }

// Report publishes a notification for invocations that named a bucket.
func (n *NotificationReporter) Report(ctx context.Context, report Report) error {
	if report.Outcome == OutcomeSkipped {
		return nil
	}

	awsCtx := accounts.FromContext(ctx)
	account := report.Finding.Account
	if account == "" {
		account = awsCtx.AccountID
	}
	region := report.Finding.Region
	if region == "" {
		region = awsCtx.Region
	}

	notification := notifications.RemediationNotification{
		Account:     account,
		Region:      region,
		Bucket:      report.Bucket,
		Date:        report.At.UTC().Format(time.RFC3339),
		FindingID:   report.Finding.FindingID(),
		FindingType: report.Finding.FindingType(),
		Outcome:     string(report.Outcome),
		Severity:    report.Finding.SeverityDescription(),
		Stack:       awsCtx.StackName,
		Template:    n.Template,
		Topic:       n.Topic,
	}
	if report.Err != nil {
		notification.ErrorMessage = report.Err.Error()
	}

	return notifications.SendNotification(ctx, n.Client, notification)
}

type AuditReporter struct {
	Client audit.DynamoDBClientInterface
	Table  string
}

func (a *AuditReporter) Name() string { return "dynamodb" }

func (a *AuditReporter) Report(ctx context.Context, report Report) error {
	if report.Outcome == OutcomeSkipped {
		return nil
	}

	record := audit.NewRecord(
		report.Bucket,
		report.Finding.FindingID(),
		report.Finding.FindingType(),
		string(report.Outcome),
		report.Message(),
		report.ErrorCode(),
		report.At,
	)

	return audit.PutRecord(ctx, a.Client, a.Table, record)
}

type MetricsReporter struct {
	Publisher *metrics.Publisher
}

func (m *MetricsReporter) Name() string { return "cloudwatch" }

func (m *MetricsReporter) Report(ctx context.Context, report Report) error {
	return m.Publisher.RecordOutcome(ctx, string(report.Outcome), report.At)
}
