package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"autoremediate/internal/accounts"
	"autoremediate/internal/config"
	"autoremediate/internal/logging"
	"autoremediate/internal/metrics"
	"autoremediate/internal/notifications"
	"autoremediate/internal/remediation"
	"autoremediate/internal/tracing"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
)

type handlerFunc func(ctx context.Context, event json.RawMessage) (remediation.Result, error)

// newHandler adapts the remediator to the Lambda signature. The error is
// always nil so the invoker never retries.
func newHandler(remediator *remediation.Remediator, awsCtx accounts.AWSContext) handlerFunc {
	return func(ctx context.Context, event json.RawMessage) (remediation.Result, error) {
		ctx = accounts.WithAWSContext(ctx, awsCtx)
		return remediator.Handle(ctx, event), nil
	}
}

func setup(ctx context.Context, cfg config.Config) (*remediation.Remediator, accounts.AWSContext) {
	retryLogger := logging.RetryLogger{
		Log: &log.Logger,
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithLogger(&retryLogger),
		awsconfig.WithClientLogMode(aws.LogRetries),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.NewStandard(), cfg.SideChannelAttempts)
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load AWS config")
	}

	awsCtx := accounts.AWSContext{
		Region:    awsConfig.Region,
		StackName: cfg.StackName,
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.Retryer = retry.AddWithMaxAttempts(retry.NewStandard(), cfg.RemediationAttempts)
	})

	var reporters []remediation.Reporter

	if cfg.NotificationsEnabled() {
		awsCtx.AccountID, err = accounts.GetAccountID(ctx, sts.NewFromConfig(awsConfig))
		if err != nil {
			log.Warn().Err(err).Msg("unable to get AWS account ID, notifications will use the finding account")
		}

		tmpl, err := notifications.ParseRemediationTemplate()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse notification template")
		}

		reporters = append(reporters, &remediation.NotificationReporter{
			Client:   sns.NewFromConfig(awsConfig),
			Template: tmpl,
			Topic:    cfg.SNSTopicArn,
		})
	}

	if cfg.AuditEnabled() {
		reporters = append(reporters, &remediation.AuditReporter{
			Client: dynamodb.NewFromConfig(awsConfig),
			Table:  cfg.RemediationTable,
		})
	}

	if cfg.MetricsEnabled() {
		reporters = append(reporters, &remediation.MetricsReporter{
			Publisher: metrics.NewPublisher(cloudwatch.NewFromConfig(awsConfig), cfg.MetricsNamespace, cfg.StackName),
		})
	}

	remediator := remediation.NewRemediator(s3Client,
		remediation.WithBlockPublicAccess(cfg.BlockPublicAccess),
		remediation.WithReporters(reporters...),
	)

	return remediator, awsCtx
}

// runLocal feeds an event file through the handler and writes the result as JSON.
func runLocal(ctx context.Context, handler handlerFunc, eventFile string, out io.Writer) error {
	if eventFile == "" {
		return fmt.Errorf("an event file is required when not running in Lambda")
	}

	event, err := os.ReadFile(eventFile)
	if err != nil {
		return fmt.Errorf("failed to read event file: %w", err)
	}

	result, err := handler(ctx, event)
	if err != nil {
		return err
	}

	return json.NewEncoder(out).Encode(result)
}

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()
	inLambda := config.InLambda()

	logging.Setup(cfg.LogLevel, !inLambda)

	tp, shutdown := tracing.InitOtel(ctx)
	defer shutdown()

	remediator, awsCtx := setup(ctx, cfg)
	handler := newHandler(remediator, awsCtx)

	if inLambda {
		lambda.Start(otellambda.InstrumentHandler(handler,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp),
		))
		return
	}

	if err := runLocal(ctx, handler, cfg.EventFile, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("local invocation failed")
	}
}
