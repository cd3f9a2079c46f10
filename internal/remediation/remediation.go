package remediation

import (
	"context"
	"encoding/json"
	"time"

	"autoremediate/internal/buckets"
	"autoremediate/internal/findings"
	"autoremediate/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const StatusDone = "done"

// Outcome classifies an invocation for logs and side channels only.
// It is never part of Result.
type Outcome string

const (
	OutcomeRemediated Outcome = "remediated"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// Result is returned for every invocation, whatever the outcome.
type Result struct {
	Status string `json:"status"`
}

func Done() Result {
	return Result{Status: StatusDone}
}

// Report describes one invocation to a Reporter.
type Report struct {
	Finding findings.Finding
	Bucket  string
	Outcome Outcome
	Err     *RemediationError
	At      time.Time
}

func (r Report) Message() string {
	switch r.Outcome {
	case OutcomeRemediated:
		return "Set bucket " + r.Bucket + " ACL to private."
	case OutcomeFailed:
		return r.Err.Error()
	default:
		return "No bucket name found in the event."
	}
}

func (r Report) ErrorCode() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}

// Reporter is a side channel observing outcomes. Errors are logged by the
// Remediator and never change the Result.
type Reporter interface {
	Name() string
	Report(ctx context.Context, report Report) error
}

type Remediator struct {
	s3Client          buckets.S3ClientInterface
	blockPublicAccess bool
	reporters         []Reporter
	logger            zerolog.Logger
	now               func() time.Time
}

type Option func(*Remediator)

func WithBlockPublicAccess(enabled bool) Option {
	return func(r *Remediator) { r.blockPublicAccess = enabled }
}

func WithReporters(reporters ...Reporter) Option {
	return func(r *Remediator) { r.reporters = append(r.reporters, reporters...) }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Remediator) { r.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(r *Remediator) { r.now = now }
}

func NewRemediator(s3Client buckets.S3ClientInterface, opts ...Option) *Remediator {
	r := &Remediator{
		s3Client: s3Client,
		logger:   log.Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle remediates the bucket named by the finding, if any, and always
// returns Done. Failures are logged and never propagated or retried.
func (r *Remediator) Handle(ctx context.Context, event json.RawMessage) Result {
	r.logger.Info().Msgf("Received event: %s", findings.Pretty(event))

	finding := findings.Parse(event)
	bucketName := finding.BucketName()

	if !finding.IsMacieFinding() {
		r.logger.Debug().Str("source", finding.Source).Msg("event is not a Macie finding")
	}

	ctx, span := otel.Tracer(tracing.TracerName).Start(ctx, "remediate",
		trace.WithAttributes(attribute.String("aws.s3.bucket", bucketName)))
	defer span.End()

	report := Report{
		Finding: finding,
		Bucket:  bucketName,
		At:      r.now(),
	}

	if bucketName == "" {
		r.logger.Info().Msg("No bucket name found in the event.")
		report.Outcome = OutcomeSkipped
	} else if remErr := r.remediate(ctx, bucketName); remErr != nil {
		r.logger.Error().
			Str("bucket", bucketName).
			Str("code", remErr.Code).
			Msgf("Error setting bucket ACL: %v", remErr.Err)
		span.SetStatus(codes.Error, remErr.Error())
		report.Outcome = OutcomeFailed
		report.Err = remErr
	} else {
		r.logger.Info().
			Str("bucket", bucketName).
			Str("bucketArn", buckets.BucketArn(bucketName)).
			Str("findingType", finding.FindingType()).
			Bool("policyFinding", finding.IsPolicyFinding()).
			Msgf("Set bucket %s ACL to private.", bucketName)
		report.Outcome = OutcomeRemediated
	}

	span.SetAttributes(attribute.String("remediation.outcome", string(report.Outcome)))
	r.report(ctx, report)

	return Done()
}

func (r *Remediator) remediate(ctx context.Context, bucketName string) *RemediationError {
	if err := buckets.ValidateBucketName(bucketName); err != nil {
		r.logger.Warn().Err(err).Msg("bucket name does not follow S3 naming rules, attempting remediation anyway")
	}

	if err := buckets.MakePrivate(ctx, r.s3Client, bucketName); err != nil {
		return NewRemediationError(bucketName, err)
	}

	if r.blockPublicAccess {
		if err := buckets.BlockPublicAccess(ctx, r.s3Client, bucketName); err != nil {
			return NewRemediationError(bucketName, err)
		}
		r.logger.Info().Str("bucket", bucketName).Msg("enabled public access block")
	}

	return nil
}

func (r *Remediator) report(ctx context.Context, report Report) {
	for _, reporter := range r.reporters {
		if err := reporter.Report(ctx, report); err != nil {
			r.logger.Error().
				Err(err).
				Str("reporter", reporter.Name()).
				Str("bucket", report.Bucket).
				Msg("failed to report remediation outcome")
		}
	}
}
