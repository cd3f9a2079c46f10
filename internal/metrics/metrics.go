package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	RemediationsMetric = "Remediations"
	OutcomeDimension   = "Outcome"
	StackDimension     = "StackName"
)

// CloudWatchClientInterface defines the CloudWatch operations required to publish metrics
type CloudWatchClientInterface interface {
	PutMetricData(ctx context.Context, input *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type Publisher struct {
	client    CloudWatchClientInterface
	namespace string
	stackName string
}

func NewPublisher(client CloudWatchClientInterface, namespace, stackName string) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		stackName: stackName,
	}
}

// RecordOutcome publishes a single count for the given remediation outcome.
func (p *Publisher) RecordOutcome(ctx context.Context, outcome string, at time.Time) error {
	dimensions := []cwTypes.Dimension{
		{Name: aws.String(OutcomeDimension), Value: aws.String(outcome)},
	}
	if p.stackName != "" {
		dimensions = append(dimensions, cwTypes.Dimension{Name: aws.String(StackDimension), Value: aws.String(p.stackName)})
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []cwTypes.MetricDatum{
			{
				MetricName: aws.String(RemediationsMetric),
				Dimensions: dimensions,
				Timestamp:  aws.Time(at),
				Unit:       cwTypes.StandardUnitCount,
				Value:      aws.Float64(1),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s metric: %w", RemediationsMetric, err)
	}

	return nil
}
