package audit

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// RecordTTL keeps audit records for a year.
const RecordTTL = 365 * 24 * time.Hour

// DynamoDBClientInterface defines the DynamoDB operations required for auditing
type DynamoDBClientInterface interface {
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type Record struct {
	RemediationId string    `dynamodbav:"RemediationId"`
	BucketName    string    `dynamodbav:"BucketName"`
	FindingId     string    `dynamodbav:"FindingId"`
	FindingType   string    `dynamodbav:"FindingType"`
	Outcome       string    `dynamodbav:"Outcome"`
	Message       string    `dynamodbav:"Message"`
	ErrorCode     string    `dynamodbav:"ErrorCode,omitempty"`
	Timestamp     time.Time `dynamodbav:"Timestamp"`
	TTL           int64     `dynamodbav:"TTL"`
}

func NewRecord(bucketName, findingId, findingType, outcome, message, errorCode string, now time.Time) Record {
	return Record{
		RemediationId: uuid.NewString(),
		BucketName:    bucketName,
		FindingId:     findingId,
		FindingType:   findingType,
		Outcome:       outcome,
		Message:       message,
		ErrorCode:     errorCode,
		Timestamp:     now.UTC(),
		TTL:           now.Add(RecordTTL).Unix(),
	}
}

func PutRecord(ctx context.Context, client DynamoDBClientInterface, table string, record Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return ErrorMarshallingRecord(err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return ErrorWritingRecord(table, record.BucketName, err)
	}

	return nil
}
