package findings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleFinding = `{
    "version": "0",
    "id": "9f1e7b0c-3a1d-4f2e-8f3a-2c1b0a9d8e7f",
    "detail-type": "Macie Finding",
    "source": "aws.macie",
    "account": "123456789012",
    "region": "us-east-1",
    "time": "2025-06-26T14:30:25Z",
    "detail": {
        "id": "64b917aa3ed3b4be2cbf0b0a2e8f0e11",
        "type": "Policy:IAMUser/S3BucketPublic",
        "title": "The S3 bucket is publicly accessible",
        "severity": {
            "description": "High",
            "score": 3
        },
        "resourcesAffected": {
            "s3Bucket": {
                "name": "my-bucket",
                "arn": "arn:aws:s3:::my-bucket"
            }
        }
    }
}`

func TestParseFinding(t *testing.T) {
	f := Parse(json.RawMessage(sampleFinding))

	assert.Equal(t, "my-bucket", f.BucketName())
	assert.True(t, f.HasBucket())
	assert.Equal(t, "64b917aa3ed3b4be2cbf0b0a2e8f0e11", f.FindingID())
	assert.Equal(t, "Policy:IAMUser/S3BucketPublic", f.FindingType())
	assert.Equal(t, "High", f.SeverityDescription())
	assert.Equal(t, "123456789012", f.Account)
	assert.True(t, f.IsMacieFinding())
	assert.True(t, f.IsPolicyFinding())
	assert.Equal(t, "2025-06-26T14:30:25Z", f.Time)
}

func TestBucketNameMissingLevels(t *testing.T) {
	tests := []struct {
		name  string
		event string
	}{
		{name: "empty object", event: `{}`},
		{name: "detail absent", event: `{"source": "aws.macie"}`},
		{name: "detail empty", event: `{"detail": {}}`},
		{name: "detail null", event: `{"detail": null}`},
		{name: "resourcesAffected empty", event: `{"detail": {"resourcesAffected": {}}}`},
		{name: "s3Bucket empty", event: `{"detail": {"resourcesAffected": {"s3Bucket": {}}}}`},
		{name: "name empty", event: `{"detail": {"resourcesAffected": {"s3Bucket": {"name": ""}}}}`},
		{name: "not an object", event: `["a", "b"]`},
		{name: "string", event: `"my-bucket"`},
		{name: "malformed", event: `{"detail": `},
		{name: "wrong type", event: `{"detail": {"resourcesAffected": {"s3Bucket": {"name": 42}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(json.RawMessage(tt.event))

			assert.Equal(t, "", f.BucketName())
			assert.False(t, f.HasBucket())
			assert.Equal(t, "", f.FindingID())
			assert.Equal(t, "", f.SeverityDescription())
		})
	}
}

func TestParseIgnoresMismatchedFields(t *testing.T) {
	tests := []struct {
		name             string
		event            string
		expectedType     string
		expectedSeverity string
	}{
		{
			name:         "severity is a string",
			event:        `{"detail": {"type": "Policy:IAMUser/S3BucketPublic", "severity": "HIGH", "resourcesAffected": {"s3Bucket": {"name": "my-bucket"}}}}`,
			expectedType: "Policy:IAMUser/S3BucketPublic",
		},
		{
			name:         "numeric envelope id",
			event:        `{"id": 12345, "detail": {"type": "Policy:IAMUser/S3BucketPublic", "resourcesAffected": {"s3Bucket": {"name": "my-bucket"}}}}`,
			expectedType: "Policy:IAMUser/S3BucketPublic",
		},
		{
			name:             "fractional severity score",
			event:            `{"detail": {"severity": {"description": "Low", "score": 2.5}, "resourcesAffected": {"s3Bucket": {"name": "my-bucket"}}}}`,
			expectedSeverity: "Low",
		},
		{
			name:  "time is an object",
			event: `{"time": {"epoch": 1750948225}, "detail": {"resourcesAffected": {"s3Bucket": {"name": "my-bucket", "arn": 7}}}}`,
		},
		{
			name:  "mismatched field after the bucket",
			event: `{"detail": {"resourcesAffected": {"s3Bucket": {"name": "my-bucket"}}, "title": ["public"]}, "region": false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Parse(json.RawMessage(tt.event))

			assert.Equal(t, "my-bucket", f.BucketName())
			assert.True(t, f.HasBucket())
			assert.Equal(t, tt.expectedType, f.FindingType())
			assert.Equal(t, tt.expectedSeverity, f.SeverityDescription())
		})
	}
}

func TestNilFinding(t *testing.T) {
	var f *Finding
	assert.Equal(t, "", f.BucketName())
	assert.False(t, f.HasBucket())
	assert.Equal(t, "", f.FindingType())
}

func TestIsMacieFinding(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		detailType string
		expected   bool
	}{
		{name: "macie finding", source: "aws.macie", detailType: "Macie Finding", expected: true},
		{name: "other source", source: "aws.securityhub", detailType: "Macie Finding", expected: false},
		{name: "other detail type", source: "aws.macie", detailType: "Macie Alert", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Finding{Source: tt.source, DetailType: tt.detailType}
			if got := f.IsMacieFinding(); got != tt.expected {
				t.Errorf("IsMacieFinding() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"detail\": {}\n}", Pretty(json.RawMessage(`{"detail":{}}`)))
	assert.Equal(t, "not json", Pretty(json.RawMessage(`not json`)))
}
