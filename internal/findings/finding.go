package findings

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const (
	MacieSource         = "aws.macie"
	FindingDetailType   = "Macie Finding"
	PolicyFindingPrefix = "Policy:"
)

// Finding is the EventBridge envelope delivered for a security finding.
// Every nested level is optional.
type Finding struct {
	ID         string  `json:"id"`
	DetailType string  `json:"detail-type"`
	Source     string  `json:"source"`
	Account    string  `json:"account"`
	Region     string  `json:"region"`
	Time       string  `json:"time"`
	Detail     *Detail `json:"detail,omitempty"`
}

type Detail struct {
	ID                string             `json:"id"`
	Type              string             `json:"type"`
	Title             string             `json:"title"`
	Severity          *Severity          `json:"severity,omitempty"`
	ResourcesAffected *ResourcesAffected `json:"resourcesAffected,omitempty"`
}

type Severity struct {
	Description string `json:"description"`
	Score       int    `json:"score"`
}

type ResourcesAffected struct {
	S3Bucket *S3Bucket `json:"s3Bucket,omitempty"`
}

type S3Bucket struct {
	Name string `json:"name"`
	Arn  string `json:"arn"`
}

// Parse decodes a raw event. Input that is not a JSON object yields an
// empty Finding rather than an error. A field of an unexpected type is left
// zero and the rest of the event is still decoded.
func Parse(raw json.RawMessage) Finding {
	var f Finding
	err := json.Unmarshal(raw, &f)

	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return Finding{}
	}
	return f
}

func (f *Finding) BucketName() string {
	if f == nil || f.Detail == nil || f.Detail.ResourcesAffected == nil || f.Detail.ResourcesAffected.S3Bucket == nil {
		return ""
	}
	return f.Detail.ResourcesAffected.S3Bucket.Name
}

func (f *Finding) HasBucket() bool {
	return f.BucketName() != ""
}

func (f *Finding) FindingID() string {
	if f == nil || f.Detail == nil {
		return ""
	}
	return f.Detail.ID
}

func (f *Finding) FindingType() string {
	if f == nil || f.Detail == nil {
		return ""
	}
	return f.Detail.Type
}

func (f *Finding) SeverityDescription() string {
	if f == nil || f.Detail == nil || f.Detail.Severity == nil {
		return ""
	}
	return f.Detail.Severity.Description
}

// IsMacieFinding reports whether the envelope was emitted by Macie.
// Events from other sources are still processed if they carry a bucket.
func (f *Finding) IsMacieFinding() bool {
	return f.Source == MacieSource && f.DetailType == FindingDetailType
}

func (f *Finding) IsPolicyFinding() bool {
	return strings.HasPrefix(f.FindingType(), PolicyFindingPrefix)
}

// Pretty renders the raw event indented for logging, falling back to the
// raw text when it is not valid JSON.
func Pretty(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
