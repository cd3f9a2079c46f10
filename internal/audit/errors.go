package audit

import (
	"errors"
	"fmt"
)

var (
	ErrMarshallingRecord = errors.New("failed to marshal remediation record")
	ErrWritingRecord     = errors.New("failed to write remediation record")
)

func ErrorMarshallingRecord(cause error) error {
	return fmt.Errorf("%w: cause=%v", ErrMarshallingRecord, cause)
}

func ErrorWritingRecord(table, bucket string, cause error) error {
	return fmt.Errorf("%w: table=%s bucket=%s cause=%w", ErrWritingRecord, table, bucket, cause)
}
