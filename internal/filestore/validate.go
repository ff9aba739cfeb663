package filestore

import (
	"fmt"
	"slices"
)

// bytesPerMB converts the configured megabyte ceiling to bytes.
const bytesPerMB = 1024 * 1024

// Reason identifies why an upload was rejected.
type Reason string

const (
	ReasonTypeNotSupported Reason = "TYPE_NOT_SUPPORTED"
	ReasonSizeExceeded     Reason = "SIZE_EXCEEDED"
)

// RejectedError is returned by Validate when an upload fails a rule.
type RejectedError struct {
	Reason Reason
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("file rejected (%s): %s", e.Reason, e.Detail)
}

// Validate checks the declared content type and size of an upload before any
// storage I/O happens. Rules are applied in order and the first failure wins:
// the content type must be one of allowedTypes, then the size must not exceed
// maxSizeMB megabytes.
func Validate(contentType string, sizeBytes int64, allowedTypes []string, maxSizeMB int) error {
	if !slices.Contains(allowedTypes, contentType) {
		return &RejectedError{
			Reason: ReasonTypeNotSupported,
			Detail: fmt.Sprintf("content type %q is not allowed", contentType),
		}
	}

	limit := int64(maxSizeMB) * bytesPerMB
	if sizeBytes > limit {
		return &RejectedError{
			Reason: ReasonSizeExceeded,
			Detail: fmt.Sprintf("%d bytes exceeds limit of %d bytes", sizeBytes, limit),
		}
	}

	return nil
}
