package parser

import (
	"fmt"

	"collisionos/internal/domain"
)

// MalformedDocumentError indicates content that cannot be interpreted as
// the expected format at all.
type MalformedDocumentError struct {
	Format domain.FileType
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s document: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s document: %s", e.Format, e.Reason)
}

// Unwrap exposes the underlying cause; errors.Is also matches
// domain.ErrMalformedDocument.
func (e *MalformedDocumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrMalformedDocument, e.Err}
	}
	return []error{domain.ErrMalformedDocument}
}

// NewMalformedDocumentError creates a MalformedDocumentError.
func NewMalformedDocumentError(format domain.FileType, reason string, err error) *MalformedDocumentError {
	return &MalformedDocumentError{Format: format, Reason: reason, Err: err}
}
