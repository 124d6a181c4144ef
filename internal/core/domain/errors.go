package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	// ErrMalformedExtraction is the only hard failure of the extraction
	// normalizer: no JSON object could be recovered from the model output.
	// Field-level anomalies never raise it.
	ErrMalformedExtraction = errors.New("malformed extraction")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
