package httpadapter

import (
	"net/http"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrAlertNotFound):
		return http.StatusNotFound
	// Malformed extractions surface as retryable: the document photo can be
	// re-submitted, the payload itself was simply unreadable.
	case domain.IsKind(err, domain.ErrMalformedExtraction):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
