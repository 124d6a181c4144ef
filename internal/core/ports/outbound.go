package ports

import (
	"context"
	"io"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.MedicalDocument) error
	GetByID(ctx context.Context, id string) (*domain.MedicalDocument, error)
	List(ctx context.Context) ([]domain.MedicalDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, rec *domain.ExtractionRecord) error
	Delete(ctx context.Context, id string) error
}

// AlertRepository persists derived health alerts.
type AlertRepository interface {
	CreateBatch(ctx context.Context, alerts []domain.HealthAlert) error
	List(ctx context.Context, includeDismissed bool) ([]domain.HealthAlert, error)
	Dismiss(ctx context.Context, id string) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentExtractor sends a stored document image to the document-
// understanding model and returns its raw, untrusted response text. The
// textHint, when non-empty, carries embedded text recovered from the upload.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, image []byte, textHint string) (string, error)
}

// TextHinter recovers embedded text from a stored upload, best effort.
type TextHinter interface {
	TextHint(ctx context.Context, doc *domain.MedicalDocument) string
}

// ProcessObserver receives pipeline outcomes for instrumentation.
// Implementations must be safe for concurrent use.
type ProcessObserver interface {
	ObserveExtraction(observations int)
	ObserveAlert(alertType domain.AlertType)
}
