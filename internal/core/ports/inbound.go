package ports

import (
	"context"
	"io"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.MedicalDocument, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.MedicalDocument, error)
	List(ctx context.Context) ([]domain.MedicalDocument, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// TrendService recomputes the derived trend view from the current document set.
type TrendService interface {
	Trends(ctx context.Context) ([]domain.LabTrend, error)
}

// AlertService reads and dismisses derived health alerts.
type AlertService interface {
	List(ctx context.Context, includeDismissed bool) ([]domain.HealthAlert, error)
	Dismiss(ctx context.Context, alertID string) error
}

// DocumentRemover deletes a document together with the observations it owns.
type DocumentRemover interface {
	Delete(ctx context.Context, documentID string) error
}
