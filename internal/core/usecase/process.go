package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/core/normalize"
	"github.com/mkravets/medrecords-ai/internal/core/ports"
	"github.com/mkravets/medrecords-ai/internal/core/trend"
)

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	alerts     ports.AlertRepository
	storage    ports.ObjectStorage
	extractor  ports.DocumentExtractor
	hinter     ports.TextHinter
	normalizer *normalize.Normalizer
	observer   ports.ProcessObserver
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	alerts ports.AlertRepository,
	storage ports.ObjectStorage,
	extractor ports.DocumentExtractor,
	hinter ports.TextHinter,
	normalizer *normalize.Normalizer,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		alerts:     alerts,
		storage:    storage,
		extractor:  extractor,
		hinter:     hinter,
		normalizer: normalizer,
	}
}

// SetObserver installs an optional instrumentation hook. It must be called
// before the first ProcessByID.
func (uc *ProcessDocumentUseCase) SetObserver(observer ports.ProcessObserver) {
	uc.observer = observer
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.persistAlerts(ctx, doc); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.MedicalDocument, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	image, err := uc.loadImage(ctx, doc)
	if err != nil {
		return nil, err
	}

	raw, err := uc.extract(ctx, doc, image)
	if err != nil {
		return nil, err
	}

	rec, err := uc.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SaveExtraction(ctx, doc.ID, rec); err != nil {
		return nil, fmt.Errorf("save extraction: %w", err)
	}

	doc.ApplyExtraction(rec)
	if uc.observer != nil {
		uc.observer.ObserveExtraction(len(doc.LabResults))
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.MedicalDocument, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) loadImage(ctx context.Context, doc *domain.MedicalDocument) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	return raw, nil
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, doc *domain.MedicalDocument, image []byte) (string, error) {
	hint := ""
	if uc.hinter != nil {
		hint = uc.hinter.TextHint(ctx, doc)
	}

	raw, err := uc.extractor.ExtractDocument(ctx, image, hint)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return raw, nil
}

func (uc *ProcessDocumentUseCase) persistAlerts(ctx context.Context, doc *domain.MedicalDocument) error {
	alerts := trend.Alerts(*doc)
	if len(alerts) == 0 {
		return nil
	}
	if err := uc.alerts.CreateBatch(ctx, alerts); err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	if uc.observer != nil {
		for _, alert := range alerts {
			uc.observer.ObserveAlert(alert.Type)
		}
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
