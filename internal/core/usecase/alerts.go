package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/core/ports"
)

type AlertUseCase struct {
	alerts ports.AlertRepository
}

func NewAlertUseCase(alerts ports.AlertRepository) *AlertUseCase {
	return &AlertUseCase{alerts: alerts}
}

func (uc *AlertUseCase) List(ctx context.Context, includeDismissed bool) ([]domain.HealthAlert, error) {
	alerts, err := uc.alerts.List(ctx, includeDismissed)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (uc *AlertUseCase) Dismiss(ctx context.Context, alertID string) error {
	if err := uc.alerts.Dismiss(ctx, alertID); err != nil {
		return fmt.Errorf("dismiss alert: %w", err)
	}
	return nil
}

// DeleteDocumentUseCase removes a document, the observations it owns, and the
// alerts derived from it.
type DeleteDocumentUseCase struct {
	repo   ports.DocumentRepository
	alerts ports.AlertRepository
}

func NewDeleteDocumentUseCase(repo ports.DocumentRepository, alerts ports.AlertRepository) *DeleteDocumentUseCase {
	return &DeleteDocumentUseCase{repo: repo, alerts: alerts}
}

func (uc *DeleteDocumentUseCase) Delete(ctx context.Context, documentID string) error {
	if err := uc.alerts.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document alerts: %w", err)
	}
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
