package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/core/ports"
	"github.com/mkravets/medrecords-ai/internal/core/trend"
)

// TrendUseCase recomputes the derived trend view from scratch on every call.
// Trends hold no state of their own: they are a pure function of the stored
// document set.
type TrendUseCase struct {
	repo ports.DocumentRepository
}

func NewTrendUseCase(repo ports.DocumentRepository) *TrendUseCase {
	return &TrendUseCase{repo: repo}
}

func (uc *TrendUseCase) Trends(ctx context.Context) ([]domain.LabTrend, error) {
	docs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return trend.Compute(docs), nil
}
