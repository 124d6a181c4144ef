package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mkravets/medrecords-ai/internal/config"
	"github.com/mkravets/medrecords-ai/internal/core/normalize"
	"github.com/mkravets/medrecords-ai/internal/core/ports"
	"github.com/mkravets/medrecords-ai/internal/core/usecase"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/extractor/pdftext"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/queue/nats"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/repository/postgres"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/resilience"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/storage/localfs"
	"github.com/mkravets/medrecords-ai/internal/infrastructure/vision"
)

type App struct {
	Config config.Config

	Queue  ports.MessageQueue
	Repo   ports.DocumentRepository
	Alerts ports.AlertRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC *usecase.ProcessDocumentUseCase
	TrendUC   ports.TrendService
	AlertUC   ports.AlertService
	DeleteUC  ports.DocumentRemover

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	alertRepo := postgres.NewAlertRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	visionClient := vision.New(cfg.VisionURL, cfg.VisionModel, vision.Options{
		RequestTimeout:     time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
		RequestsPerMinute:  cfg.VisionRequestsPerMin,
		ResilienceExecutor: executor,
	})
	hinter := pdftext.New(storage)
	normalizer := normalize.New()

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, alertRepo, storage, visionClient, hinter, normalizer)
	trendUC := usecase.NewTrendUseCase(repo)
	alertUC := usecase.NewAlertUseCase(alertRepo)
	deleteUC := usecase.NewDeleteDocumentUseCase(repo, alertRepo)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Alerts: alertRepo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		TrendUC:   trendUC,
		AlertUC:   alertUC,
		DeleteUC:  deleteUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
