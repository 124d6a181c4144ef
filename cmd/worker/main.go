package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkravets/medrecords-ai/internal/bootstrap"
	"github.com/mkravets/medrecords-ai/internal/config"
	"github.com/mkravets/medrecords-ai/internal/core/domain"
	"github.com/mkravets/medrecords-ai/internal/observability/logging"
	"github.com/mkravets/medrecords-ai/internal/observability/metrics"
)

// metricsObserver forwards pipeline outcomes to the worker metrics registry.
type metricsObserver struct {
	metrics *metrics.WorkerMetrics
}

func (o *metricsObserver) ObserveExtraction(observations int) {
	o.metrics.ObserveObservations("worker", observations)
}

func (o *metricsObserver) ObserveAlert(alertType domain.AlertType) {
	o.metrics.RecordAlert("worker", string(alertType))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app.ProcessUC.SetObserver(&metricsObserver{metrics: workerMetrics})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(start), processErr)
		if domain.IsKind(processErr, domain.ErrMalformedExtraction) {
			workerMetrics.RecordMalformed("worker")
		}
		return processErr
	})
	if err != nil {
		slog.Error("worker subscribe error", "error", err)
		os.Exit(1)
	}
}
