// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"costli-agents/internal/bootstrap"
	"costli-agents/internal/common/camunda"
	"costli-agents/internal/common/config"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/common/observability"
)

const shutdownTimeout = 30 * time.Second

// retryWithBackoff calls operation until it succeeds, doubling the delay
// between attempts.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	zapLog.Info("starting worker manager",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
		return err
	}, 10, 2*time.Second, zapLog, "zeebe connection")
	if err != nil {
		zapLog.Fatal("zeebe unavailable", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("zeebe connected", zap.String("address", cfg.Camunda.BrokerAddress))

	app, err := bootstrap.New(ctx, cfg, log, bootstrap.Overrides{Obs: obs})
	if err != nil {
		zapLog.Fatal("wiring failed", zap.Error(err))
	}
	defer app.Close(context.Background())

	group := camunda.NewWorkerGroup(zeebe.GetClient(), log).WithObservability(obs)
	for _, w := range app.Workers() {
		group.Start(w.TaskType, config.GetWorkerConfig(cfg, w.TaskType), w.Handle)
	}
	zapLog.Info("workers registered", zap.Strings("taskTypes", group.TaskTypes()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           newMux(zeebe.HealthCheck, group.TaskTypes),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received, stopping workers")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		zapLog.Warn("http shutdown", zap.Error(err))
	}
	group.Stop()
	if err := shutdownTracing(sctx); err != nil {
		zapLog.Warn("tracing flush", zap.Error(err))
	}
	zapLog.Info("worker manager stopped")
}
