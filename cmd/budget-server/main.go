// cmd/budget-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ctc-budget-checker/internal/api"
	"ctc-budget-checker/internal/budget"
	"ctc-budget-checker/internal/common/camunda"
	"ctc-budget-checker/internal/common/config"
	"ctc-budget-checker/internal/common/logger"
	"ctc-budget-checker/internal/common/observability"
	"ctc-budget-checker/internal/common/validation"
	checkctc "ctc-budget-checker/internal/workers/budget/check-ctc-budget"
	"ctc-budget-checker/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
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

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting budget checker",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg.MustFind(registry.CheckCTCActivityID).InputSchema)
	if err != nil {
		zapLog.Fatal("input schema invalid", zap.Error(err))
	}

	checker := budget.NewChecker(budget.Limits{Min: cfg.Budget.MinLPA, Max: cfg.Budget.MaxLPA}, log)
	decoder := budget.NewPayloadDecoder(validator)

	// --- Optional Zeebe job worker ---
	readyChecks := map[string]api.ReadyCheck{}
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var zeebeClient *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClientWithConfig(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebeClient.Close()
		zapLog.Info("Zeebe client connected successfully", zap.String("broker", cfg.Camunda.BrokerAddress))

		jobTimeout := config.GetDuration(cfg.Camunda.Timeout)
		if jobTimeout <= 0 {
			jobTimeout = reg.MustFind(registry.CheckCTCActivityID).JobLockTimeout()
		}

		handler := checkctc.NewHandler(checkctc.LoadConfig(cfg.Camunda), checker, decoder, obs, log)
		jobWorker = camunda.NewWorker(
			zeebeClient.GetClient(),
			cfg.Camunda.TaskType,
			cfg.Camunda.MaxJobsActive,
			jobTimeout,
			handler,
			log,
		)
		readyChecks["zeebe"] = zeebeClient.HealthCheck
	} else {
		zapLog.Info("Zeebe worker disabled")
	}

	// --- HTTP server ---
	mux := http.NewServeMux()
	api.NewHandler(api.HandlerOptions{
		Checker:       checker,
		Decoder:       decoder,
		Registry:      reg,
		Observability: obs,
		Logger:        log,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		ReadyChecks:   readyChecks,
	}).RegisterRoutes(mux)
	mux.Handle("GET "+cfg.Observability.MetricsPath, promhttp.Handler())

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.Chain(mux,
			api.RequestLogger(log),
			api.Recover(log),
			api.CORS(api.CORSConfig{AllowedOrigins: cfg.Server.CORSOrigins}),
		),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  config.GetDuration(cfg.Server.IdleTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Budget checker stopped gracefully")
}
