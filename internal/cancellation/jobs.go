package cancellation

import (
	"context"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"
)

// JobProcessor retries failed refunds in the background
type JobProcessor struct {
	service Service
	config  *JobConfig
	done    chan struct{}
}

// JobConfig contains configuration for the refund retry job
type JobConfig struct {
	RetryInterval time.Duration
	MaxAttempts   int
	BatchSize     int
}

// JobConfigFrom maps the app refund config, filling defaults
func JobConfigFrom(cfg config.RefundConfig) *JobConfig {
	jc := &JobConfig{
		RetryInterval: cfg.RetryInterval,
		MaxAttempts:   cfg.MaxAttempts,
		BatchSize:     cfg.BatchSize,
	}
	if jc.RetryInterval <= 0 {
		jc.RetryInterval = 5 * time.Minute
	}
	if jc.MaxAttempts <= 0 {
		jc.MaxAttempts = 5
	}
	if jc.BatchSize <= 0 {
		jc.BatchSize = 50
	}
	return jc
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, cfg *JobConfig) *JobProcessor {
	if cfg == nil {
		cfg = JobConfigFrom(config.RefundConfig{})
	}
	return &JobProcessor{
		service: service,
		config:  cfg,
		done:    make(chan struct{}),
	}
}

// Start starts the retry loop
func (jp *JobProcessor) Start(ctx context.Context) {
	logger.GetDefault().Info("🔁 Starting refund retry job",
		"interval", jp.config.RetryInterval.String(), "max_attempts", jp.config.MaxAttempts)
	go jp.run(ctx)
}

// Stop stops the retry loop
func (jp *JobProcessor) Stop() {
	close(jp.done)
	logger.GetDefault().Info("🔁 Refund retry job stopped")
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.RunOnce(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce processes one batch of pending refunds
func (jp *JobProcessor) RunOnce(ctx context.Context) int {
	refunded, err := jp.service.RetryPendingRefunds(ctx, jp.config.MaxAttempts, jp.config.BatchSize)
	if err != nil {
		logger.GetDefault().Error("Refund retry batch failed", "error", err)
		return refunded
	}
	if refunded > 0 {
		logger.GetDefault().Info("Refund retry batch processed", "refunded", refunded)
	}
	return refunded
}
