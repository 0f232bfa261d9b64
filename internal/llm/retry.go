package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

// RetryConfig bounds the retry loop around a Generator.
type RetryConfig struct {
	MaxRetries int           // extra attempts after the first
	Backoff    time.Duration // doubled after each failed attempt
	Timeout    time.Duration // per attempt; zero disables
}

// Retrying wraps a Generator so transient failures are retried and every
// final failure is reported as common.ErrTransport.
type Retrying struct {
	next   Generator
	cfg    RetryConfig
	logger *slog.Logger
}

func NewRetrying(next Generator, cfg RetryConfig, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Retrying{next: next, cfg: cfg, logger: logger}
}

func (r *Retrying) Generate(ctx context.Context, req Request) (string, error) {
	backoff := r.cfg.Backoff
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == r.cfg.MaxRetries {
			break
		}
		r.logger.Warn("llm.retry.scheduled",
			"attempt", attempt+1,
			"max_retries", r.cfg.MaxRetries,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)
		if err := sleep(ctx, backoff); err != nil {
			lastErr = err
			break
		}
		backoff *= 2
	}
	return "", fmt.Errorf("%w: %w", common.ErrTransport, lastErr)
}

func (r *Retrying) attempt(ctx context.Context, req Request) (string, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	return r.next.Generate(ctx, req)
}

// IsTransient reports whether a failed call is worth repeating:
// network errors, per-attempt timeouts, and HTTP 408, 429 or 5xx.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusRequestTimeout ||
			se.StatusCode == http.StatusTooManyRequests ||
			se.StatusCode >= 500
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AsTransport marks err as a model-service failure unless it already is one.
func AsTransport(err error) error {
	if err == nil || errors.Is(err, common.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrTransport, err)
}
