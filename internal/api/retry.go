package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// retry executes f with exponential backoff. Client errors (4xx) and
// cancellations fail fast; only transport errors and 5xx are retried.
func retry(ctx context.Context, attempts int, sleep time.Duration, log *zap.Logger, f func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		if !retryable(err) || i == attempts-1 {
			break
		}

		log.Warn("API error, retrying", zap.Error(err), zap.Duration("in", sleep), zap.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	if attempts > 1 && retryable(err) {
		return fmt.Errorf("failed after %d attempts: %w", attempts, err)
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var netErr *transportError
	return errors.As(err, &netErr)
}
