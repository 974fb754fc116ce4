package remote

import (
	"context"
	"errors"
	"time"

	"shuttle/internal/config"
	"shuttle/internal/services"
)

// RetryPolicy bounds transfer attempts. An operation runs Retries+1 times
// total, with a fixed Delay and a session reconnect between attempts.
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
}

// PolicyFromConfig builds the retry policy from transfer settings.
func PolicyFromConfig(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		Retries: cfg.Transfers.RetryCount,
		Delay:   time.Duration(cfg.Transfers.RetryDelaySeconds) * time.Second,
	}
}

// WithRetry runs op up to policy.Retries+1 times. Only connection-level
// failures (tagged services.ErrTransient) are retried; anything else, such
// as a local filesystem error, propagates after the first attempt. After a
// failed attempt it reconnects the session before trying again; a broken
// SFTP session is not recoverable in place, so every retry starts from a
// fresh connection. Reconnect failures count as the attempt's failure.
func WithRetry(ctx context.Context, policy RetryPolicy, client Client, op func() error) error {
	attempts := policy.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if policy.Delay > 0 {
				select {
				case <-time.After(policy.Delay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if err := client.Reconnect(ctx); err != nil {
				lastErr = err
				if !errors.Is(err, services.ErrTransient) {
					return err
				}
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, services.ErrTransient) {
			return lastErr
		}
	}
	return lastErr
}
