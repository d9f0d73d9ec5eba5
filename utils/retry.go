package utils

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

type BackoffType int

const (
	Linear BackoffType = iota
	Exponential
	ExponentialJitter
	Fixed
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	BackoffType BackoffType
	// Retryable decides whether a failure is worth another attempt. Nil
	// retries everything.
	Retryable func(error) bool
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
		BackoffType: ExponentialJitter,
	}
}

// GatewayRetryConfig only re-attempts transient gateway failures.
func GatewayRetryConfig() *RetryConfig {
	config := DefaultRetryConfig()
	config.BaseDelay = 200 * time.Millisecond
	config.Retryable = IsTransient
	return config
}

func Retry(ctx context.Context, config *RetryConfig, operation func() error) error {
	var lastErr error
	attempt := 0

	for attempt < config.MaxAttempts {
		if attempt > 0 {
			delay := calculateDelay(config, attempt)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}

		attempt++
	}

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

func calculateDelay(config *RetryConfig, attempt int) time.Duration {
	var delay time.Duration

	switch config.BackoffType {
	case Fixed:
		delay = config.BaseDelay
	case Linear:
		delay = time.Duration(int64(config.BaseDelay) * int64(attempt))
	case Exponential, ExponentialJitter:
		delay = time.Duration(float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt-1)))
	}

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.BackoffType == ExponentialJitter && delay > 0 {
		jitter := time.Duration(rand.Int63n(int64(delay) / 2))
		delay = delay/2 + jitter
	}

	return delay
}
