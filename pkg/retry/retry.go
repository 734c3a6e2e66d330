// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/winapp2trim/pkg/logging"
)

// NonRetryableError interface for errors that should not be retried.
// Retry matches it with errors.As, so any error in the chain that has an
// Unwrap() error method (including fmt.Errorf's %w wrappers) stops retrying.
type NonRetryableError interface {
	error
	Unwrap() error
}

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Retry retries a given function with exponential backoff
func Retry(config RetryConfig, action func() error) error {
	interval := config.InitialInterval

	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}

		// Check if this is a non-retryable error
		var nonRetryableErr NonRetryableError
		if errors.As(err, &nonRetryableErr) {
			logging.Warn("non-retryable error encountered", "attempt", attempt, "error", err)
			return err
		}

		if attempt < config.MaxRetries {
			logging.Warn("attempt failed, retrying",
				"attempt", attempt, "max_attempts", config.MaxRetries,
				"retry_delay", interval.String(), "error", err)
		} else {
			logging.Warn("attempt failed, no more retries",
				"attempt", attempt, "max_attempts", config.MaxRetries, "error", err)
		}

		time.Sleep(interval)
		interval = time.Duration(float64(interval) * config.Multiplier)
	}

	return fmt.Errorf("action failed after %d attempts", config.MaxRetries)
}
