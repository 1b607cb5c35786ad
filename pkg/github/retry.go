package github

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/strowk/renovate/pkg/platform"
)

// RetryConfig defines configuration for retry logic.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func() error

// WithRetry executes an operation with exponential backoff, retrying only
// transient failures: rate limiting, server errors and transport errors.
// Permanent failures return immediately; an exhausted budget returns the last
// error wrapped.
func WithRetry(operation RetryableOperation, config *RetryConfig) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	delay := config.InitialDelay
	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt == config.MaxRetries {
			return fmt.Errorf("giving up after %d retries: %w", config.MaxRetries, err)
		}

		time.Sleep(delay)
		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
}

// isRetryable reports whether an error is worth retrying: a remote 429 or 5xx
// response, or a transport-level failure that never produced a response.
func isRetryable(err error) bool {
	var re *platform.RemoteError
	if errors.As(err, &re) {
		return re.StatusCode == http.StatusTooManyRequests || re.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection-level failures surface as url.Error strings without a typed
	// cause worth matching on.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout")
}
