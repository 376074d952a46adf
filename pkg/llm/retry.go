package llm

import (
	"context"
	"math"
	"strings"
	"time"
)

const retryBaseDelay = 500 * time.Millisecond

// send posts the payload, retrying transient failures when the config asks
// for it. MaxRetries of 1 or less sends exactly once.
func (c *Client) send(ctx context.Context, payload []byte) ([]byte, error) {
	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := c.post(ctx, c.http, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == attempts-1 || !isRetryable(err) {
			break
		}

		delay := backoffDelay(attempt)
		c.logger.Warn("LLM request failed, retrying",
			"attempt", attempt+1,
			"max_retries", attempts,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(float64(retryBaseDelay) * math.Pow(2, float64(attempt)))
	if delay > 30*time.Second {
		return 30 * time.Second
	}
	return delay
}

// isRetryable treats rate limits, server errors and timeouts as transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, keyword := range []string{"429", "500", "502", "503", "timeout", "connection reset"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
