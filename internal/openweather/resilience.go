package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// backoffConfig controls retry behaviour for outbound provider calls.
type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// doRequest executes an HTTP request with exponential-backoff retries behind
// a circuit breaker. Rate-limit and 5xx responses count as failures and are
// retried; other non-2xx responses fail immediately inside the breaker.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	backoff backoffConfig,
	newRequest func() (*http.Request, error),
) (*http.Response, error) {
	delay := backoff.initialInterval
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= backoff.maxRetries {
			return nil, lastErr
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if backoff.maxInterval > 0 && delay > backoff.maxInterval {
			delay = backoff.maxInterval
		}
	}
}
