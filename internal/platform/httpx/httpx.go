package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError is returned for non-2xx responses from external APIs.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.Status, strings.TrimSpace(body))
}

func (e *StatusError) HTTPStatusCode() int { return e.Status }

func IsRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

// RetryPolicy controls Do.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseBackoff: 500 * time.Millisecond, MaxBackoff: 5 * time.Second}
}

// Do sends the request built by newReq, retrying retryable failures, and returns
// the body of the first 2xx response. newReq is called once per attempt so bodies
// can be rebuilt.
func Do(ctx context.Context, hc *http.Client, provider string, policy RetryPolicy, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	var lastErr error
	backoff := policy.BaseBackoff
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := hc.Do(req)
		var wait time.Duration
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", provider, err)
		} else {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if readErr != nil {
					return nil, fmt.Errorf("%s: read body: %w", provider, readErr)
				}
				return body, nil
			}
			lastErr = &StatusError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
			wait = RetryAfterDuration(resp, backoff, policy.MaxBackoff)
		}
		if attempt == policy.MaxAttempts || !IsRetryableError(lastErr) {
			break
		}
		if wait == 0 {
			wait = backoff
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", provider, ctx.Err())
		case <-time.After(JitterSleep(wait)):
		}
		backoff *= 2
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return nil, lastErr
}
