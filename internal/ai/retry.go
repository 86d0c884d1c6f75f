package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// retrier runs a request function with exponential backoff. Transport
// timeouts, 408, 429 and 5xx responses are retried; everything else is
// returned as is.
type retrier struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleeper   func(time.Duration)
}

func newRetrier(cfg ProviderConfig) retrier {
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	return retrier{
		attempts:  attempts,
		baseDelay: defaultRetryBaseDelay,
		maxDelay:  defaultRetryMaxDelay,
		sleeper:   cfg.Sleeper,
	}
}

func (r retrier) do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		delay, retry := r.delay(ctx, err, attempt)
		if !retry {
			return err
		}
		if serr := r.sleep(ctx, delay); serr != nil {
			return err
		}
	}
	return err
}

func (r retrier) delay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= r.attempts || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		switch aerr.Kind {
		case KindUpstream, KindRateLimit:
			switch {
			case aerr.StatusCode == http.StatusRequestTimeout,
				aerr.StatusCode == http.StatusTooManyRequests,
				aerr.StatusCode >= http.StatusInternalServerError:
				var ra *retryAfterError
				if errors.As(aerr.Err, &ra) && ra.after > 0 {
					return r.capDelay(ra.after), true
				}
				return r.backoff(attempt), true
			}
			return 0, false
		case KindTransport:
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return r.backoff(attempt), true
			}
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				return r.backoff(attempt), true
			}
			return 0, false
		}
	}
	return 0, false
}

// backoff doubles from the base delay: attempt 1 -> base, 2 -> 2*base, ...
func (r retrier) backoff(attempt int) time.Duration {
	if r.baseDelay <= 0 {
		return 0
	}
	delay := r.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > r.maxDelay/2 {
			delay = r.maxDelay
			break
		}
		delay *= 2
	}
	return r.capDelay(delay)
}

func (r retrier) capDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if r.maxDelay > 0 && d > r.maxDelay {
		return r.maxDelay
	}
	return d
}

func (r retrier) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if r.sleeper != nil {
		r.sleeper(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryAfterError carries a parsed Retry-After header inside an *Error.
type retryAfterError struct {
	after time.Duration
}

func (e *retryAfterError) Error() string {
	return "retry after " + e.after.String()
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
