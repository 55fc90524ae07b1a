package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// transient reports whether a failed request may succeed if repeated:
// transport errors (client timeouts included), a body cut short, 429 and
// 5xx responses. Nothing is transient once ctx, the caller's context, is
// done.
func transient(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	// Client timeouts match context.DeadlineExceeded inside a *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// retryWithContext calls fn up to maxTries times until it succeeds, the
// error is not transient, or ctx is done. Attempts are spaced by a doubling
// backoff.
func retryWithContext[T any](ctx context.Context, maxTries int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !transient(ctx, err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
