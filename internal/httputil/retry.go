// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay is the base of the exponential backoff. Tests override
// this (and RetryJitter) to avoid real sleeps.
var RetryBaseDelay = 800 * time.Millisecond

// RetryMaxDelay caps a single computed backoff, before jitter.
var RetryMaxDelay = 8 * time.Second

// RetryJitter returns the random delay added to every computed backoff.
var RetryJitter = func() time.Duration {
	return 50*time.Millisecond + time.Duration(rand.Int63n(int64(400*time.Millisecond)))
}

// DefaultMaxAttempts is used when RetryOptions.MaxAttempts is not positive.
const DefaultMaxAttempts = 4

// ErrRetriesExhausted is returned, wrapping the last failure, when every
// attempt failed with a retryable error.
var ErrRetriesExhausted = errors.New("request failed after retries")

// RetryOptions tunes DoWithRetry.
type RetryOptions struct {
	// MaxAttempts bounds attempts, including the first.
	MaxAttempts int

	// Before, when set, runs ahead of every attempt. An error aborts the
	// call and is returned as is.
	Before func(ctx context.Context) error

	// Accept, when set, inspects every 2xx response before it is returned.
	// A non-nil error discards the response and counts as a retryable
	// failure, like a transport error.
	Accept func(resp *http.Response) error

	Logger zerolog.Logger
}

// Retryable reports whether an HTTP status warrants another attempt.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Backoff returns the wait before the given retry (attempt counts from 1):
// min(RetryMaxDelay, RetryBaseDelay*2^(attempt-1)) plus jitter.
func Backoff(attempt int) time.Duration {
	f := float64(RetryBaseDelay) * math.Pow(2, float64(attempt-1))
	d := RetryMaxDelay
	if f < float64(RetryMaxDelay) {
		d = time.Duration(f)
	}
	return d + RetryJitter()
}

// RetryAfter parses a Retry-After header given in seconds. It returns 0
// when the header is absent or not a non-negative number.
func RetryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// DoWithRetry executes req and retries on transport errors and on HTTP
// 429, 500, 502, 503 and 504. The wait before each retry is the larger of
// the server's Retry-After and Backoff(attempt).
//
// Any other response, successful or not, is returned to the caller as is,
// unless opts.Accept rejects a 2xx response.
// Requests with a body must be replayable (req.GetBody set, as
// http.NewRequest does for in-memory readers). If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After the last
// attempt fails it returns an error wrapping ErrRetriesExhausted.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, opts RetryOptions) (*http.Response, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		if opts.Before != nil {
			if err := opts.Before(ctx); err != nil {
				return nil, err
			}
		}

		var wait time.Duration
		resp, err := client.Do(attemptReq)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case Retryable(resp.StatusCode):
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			wait = RetryAfter(resp.Header)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		case opts.Accept != nil && resp.StatusCode >= 200 && resp.StatusCode < 300:
			if lastErr = opts.Accept(resp); lastErr == nil {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		default:
			return resp, nil
		}

		if attempt == maxAttempts {
			break
		}

		wait = max(wait, Backoff(attempt))
		opts.Logger.Debug().
			Err(lastErr).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("wait", wait).
			Msg("retrying request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}
