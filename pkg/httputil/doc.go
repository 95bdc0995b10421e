// Package httputil provides retry support for HTTP operations against a
// Nexus server.
//
// The package distinguishes transient failures from permanent ones through
// the [RetryableError] wrapper: a network timeout or 5xx response is worth
// retrying, a 404 or an authentication rejection is not. Callers wrap
// transient errors at the point where they can tell the difference (status
// code mapping, transport errors) and [Retry] handles the backoff loop.
//
// Example:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetchPage(ctx, url)
//	})
//
// The delay doubles after each failed attempt. Cancellation through the
// context is observed between attempts.
package httputil
