// Package httputil provides retry handling for the upstream HTTP clients.
//
// [Retry] re-runs an operation with exponential backoff as long as it fails
// with a [RetryableError]. Clients wrap transient failures in that type:
//
//   - connection errors and timeouts
//   - 5xx responses
//   - 429 rate limit responses
//
// Everything else (4xx, decode errors, OAI-PMH protocol errors) fails
// immediately. [RetryWithBackoff] uses 3 attempts starting at one second.
package httputil
