package llm

import "errors"

var (
	// ErrUnavailable indicates the completion backend is unreachable or not
	// configured.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRateLimited indicates the backend refused the call with a rate limit.
	ErrRateLimited = errors.New("llm request rate limited")

	// ErrMalformedResponse indicates the response was not JSON or lacked the
	// required shape. Callers may retry.
	ErrMalformedResponse = errors.New("malformed llm response")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
