package ai

import "errors"

// ErrUnavailable indicates the LLM request failed or produced no usable output.
var ErrUnavailable = errors.New("ai unavailable")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
