package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error
// (HTTP 429 or similar). Callers should back off before retrying.
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnavailable indicates the analysis capability could not be reached or
// failed outright (network, 5xx, timeout). Cached state is never touched.
var ErrUnavailable = errors.New("ai analysis unavailable")

// ErrMalformedOutput indicates the provider responded but the payload failed
// strict schema validation. A malformed score response is never coerced into
// a fabricated numeric score.
var ErrMalformedOutput = errors.New("ai returned malformed output")
