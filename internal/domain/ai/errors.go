package ai

import "errors"

// ErrUnavailable indicates the LLM provider could not be reached or returned
// no usable completion (timeout, connection refused, empty choices).
var ErrUnavailable = errors.New("assistant unavailable")
