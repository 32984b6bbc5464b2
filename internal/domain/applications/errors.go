package applications

import "errors"

// ErrNotFound indicates an unknown application id. It is the only pipeline
// failure surfaced to callers as a hard error.
var ErrNotFound = errors.New("application not found")

// ErrDuplicateID indicates an intake attempt with an id that already exists.
var ErrDuplicateID = errors.New("application id already exists")
