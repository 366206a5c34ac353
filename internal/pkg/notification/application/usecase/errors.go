package usecase

import "errors"

// ErrPersistence wraps storage failures so callers can branch without
// depending on driver error types.
var ErrPersistence = errors.New("notification persistence error")
