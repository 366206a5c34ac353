package usecase

import "errors"

// ErrPersistence indicates an infrastructure/repository failure inside a use
// case. No safe fallback exists for it, so the edge surfaces it as a generic
// failure on the triggering event.
var ErrPersistence = errors.New("chat use case persistence error")
