package services

import "errors"

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrExternalService    = errors.New("external service failure")
	ErrConflict           = errors.New("conflict")
	ErrGenerationInFlight = errors.New("generation already in flight")
)
