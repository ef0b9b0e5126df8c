// Package common defines shared sentinel errors used across productkeeper
// layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured is returned by stand-in collaborators when the
	// corresponding endpoint, key or DSN is absent from the configuration.
	ErrNotConfigured = errors.New("not configured")

	// Validation errors, raised before any network call. All of them
	// wrap ErrorValidation.
	ErrorValidation         = errors.New("validation error")
	ErrNoPhotos             = fmt.Errorf("%w: at least one photo is required", ErrorValidation)
	ErrNothingToSave        = fmt.Errorf("%w: add photos or a description first", ErrorValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: description is empty", ErrorValidation)
	ErrInvalidProductID     = fmt.Errorf("%w: invalid product identifier", ErrorValidation)
	ErrConfirmationRequired = fmt.Errorf("%w: removal must be confirmed", ErrorValidation)
	ErrInvalidDecision      = fmt.Errorf("%w: invalid decision", ErrorValidation)
	ErrNotAnImage           = fmt.Errorf("%w: only image files can be added", ErrorValidation)
	ErrMalformedUpload      = fmt.Errorf("%w: photos must be sent as multipart form data", ErrorValidation)

	// Workflow flow-control errors.
	ErrBusy            = errors.New("operation already in progress")
	ErrNoConflict      = errors.New("no pending conflict")
	ErrConflictPending = errors.New("description conflict must be resolved first")
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrMissingToken = errors.New("missing token")
)
