// Package common defines shared sentinel errors used across CloudDrop
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrorUniqueViolation = errors.New("unique violation")

	// Lifecycle errors. A transfer is shared at most once; the second
	// attempt surfaces this error.
	ErrorAlreadyShared = errors.New("already shared")

	// Request errors (missing or malformed required fields).
	ErrorValidation = errors.New("validation error")

	// Infrastructure errors.
	ErrorPersistence          = errors.New("persistence error")
	ErrorNotificationDelivery = errors.New("notification delivery error")

	// Ingestion errors.
	ErrorFileTooLarge = errors.New("file too large")
)
