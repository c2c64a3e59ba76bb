// Package common defines sentinel errors shared by the storage, session and
// journal layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorNotSetUp     = errors.New("journal is not set up")
	ErrorAlreadySetUp = errors.New("journal is already set up")

	// Validation errors.
	ErrorIncorrectPayload = errors.New("incorrect payload")
)
