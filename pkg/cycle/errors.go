package cycle

import "errors"

var (
	// ErrControllerNotFound indicates that a requested controller doesn't exist in the registry.
	ErrControllerNotFound = errors.New("controller not found in registry")

	// ErrInvalidConfig indicates that a controller's configuration is invalid.
	ErrInvalidConfig = errors.New("invalid controller configuration")
)
