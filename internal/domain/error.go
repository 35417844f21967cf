package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid execution context")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// Promo engine errors
	ErrInvalidCatalog    = errors.New("invalid promo catalog")
	ErrLockHeld          = errors.New("lock already held")
	ErrEmptyGeneration   = errors.New("generated content empty or too short")
	ErrGeneratorDisabled = errors.New("promo generator disabled")
)
