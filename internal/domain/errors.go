package domain

import "errors"

var (
	// ErrUnknownDomain and ErrUnknownKind indicate catalog misuse. The domain
	// and kind enumerations are fixed, so hitting either at runtime is a code
	// or data defect, not an operational condition.
	ErrUnknownDomain = errors.New("unknown domain")
	ErrUnknownKind   = errors.New("unknown resource kind")

	// ErrInvalidDocument marks a malformed interchange document. Nothing has
	// external side effects yet when it is raised, so the whole run aborts.
	ErrInvalidDocument = errors.New("invalid plan document")
)
