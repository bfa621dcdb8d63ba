package quote

import "github.com/pkg/errors"

// Failure classes. Callers match them with errors.Is.
var (
	// ErrUnreachable is a network or transport failure, or a non-2xx reply
	ErrUnreachable = errors.New("quote source unreachable")
	// ErrNotFound means the symbol could not be resolved
	ErrNotFound = errors.New("symbol not found")
	// ErrInvalid is a malformed request or response payload
	ErrInvalid = errors.New("invalid quote data")
)
