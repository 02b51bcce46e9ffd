package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig covers every construction-time configuration failure.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidExtension rejects ledger paths without the table's extension.
	ErrInvalidExtension = fmt.Errorf("%w: file name must end with .csv", ErrConfig)

	// ErrSequence is returned when an operation is illegal in the current
	// session state. The session state is left unchanged.
	ErrSequence = errors.New("operation not allowed in the current session state")

	// ErrNotStarted is returned by Stop when the session was never started.
	ErrNotStarted = errors.New("session was never started")
)
