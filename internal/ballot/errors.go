package ballot

import "errors"

var (
	// ErrSignatureMismatch is returned when a log's topic0 is not the expected BallotCreated signature.
	ErrSignatureMismatch = errors.New("event signature mismatch")
	// ErrMalformed is returned when a log's data cannot be read with the expected layout.
	ErrMalformed = errors.New("malformed ballot log")
	// ErrUnsupported is returned for contract type and version pairs that were never deployed.
	ErrUnsupported = errors.New("unsupported contract version")
)
