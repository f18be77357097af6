package ord

import "errors"

var (
	// ErrRequestFailed indicates the indexer could not be reached or answered with an error status.
	ErrRequestFailed = errors.New("ord: request failed")

	// ErrNotFound indicates the indexer has no record of the requested object.
	ErrNotFound = errors.New("ord: not found")

	// ErrInvalidResponse indicates the indexer returned a body that does not decode.
	ErrInvalidResponse = errors.New("ord: invalid response")

	// ErrOutputNotFound indicates an outpoint could not be resolved to an indexed output.
	ErrOutputNotFound = errors.New("ord: output not found")
)
