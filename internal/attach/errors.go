package attach

import "errors"

var (
	// ErrAlreadyBound means an offset capture was attempted on a record
	// that already holds one. Offsets only reset through Record.Clear.
	ErrAlreadyBound = errors.New("attach: offset already captured")

	// ErrNoDependent means the record has no live dependent body.
	ErrNoDependent = errors.New("attach: record has no dependent")
)
