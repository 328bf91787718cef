package model

import (
	"errors"
)

var (
	// ErrNoMatch is how a detector says "this blob is not mine". The scan
	// engine absorbs it, so it never reaches a caller.
	ErrNoMatch = errors.New("no match")
	// ErrTooBig marks entries skipped because of the scan size cap.
	ErrTooBig = errors.New("file too big")
)
