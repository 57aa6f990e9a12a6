package fastf1

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadRequest     = errors.New("fastf1 bad request")
	ErrRequestFailed  = errors.New("fastf1 request failed")
	ErrBadPayload     = errors.New("fastf1 bad payload")
	ErrMissingColumns = errors.New("fastf1 missing required columns")
)
