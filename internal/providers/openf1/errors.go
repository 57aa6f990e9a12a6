package openf1

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadRequest    = errors.New("openf1 bad request")
	ErrRequestFailed = errors.New("openf1 request failed")
	ErrBadPayload    = errors.New("openf1 bad payload")
	ErrMissingField  = errors.New("openf1 missing field")
)
