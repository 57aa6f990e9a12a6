package export

import "errors"

var (
	// ErrMarshalDocument indicates a document could not be serialized.
	ErrMarshalDocument = errors.New("failed to marshal document")

	// ErrWriteDocument indicates a document could not be persisted.
	ErrWriteDocument = errors.New("failed to write document")
)
