package extract

import "errors"

// Common errors returned by the extract package
var (
	// ErrUnsupportedType is returned for file types no extractor handles
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned when content exceeds the configured size limit
	ErrTooLarge = errors.New("content exceeds size limit")

	// ErrEmptyResult is returned when extraction yields no usable text
	ErrEmptyResult = errors.New("no text content extracted")

	// ErrFetchFailed is returned when a URL cannot be retrieved
	ErrFetchFailed = errors.New("failed to fetch URL")
)
