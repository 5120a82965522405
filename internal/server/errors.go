package server

import "errors"

var (
	// ErrValidation is returned when a request is missing required fields.
	// Nothing has been uploaded or persisted when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrUpload is returned when the media provider rejects an attachment.
	// The message is not persisted and nothing is broadcast.
	ErrUpload = errors.New("media upload failed")
	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("not found")
)
