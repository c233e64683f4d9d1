package utils

import "errors"

// Error kinds surfaced by the models package. The HTTP boundary maps these to
// status codes; models never speak HTTP.
var (
	ErrorRecordNotFound = errors.New("record not found")
	ErrorConflict       = errors.New("conflict")
	ErrorInvalidInput   = errors.New("invalid input")
)
