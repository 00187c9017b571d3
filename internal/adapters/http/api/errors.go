package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingParam  = errors.New("missing query parameter")
	ErrInvalidUserID = errors.New("user id must be an integer")
)
