package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrMissingAccessKey = errors.New("access key not configured")
	ErrRequest          = errors.New("upstream request failed")
	ErrStatus           = errors.New("unexpected upstream status")
	ErrDecode           = errors.New("decode upstream response")
	ErrRejected         = errors.New("upstream rejected request")
)
