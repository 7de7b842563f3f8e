package web

import "errors"

var (
	ErrPanic       = errors.New("recovered panic")
	errMissingAuth = errors.New("missing bearer token")
)
