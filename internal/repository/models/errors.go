package models

import "errors"

var (
	// ErrRejected means the store answered but refused the request (4xx).
	ErrRejected = errors.New("store rejected request")
	// ErrUnavailable covers network failures, timeouts and 5xx answers.
	ErrUnavailable = errors.New("store unavailable")
)
