package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrAlreadyNotified   = errors.New("already notified")
	ErrMissingAddress    = errors.New("recipient has no address for channel")
	ErrGatewayRejected   = errors.New("gateway rejected message")
	ErrRunInProgress     = errors.New("alert run already in progress")
)
