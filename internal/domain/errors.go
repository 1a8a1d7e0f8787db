package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrProjectNotActive       = errors.New("project not active")
	ErrExceedsRemainingTarget = errors.New("exceeds remaining target")
	ErrPaymentDeclined        = errors.New("payment declined")
	ErrDuplicateOperation     = errors.New("duplicate operation")
	ErrSourceUnavailable      = errors.New("donation source unavailable")
	// ErrReconciliationRequired marks the one failure the system cannot
	// auto-correct: money moved at the gateway but the local record could
	// not be written.
	ErrReconciliationRequired = errors.New("reconciliation required")
)
