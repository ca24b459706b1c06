package engine

import "errors"

var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrIneligibleAction      = errors.New("ineligible action")
	ErrInvalidPlacement      = errors.New("invalid placement")
	ErrStaleReference        = errors.New("stale reference")
	ErrUnknownAction         = errors.New("unknown action")
	ErrInvalidDirection      = errors.New("invalid direction")
	ErrEntityNotFound        = errors.New("entity not found")
)
