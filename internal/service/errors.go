package service

import "errors"

// Error taxonomy. Every operation surfaces one of these (possibly wrapped
// with detail via fmt.Errorf and %w); the HTTP layer maps each to a stable
// kind. Score clamping is the single documented silent adjustment.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidEligibility = errors.New("participant not in eligible pool")
	ErrEmptyShortlist     = errors.New("round shortlist is empty")
	ErrConflict           = errors.New("participant already assigned to a group")
	ErrNotAssigned        = errors.New("panel is not assigned to this group")
	ErrNoTopicsAvailable  = errors.New("no unused topics remain")
	ErrInvalidState       = errors.New("operation not valid in current lifecycle state")
)
