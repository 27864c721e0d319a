package services

import "errors"

// Lifecycle error taxonomy. Handlers map these to HTTP statuses; anything
// not in this list is an internal persistence failure and surfaces as 500.
var (
	// ErrValidation covers malformed identifiers, addresses, amounts, and
	// payloads. Client input problem, never retried internally.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateBounty is the idempotency guard: the identifier is already
	// registered. Callers should treat it as already-succeeded.
	ErrDuplicateBounty = errors.New("bounty already exists")

	ErrNotFound = errors.New("bounty not found")

	// ErrNotOpen rejects actions against a bounty in a terminal state.
	ErrNotOpen = errors.New("bounty is not open")

	// ErrInvalidTransition rejects any status change other than
	// Open -> Completed or Open -> Cancelled.
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrMissingHunter = errors.New("hunter_address is required for completed bounties")
)
