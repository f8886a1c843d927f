package pool

import "errors"

// Pool sentinel errors. Collaborator failures (insufficient balance,
// failed payout) are propagated unwrapped from the Ledger and Custody
// implementations.
var (
	ErrUnauthorized        = errors.New("caller is not the administrator")
	ErrAlreadyInitialized  = errors.New("pool already initialized")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientReserve = errors.New("insufficient pool reserve")
	ErrOverflow            = errors.New("reserve arithmetic overflow")
)
