package ledger

import "errors"

var (
	// ErrInsufficientBalance is reported when the source account cannot
	// fund a transfer or a custody receive.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransferFailed is reported when a custody payout cannot be
	// funded by the holder account.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrBalanceOverflow is reported when crediting an account would wrap
	// its balance.
	ErrBalanceOverflow = errors.New("balance overflow")
)
