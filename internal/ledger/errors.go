package ledger

import "errors"

// Per-transaction failures. All are non-fatal to the stream: the caller logs
// and moves on.
var (
	// ErrInvalidClient reports a non-deposit addressed to an unknown client.
	ErrInvalidClient = errors.New("invalid client")

	// ErrMissingAmount reports a deposit or withdrawal without an amount.
	ErrMissingAmount = errors.New("missing amount")

	// ErrInvalidAmount reports a non-positive or over-precise amount,
	// insufficient funds, or an operation that would break a balance invariant.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTxID reports an unknown transaction id, or a duplicate
	// deposit/withdrawal id.
	ErrInvalidTxID = errors.New("invalid tx id")

	// ErrLockedAccount reports any transaction against a locked account.
	ErrLockedAccount = errors.New("locked account")

	// ErrInvalidOperation reports a dispute, resolve or chargeback against a
	// deposit in the wrong status.
	ErrInvalidOperation = errors.New("invalid operation")
)
