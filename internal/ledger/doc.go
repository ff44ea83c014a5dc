// Package ledger implements the per-account transaction state machine.
//
// An Account owns one client's balances and dispute history and applies a
// single transaction to itself under strict invariants:
//   - total == available + held after every successful operation
//   - available, held and total never go negative
//   - a deposit id is never accepted twice on the same account
//   - a chargeback locks the account permanently
//
// Deposit records move forward only: Normal → Disputed → Resolved or
// ChargedBack. A settled record can never be disputed again.
//
// Every failure is one of the sentinel errors in errors.go and leaves the
// account exactly as it was.
package ledger
