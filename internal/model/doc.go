// Package model defines the shared transaction types consumed by the
// ledger core.
//
// Conventions:
//   - Money: shopspring decimal, at most 4 fractional digits at the boundary
//   - IDs: uint16 for clients, uint32 for transactions (wire-format ranges)
//   - Amount: pointer, nil when the record carried no amount
package model
