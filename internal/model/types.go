package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the transaction type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDeposit
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeBack
)

// String returns the wire-format name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeBack:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseKind parses a transaction kind as it appears in input records.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeBack, nil
	default:
		return KindUnknown, fmt.Errorf("unknown transaction kind %q", s)
	}
}

// Transaction is a single already-decoded input record.
type Transaction struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32

	// Amount is set for deposits and withdrawals. Dispute, resolve and
	// chargeback reference a prior deposit and carry no amount of their own.
	Amount *decimal.Decimal
}
