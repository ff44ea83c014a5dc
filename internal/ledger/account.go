package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/paylens/bookkeeper/internal/model"
)

// MaxScale is the number of fractional digits carried by every monetary value.
const MaxScale = 4

// maxBalance caps any single balance. The decimal type is arbitrary
// precision, so without a ceiling a runaway stream could grow balances
// without bound; crossing it is reported as ErrInvalidAmount.
var maxBalance = decimal.New(1, 16)

// DepositStatus tracks the dispute lifecycle of a deposit record.
type DepositStatus uint8

const (
	StatusNormal DepositStatus = iota
	StatusDisputed
	StatusResolved
	StatusChargedBack
)

// String returns a lowercase name for logging.
func (s DepositStatus) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusDisputed:
		return "disputed"
	case StatusResolved:
		return "resolved"
	case StatusChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// depositRecord lives for the lifetime of the account: dispute lookups and
// duplicate-id checks both need it after settlement.
type depositRecord struct {
	amount decimal.Decimal
	status DepositStatus
}

// Options holds per-account policy knobs.
type Options struct {
	// AllowWithdrawalReplay disables withdrawal tx id deduplication.
	AllowWithdrawalReplay bool
}

// Account owns one client's balances and dispute history.
type Account struct {
	clientID  uint16
	available decimal.Decimal
	held      decimal.Decimal
	total     decimal.Decimal
	locked    bool

	deposits    map[uint32]*depositRecord
	withdrawals map[uint32]struct{}

	opts Options
}

// NewAccount creates a zero-balance, unlocked account.
func NewAccount(clientID uint16, opts Options) *Account {
	return &Account{
		clientID:    clientID,
		deposits:    make(map[uint32]*depositRecord),
		withdrawals: make(map[uint32]struct{}),
		opts:        opts,
	}
}

// Apply validates and applies a single transaction. Each branch either
// performs every mutation it needs or none: a failed transaction leaves the
// account exactly as it was.
func (a *Account) Apply(tx *model.Transaction) error {
	if a.locked {
		return fmt.Errorf("client %d tx %d: %w", a.clientID, tx.TxID, ErrLockedAccount)
	}

	switch tx.Kind {
	case model.KindDeposit:
		return a.deposit(tx)
	case model.KindWithdrawal:
		return a.withdraw(tx)
	case model.KindDispute:
		return a.dispute(tx)
	case model.KindResolve:
		return a.resolve(tx)
	case model.KindChargeBack:
		return a.chargeback(tx)
	default:
		return fmt.Errorf("client %d tx %d: kind %v: %w", a.clientID, tx.TxID, tx.Kind, ErrInvalidOperation)
	}
}

func (a *Account) deposit(tx *model.Transaction) error {
	amount, err := validAmount(tx)
	if err != nil {
		return err
	}
	if _, ok := a.deposits[tx.TxID]; ok {
		return fmt.Errorf("duplicate deposit %d: %w", tx.TxID, ErrInvalidTxID)
	}

	newAvailable := a.available.Add(amount)
	newTotal := a.total.Add(amount)
	if newTotal.GreaterThan(maxBalance) {
		return fmt.Errorf("deposit %d exceeds balance ceiling: %w", tx.TxID, ErrInvalidAmount)
	}

	a.available = newAvailable
	a.total = newTotal
	a.deposits[tx.TxID] = &depositRecord{amount: amount, status: StatusNormal}
	return nil
}

func (a *Account) withdraw(tx *model.Transaction) error {
	amount, err := validAmount(tx)
	if err != nil {
		return err
	}
	if !a.opts.AllowWithdrawalReplay {
		if _, ok := a.withdrawals[tx.TxID]; ok {
			return fmt.Errorf("duplicate withdrawal %d: %w", tx.TxID, ErrInvalidTxID)
		}
	}
	if amount.GreaterThan(a.available) {
		return fmt.Errorf("withdrawal %d: insufficient funds: %w", tx.TxID, ErrInvalidAmount)
	}

	// available <= total always, so total stays non-negative too.
	a.available = a.available.Sub(amount)
	a.total = a.total.Sub(amount)
	if !a.opts.AllowWithdrawalReplay {
		a.withdrawals[tx.TxID] = struct{}{}
	}
	return nil
}

func (a *Account) dispute(tx *model.Transaction) error {
	rec, err := a.record(tx.TxID, StatusNormal)
	if err != nil {
		return err
	}
	// The deposited funds may have been withdrawn since; holding more than
	// is available would drive available negative.
	if rec.amount.GreaterThan(a.available) {
		return fmt.Errorf("dispute %d: amount exceeds available funds: %w", tx.TxID, ErrInvalidAmount)
	}

	a.available = a.available.Sub(rec.amount)
	a.held = a.held.Add(rec.amount)
	rec.status = StatusDisputed
	return nil
}

func (a *Account) resolve(tx *model.Transaction) error {
	rec, err := a.record(tx.TxID, StatusDisputed)
	if err != nil {
		return err
	}
	if rec.amount.GreaterThan(a.held) {
		return fmt.Errorf("resolve %d: amount exceeds held funds: %w", tx.TxID, ErrInvalidAmount)
	}

	a.held = a.held.Sub(rec.amount)
	a.available = a.available.Add(rec.amount)
	rec.status = StatusResolved
	return nil
}

func (a *Account) chargeback(tx *model.Transaction) error {
	rec, err := a.record(tx.TxID, StatusDisputed)
	if err != nil {
		return err
	}
	if rec.amount.GreaterThan(a.held) || rec.amount.GreaterThan(a.total) {
		return fmt.Errorf("chargeback %d: amount exceeds held funds: %w", tx.TxID, ErrInvalidAmount)
	}

	a.held = a.held.Sub(rec.amount)
	a.total = a.total.Sub(rec.amount)
	rec.status = StatusChargedBack
	a.locked = true // terminal: nothing unlocks an account
	return nil
}

// record looks up a deposit and checks it is in the status the operation
// requires.
func (a *Account) record(txID uint32, want DepositStatus) (*depositRecord, error) {
	rec, ok := a.deposits[txID]
	if !ok {
		return nil, fmt.Errorf("unknown deposit %d: %w", txID, ErrInvalidTxID)
	}
	if rec.status != want {
		return nil, fmt.Errorf("deposit %d is %v: %w", txID, rec.status, ErrInvalidOperation)
	}
	return rec, nil
}

// validAmount checks the amount rules shared by deposits and withdrawals:
// present, strictly positive, and no more than MaxScale fractional digits.
// Over-precise amounts are rejected rather than truncated, so no value is
// ever silently lost.
func validAmount(tx *model.Transaction) (decimal.Decimal, error) {
	if tx.Amount == nil {
		return decimal.Decimal{}, fmt.Errorf("tx %d: %w", tx.TxID, ErrMissingAmount)
	}
	amount := *tx.Amount
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("tx %d: non-positive amount %s: %w", tx.TxID, amount, ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MaxScale)) {
		return decimal.Decimal{}, fmt.Errorf("tx %d: amount %s has more than %d fractional digits: %w",
			tx.TxID, amount, MaxScale, ErrInvalidAmount)
	}
	return amount, nil
}

// ClientID returns the owning client id.
func (a *Account) ClientID() uint16 { return a.clientID }

// Available returns the funds the client can withdraw or dispute right now.
func (a *Account) Available() decimal.Decimal { return a.available }

// Held returns the funds frozen by open disputes.
func (a *Account) Held() decimal.Decimal { return a.held }

// Total returns available + held.
func (a *Account) Total() decimal.Decimal { return a.total }

// Locked reports whether a chargeback has frozen the account.
func (a *Account) Locked() bool { return a.locked }

// DepositStatus returns the dispute state of a deposit, if known.
func (a *Account) DepositStatus(txID uint32) (DepositStatus, bool) {
	rec, ok := a.deposits[txID]
	if !ok {
		return StatusNormal, false
	}
	return rec.status, true
}

// Snapshot is a read-only view of an account's balances.
type Snapshot struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshot returns the current balances.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		ClientID:  a.clientID,
		Available: a.available,
		Held:      a.held,
		Total:     a.total,
		Locked:    a.locked,
	}
}
