// Package router maps client ids to accounts and forwards each transaction
// to the account it addresses.
package router

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/paylens/bookkeeper/internal/ledger"
	"github.com/paylens/bookkeeper/internal/model"
)

// Config holds account routing policy.
type Config struct {
	// CreateOnAnyKind creates a zero-balance account whenever any transaction
	// kind addresses an unknown client. The default is stricter: only a
	// deposit creates an account, everything else fails ErrInvalidClient.
	CreateOnAnyKind bool

	// AllowWithdrawalReplay disables withdrawal tx id deduplication on the
	// accounts this router creates.
	AllowWithdrawalReplay bool
}

// Stats contains routing counters for a run.
type Stats struct {
	Processed       int64
	Failed          int64
	AccountsCreated int64
}

// Router owns the client→account mapping. Mutation outside account creation
// is confined to the addressed account.
type Router struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	accounts map[uint16]*ledger.Account
	stats    Stats
}

// New creates an empty router.
func New(cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		logger:   logger,
		accounts: make(map[uint16]*ledger.Account),
	}
}

// Route applies one transaction to the account it addresses, creating the
// account first when policy allows. A failure leaves every account exactly
// as it was and never aborts the stream.
func (r *Router) Route(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Processed++

	acct, ok := r.accounts[tx.ClientID]
	if !ok {
		if tx.Kind != model.KindDeposit && !r.cfg.CreateOnAnyKind {
			r.stats.Failed++
			return fmt.Errorf("client %d: %w", tx.ClientID, ledger.ErrInvalidClient)
		}
		return r.createAndApply(tx)
	}

	if err := acct.Apply(tx); err != nil {
		r.stats.Failed++
		return err
	}
	return nil
}

// createAndApply handles the first transaction seen for a client. Under the
// strict policy the account is kept only when the deposit succeeds; the
// lenient policy keeps the zero-balance account either way.
func (r *Router) createAndApply(tx *model.Transaction) error {
	acct := ledger.NewAccount(tx.ClientID, ledger.Options{
		AllowWithdrawalReplay: r.cfg.AllowWithdrawalReplay,
	})

	if r.cfg.CreateOnAnyKind {
		r.accounts[tx.ClientID] = acct
		r.stats.AccountsCreated++
		r.logger.Info("account created", "client", tx.ClientID, "kind", tx.Kind)
		if err := acct.Apply(tx); err != nil {
			r.stats.Failed++
			return err
		}
		return nil
	}

	if err := acct.Apply(tx); err != nil {
		r.stats.Failed++
		return err
	}
	r.accounts[tx.ClientID] = acct
	r.stats.AccountsCreated++
	r.logger.Info("account created", "client", tx.ClientID)
	return nil
}

// Snapshots returns one snapshot per known account, in no particular order.
func (r *Router) Snapshots() []ledger.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snaps := make([]ledger.Snapshot, 0, len(r.accounts))
	for _, acct := range r.accounts {
		snaps = append(snaps, acct.Snapshot())
	}
	return snaps
}

// Account returns the snapshot for one client.
func (r *Router) Account(clientID uint16) (ledger.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[clientID]
	if !ok {
		return ledger.Snapshot{}, false
	}
	return acct.Snapshot(), true
}

// Stats returns current routing counters.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}
