package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paylens/bookkeeper/internal/ledger"
	"github.com/paylens/bookkeeper/internal/model"
	"github.com/paylens/bookkeeper/internal/router"
)

// Source yields already-decoded transactions in arrival order. Next returns
// io.EOF at end of stream. An error implementing BadRecord invalidates one
// record only; any other error is fatal to the run.
type Source interface {
	Next() (model.Transaction, error)
}

// BadRecord is implemented by source errors that invalidate a single record
// rather than the whole stream. Such records are logged and skipped; they
// never reach the core.
type BadRecord interface {
	error
	BadRecord()
}

// Config holds pipeline settings.
type Config struct {
	// Shards is the number of independent workers. Transactions are assigned
	// by client id, so per-client order holds at any shard count. 1 means
	// fully sequential processing.
	Shards int

	// BufferSize is the initial per-shard queue capacity.
	BufferSize int

	// Router is the account routing policy applied by every shard.
	Router router.Config
}

// DefaultConfig returns default pipeline settings.
func DefaultConfig() Config {
	return Config{
		Shards:     1,
		BufferSize: 1024,
	}
}

// Stats contains pipeline counters for a run.
type Stats struct {
	// Received counts well-formed transactions handed to the core.
	Received int64
	// Skipped counts malformed records dropped at the boundary.
	Skipped int64
	// Routing aggregates the per-shard routing counters.
	Routing router.Stats
}

// Processor drains a Source to completion and owns the resulting accounts.
type Processor struct {
	cfg    Config
	logger *slog.Logger
	runID  uuid.UUID
	shards []*router.Router

	received int64
	skipped  int64
}

// NewProcessor creates a processor with one router per shard.
func NewProcessor(cfg Config, logger *slog.Logger) *Processor {
	def := DefaultConfig()
	if cfg.Shards < 1 {
		cfg.Shards = def.Shards
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = def.BufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New()
	logger = logger.With("run_id", runID)

	shards := make([]*router.Router, cfg.Shards)
	for i := range shards {
		shards[i] = router.New(cfg.Router, logger)
	}

	return &Processor{
		cfg:    cfg,
		logger: logger,
		runID:  runID,
		shards: shards,
	}
}

// RunID identifies this processing run in logs.
func (p *Processor) RunID() uuid.UUID { return p.runID }

// Run drains the source to completion. It returns only when the source is
// exhausted, the context is canceled, or the source fails fatally.
func (p *Processor) Run(ctx context.Context, src Source) error {
	p.logger.Info("processing started", "shards", p.cfg.Shards)

	var err error
	if p.cfg.Shards == 1 {
		err = p.runSequential(ctx, src)
	} else {
		err = p.runSharded(ctx, src)
	}
	if err != nil {
		return err
	}

	p.logger.Info("processing finished",
		"received", p.received,
		"skipped", p.skipped,
	)
	return nil
}

func (p *Processor) runSequential(ctx context.Context, src Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx, err := p.next(src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		p.apply(p.shards[0], &tx)
	}
}

func (p *Processor) runSharded(ctx context.Context, src Source) error {
	queues := make([]*txQueue, len(p.shards))
	for i := range queues {
		queues[i] = newTxQueue(p.cfg.BufferSize)
	}

	g, ctx := errgroup.WithContext(ctx)

	for i := range p.shards {
		shard := p.shards[i]
		q := queues[i]
		g.Go(func() error {
			for {
				tx, ok := q.Receive()
				if !ok {
					return nil
				}
				p.apply(shard, &tx)
			}
		})
	}

	g.Go(func() error {
		// Closing the queues releases the workers once they drain.
		defer func() {
			for _, q := range queues {
				q.Close()
			}
		}()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			tx, err := p.next(src)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			queues[int(tx.ClientID)%len(queues)].Send(tx)
		}
	})

	return g.Wait()
}

// next reads one well-formed transaction, skipping malformed records.
// Only the feed goroutine calls it, so the counters need no locking.
func (p *Processor) next(src Source) (model.Transaction, error) {
	for {
		tx, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return model.Transaction{}, io.EOF
			}
			var bad BadRecord
			if errors.As(err, &bad) {
				p.skipped++
				p.logger.Warn("skipping malformed record", "error", err)
				continue
			}
			return model.Transaction{}, fmt.Errorf("read source: %w", err)
		}
		p.received++
		return tx, nil
	}
}

// apply routes one transaction. A rejection is logged and absorbed: one bad
// transaction never aborts the run.
func (p *Processor) apply(shard *router.Router, tx *model.Transaction) {
	if err := shard.Route(tx); err != nil {
		p.logger.Warn("transaction rejected",
			"kind", tx.Kind,
			"client", tx.ClientID,
			"tx", tx.TxID,
			"error", err,
		)
	}
}

// Snapshots merges account snapshots across shards, in no particular order.
func (p *Processor) Snapshots() []ledger.Snapshot {
	var snaps []ledger.Snapshot
	for _, shard := range p.shards {
		snaps = append(snaps, shard.Snapshots()...)
	}
	return snaps
}

// Stats merges pipeline and routing counters across shards.
func (p *Processor) Stats() Stats {
	stats := Stats{
		Received: p.received,
		Skipped:  p.skipped,
	}
	for _, shard := range p.shards {
		s := shard.Stats()
		stats.Routing.Processed += s.Processed
		stats.Routing.Failed += s.Failed
		stats.Routing.AccountsCreated += s.AccountsCreated
	}
	return stats
}
