// Package stream drains a transaction source into the router.
//
// The default mode is strictly sequential: transactions are applied in
// arrival order, because operations on the same account do not commute (a
// dispute must follow its deposit). The sharded mode parallelizes across
// clients only: transactions are assigned to a shard by client id, each
// shard has one worker and its own queue, so per-client arrival order is
// still preserved.
//
// Per-transaction failures are logged with the offending transaction and
// processing continues; only a source read failure aborts the run.
package stream
