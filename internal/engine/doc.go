// Package engine applies plus/minus commands to blocks and records them.
//
// The engine owns a workspace of blocks, each wired to its mutator through
// a blocks.Binding from an injected Catalog. Commands (create, plus, minus,
// load, save) run to completion one at a time, either directly through
// Apply or queued with Enqueue and drained by Run.
//
// Every applied command becomes an ir.Event stamped by a logical clock and,
// when a store is configured, is written together with the block's new
// shape. Replay rebuilds all blocks from that log and reports the first
// divergence.
package engine
