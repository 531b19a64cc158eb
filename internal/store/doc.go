// Package store provides SQLite-backed durable storage for plusminus blocks.
//
// The store keeps three tables:
//   - blocks: current type and item count per block ID
//   - events: append-only log of applied events, keyed by seq
//   - snapshots: CBOR-encoded block shapes with their content hash
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock), never timestamps. Queries
// include ORDER BY seq ASC so replays see identical results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshot hashes are computed by ir.SnapshotHash.
package store
