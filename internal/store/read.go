package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/plusminus/internal/ir"
)

// SnapshotRecord is a stored snapshot with the seq and hash it was written under.
type SnapshotRecord struct {
	Seq      int64            `json:"seq"`
	Hash     string           `json:"hash"`
	Snapshot ir.BlockSnapshot `json:"snapshot"`
}

// ReadBlock retrieves a single block by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBlock(ctx context.Context, id string) (BlockRecord, error) {
	var rec BlockRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, items, seq
		FROM blocks
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Type, &rec.Items, &rec.Seq)
	if err != nil {
		return BlockRecord{}, err
	}
	return rec, nil
}

// ListBlocks returns all blocks ordered by creation.
// Returns an empty slice (not nil) if the store has no blocks.
func (s *Store) ListBlocks(ctx context.Context) ([]BlockRecord, error) {
	// Creation order is the seq of each block's first event.
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.type, b.items, b.seq
		FROM blocks b
		ORDER BY (SELECT MIN(e.seq) FROM events e WHERE e.block_id = b.id) ASC,
		         b.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []BlockRecord{}
	for rows.Next() {
		var rec BlockRecord
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Items, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	return blocks, nil
}

// ReadEvents returns the whole event log ordered by seq.
// Used for replay.
func (s *Store) ReadEvents(ctx context.Context) ([]ir.Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, flow_token, block_id, block_type, kind, items, items_before, items_after
		FROM events
		ORDER BY seq ASC
	`)
}

// ReadBlockEvents returns the events applied to one block ordered by seq.
func (s *Store) ReadBlockEvents(ctx context.Context, blockID string) ([]ir.Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, flow_token, block_id, block_type, kind, items, items_before, items_after
		FROM events
		WHERE block_id = ?
		ORDER BY seq ASC
	`, blockID)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]ir.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// scanEvent scans a row into an Event struct.
func scanEvent(rows *sql.Rows) (ir.Event, error) {
	var ev ir.Event
	if err := rows.Scan(
		&ev.Seq, &ev.FlowToken, &ev.BlockID, &ev.BlockType, &ev.Kind,
		&ev.Items, &ev.ItemsBefore, &ev.ItemsAfter,
	); err != nil {
		return ir.Event{}, fmt.Errorf("scan event: %w", err)
	}
	return ev, nil
}

// ReadSnapshot returns the most recent snapshot of a block.
// Returns sql.ErrNoRows if the block has no snapshots.
//
// The stored hash is re-verified against the decoded shape.
func (s *Store) ReadSnapshot(ctx context.Context, blockID string) (SnapshotRecord, error) {
	var rec SnapshotRecord
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, hash, data
		FROM snapshots
		WHERE block_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, blockID).Scan(&rec.Seq, &rec.Hash, &data)
	if err != nil {
		return SnapshotRecord{}, err
	}

	rec.Snapshot, err = unmarshalSnapshot(data)
	if err != nil {
		return SnapshotRecord{}, err
	}

	hash, err := ir.SnapshotHash(rec.Snapshot)
	if err != nil {
		return SnapshotRecord{}, err
	}
	if hash != rec.Hash {
		return SnapshotRecord{}, fmt.Errorf("snapshot %s@%d: hash mismatch: stored %s, computed %s",
			blockID, rec.Seq, rec.Hash, hash)
	}

	return rec, nil
}
