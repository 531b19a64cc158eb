package store

import (
	"context"
	"fmt"

	"github.com/roach88/plusminus/internal/ir"
)

// BlockRecord is the persisted state of one block.
type BlockRecord struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Items int    `json:"items"`
	Seq   int64  `json:"seq"` // seq of the last event applied
}

// WriteEvent atomically records an applied event together with the block's
// resulting state and shape.
//
// The block row is upserted to ev.ItemsAfter, the event is appended, and the
// snapshot is stored with its content hash. Rewriting an event with a seq
// that already exists is a no-op (idempotent).
func (s *Store) WriteEvent(ctx context.Context, ev ir.Event, snap ir.BlockSnapshot) error {
	if !ir.ValidEventKinds[ev.Kind] {
		return fmt.Errorf("write event: invalid kind %q", ev.Kind)
	}
	if snap.ID != ev.BlockID {
		return fmt.Errorf("write event: snapshot for block %q does not match event block %q", snap.ID, ev.BlockID)
	}

	hash, err := ir.SnapshotHash(snap)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	data, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blocks (id, type, items, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET items = excluded.items, seq = excluded.seq
		WHERE excluded.seq > blocks.seq
	`, ev.BlockID, ev.BlockType, ev.ItemsAfter, ev.Seq)
	if err != nil {
		return fmt.Errorf("write event: upsert block: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events
		(seq, flow_token, block_id, block_type, kind, items, items_before, items_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		ev.Seq,
		ev.FlowToken,
		ev.BlockID,
		ev.BlockType,
		ev.Kind,
		ev.Items,
		ev.ItemsBefore,
		ev.ItemsAfter,
	)
	if err != nil {
		return fmt.Errorf("write event: insert event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (block_id, seq, hash, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(block_id, seq) DO NOTHING
	`, snap.ID, ev.Seq, hash, data)
	if err != nil {
		return fmt.Errorf("write event: insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write event: commit: %w", err)
	}

	return nil
}
