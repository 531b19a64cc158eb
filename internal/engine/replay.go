package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/plusminus/internal/blocks"
	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/store"
)

// ReplayResult summarizes a successful replay.
type ReplayResult struct {
	Events int               `json:"events"`
	Blocks int               `json:"blocks"`
	Hashes map[string]string `json:"hashes"` // block ID -> final snapshot hash
}

// Replay rebuilds every block from the stored event log in a fresh
// in-memory engine and checks that it reaches the same state.
//
// Each event must reproduce its recorded seq and item counts, and each
// block's final shape must hash to its latest stored snapshot. The first
// divergence is returned as an ErrCodeReplayMismatch RuntimeError.
func Replay(ctx context.Context, s *store.Store, catalog *blocks.Catalog, opts ...Option) (ReplayResult, error) {
	events, err := s.ReadEvents(ctx)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	e := New(catalog, opts...)
	for _, ev := range events {
		if err := e.replayEvent(ctx, ev); err != nil {
			return ReplayResult{}, err
		}
	}

	result := ReplayResult{
		Events: len(events),
		Blocks: len(e.BlockIDs()),
		Hashes: make(map[string]string, len(e.BlockIDs())),
	}

	for _, id := range e.BlockIDs() {
		snap, err := e.Snapshot(id)
		if err != nil {
			return ReplayResult{}, err
		}
		hash, err := ir.SnapshotHash(snap)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay: %w", err)
		}

		stored, err := s.ReadSnapshot(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ReplayResult{}, newReplayMismatch(id, 0, "no stored snapshot")
		}
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay: %w", err)
		}
		if stored.Hash != hash {
			return ReplayResult{}, newReplayMismatch(id, stored.Seq,
				"snapshot hash %s, replayed %s", stored.Hash, hash)
		}
		result.Hashes[id] = hash
	}

	e.logger.Info("replay complete", "events", result.Events, "blocks", result.Blocks)
	return result, nil
}

// replayEvent re-applies one logged event and compares the outcome.
func (e *Engine) replayEvent(ctx context.Context, ev ir.Event) error {
	cmd := Command{Kind: ev.Kind, BlockID: ev.BlockID, BlockType: ev.BlockType}
	if ev.Kind == ir.EventLoad {
		payload, err := ir.Mutation{Items: ev.ItemsAfter}.MarshalJSON()
		if err != nil {
			return fmt.Errorf("replay seq %d: %w", ev.Seq, err)
		}
		cmd.Payload = payload
	}

	e.flow = ev.FlowToken
	res, err := e.Apply(ctx, cmd)
	if err != nil {
		return newReplayMismatch(ev.BlockID, ev.Seq, "event failed on replay: %v", err)
	}

	got := res.Event
	switch {
	case got.Seq != ev.Seq:
		return newReplayMismatch(ev.BlockID, ev.Seq, "replayed as seq %d", got.Seq)
	case got.ItemsBefore != ev.ItemsBefore:
		return newReplayMismatch(ev.BlockID, ev.Seq,
			"items before %s: logged %d, replayed %d", ev.Kind, ev.ItemsBefore, got.ItemsBefore)
	case got.ItemsAfter != ev.ItemsAfter:
		return newReplayMismatch(ev.BlockID, ev.Seq,
			"items after %s: logged %d, replayed %d", ev.Kind, ev.ItemsAfter, got.ItemsAfter)
	}
	return nil
}
