package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/plusminus/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates an event with minimal required fields.
func createTestEvent(seq int64, blockID, kind string, before, after int) ir.Event {
	return ir.Event{
		Seq:         seq,
		FlowToken:   "flow-1",
		BlockID:     blockID,
		BlockType:   "lists_create_with",
		Kind:        kind,
		ItemsBefore: before,
		ItemsAfter:  after,
	}
}

// createTestSnapshot creates a snapshot with n slot rows.
func createTestSnapshot(blockID string, n int) ir.BlockSnapshot {
	snap := ir.BlockSnapshot{ID: blockID, Type: "lists_create_with", Items: n}
	if n == 0 {
		snap.Inputs = []ir.InputSnapshot{{Name: "EMPTY", Kind: "dummy", Fields: []string{"PLUS", "create empty list"}}}
		return snap
	}
	for i := 0; i < n; i++ {
		in := ir.InputSnapshot{Name: "ADD" + string(rune('0'+i)), Kind: "value", Fields: []string{}}
		if i == 0 {
			in.Fields = []string{"PLUS", "MINUS", "create list with"}
		}
		snap.Inputs = append(snap.Inputs, in)
	}
	return snap
}
