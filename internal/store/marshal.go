package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/plusminus/internal/ir"
)

// Snapshots are stored as canonical CBOR so identical shapes produce
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// marshalSnapshot serializes a BlockSnapshot to CBOR bytes.
func marshalSnapshot(snap ir.BlockSnapshot) ([]byte, error) {
	data, err := cborEncMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// unmarshalSnapshot deserializes a BlockSnapshot from CBOR bytes.
func unmarshalSnapshot(data []byte) (ir.BlockSnapshot, error) {
	var snap ir.BlockSnapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return ir.BlockSnapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
