package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(items int) BlockSnapshot {
	inputs := []InputSnapshot{}
	for i := 0; i < items; i++ {
		inputs = append(inputs, InputSnapshot{Name: "ADD" + string(rune('0'+i)), Kind: "value", Fields: []string{}})
	}
	return BlockSnapshot{ID: "block-1", Type: "lists_create_with", Items: items, Inputs: inputs}
}

func TestSnapshotHashDeterminism(t *testing.T) {
	h1, err := SnapshotHash(testSnapshot(3))
	require.NoError(t, err)
	h2, err := SnapshotHash(testSnapshot(3))
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "SnapshotHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestSnapshotHashChangesWithShape(t *testing.T) {
	h3, err := SnapshotHash(testSnapshot(3))
	require.NoError(t, err)
	h2, err := SnapshotHash(testSnapshot(2))
	require.NoError(t, err)

	assert.NotEqual(t, h3, h2)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"items":1}`)
	assert.NotEqual(t,
		hashWithDomain(DomainSnapshot, data),
		hashWithDomain(DomainDefinition, data),
		"different domains must produce different hashes")
}

func TestDefinitionHash(t *testing.T) {
	def := BlockDef{Type: "text_join", Mutator: MutatorDef{DefaultItems: 2, Placeholder: PlaceholderQuotes}}
	h1, err := DefinitionHash(def)
	require.NoError(t, err)

	def.Mutator.DefaultItems = 3
	h2, err := DefinitionHash(def)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
