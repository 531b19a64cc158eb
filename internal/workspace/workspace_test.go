package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceNewBlock(t *testing.T) {
	ws := New()

	b2, err := ws.NewBlock("b2", "text_join")
	require.NoError(t, err)
	_, err = ws.NewBlock("b1", "lists_create_with")
	require.NoError(t, err)

	got, ok := ws.Block("b2")
	require.True(t, ok)
	assert.Same(t, b2, got)
	assert.Equal(t, "text_join", got.Type())

	assert.Equal(t, []string{"b2", "b1"}, ws.IDs(), "creation order, not sorted")
	assert.Equal(t, 2, ws.Len())

	_, ok = ws.Block("missing")
	assert.False(t, ok)
}

func TestWorkspaceDuplicateID(t *testing.T) {
	ws := New()
	_, err := ws.NewBlock("b1", "t")
	require.NoError(t, err)

	_, err = ws.NewBlock("b1", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWorkspaceIDsIsCopy(t *testing.T) {
	ws := New()
	_, _ = ws.NewBlock("b1", "t")

	ids := ws.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"b1"}, ws.IDs())
}
