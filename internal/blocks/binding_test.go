package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/msg"
	"github.com/roach88/plusminus/internal/testutil"
	"github.com/roach88/plusminus/internal/workspace"
)

func attach(t *testing.T, b Binding) (*Instance, *workspace.Block) {
	t.Helper()
	block := workspace.NewBlock("block-1", b.Type)
	inst := b.Attach(block, testutil.Logger(t))
	require.NoError(t, inst.Mutator().Verify())
	return inst, block
}

func TestListCreateInitialShape(t *testing.T) {
	inst, block := attach(t, ListCreate(msg.NewLocalizer("en")))

	assert.Equal(t, 3, inst.ItemCount())
	snap := block.Snapshot(inst.ItemCount())
	assert.Equal(t, []string{"ADD0", "ADD1", "ADD2"}, snap.InputNames())
	assert.Equal(t, []string{"PLUS", "MINUS", "create list with"}, snap.Inputs[0].Fields)
	assert.True(t, snap.HasField("MINUS"))
}

func TestTextJoinInitialShape(t *testing.T) {
	inst, block := attach(t, TextJoin(msg.NewLocalizer("en")))

	assert.Equal(t, 2, inst.ItemCount())
	snap := block.Snapshot(inst.ItemCount())
	assert.Equal(t, []string{"ADD0", "ADD1"}, snap.InputNames())
	assert.Equal(t, []string{"PLUS", "MINUS", "create text with"}, snap.Inputs[0].Fields)
}

func TestListCreateMinusThreeTimes(t *testing.T) {
	inst, block := attach(t, ListCreate(msg.NewLocalizer("en")))

	inst.Minus()
	inst.Minus()
	inst.Minus()

	assert.Equal(t, 0, inst.ItemCount())
	snap := block.Snapshot(0)
	require.Len(t, snap.Inputs, 1)
	assert.Equal(t, "EMPTY", snap.Inputs[0].Name)
	assert.Equal(t, []string{"PLUS", "create empty list"}, snap.Inputs[0].Fields)
	assert.False(t, snap.HasField("MINUS"))

	inst.Minus()
	inst.Minus()
	assert.Equal(t, 0, inst.ItemCount())
	assert.Equal(t, snap, block.Snapshot(0))
}

func TestTextJoinEmptyShowsQuotes(t *testing.T) {
	inst, block := attach(t, TextJoin(msg.NewLocalizer("en")))

	inst.Mutator().SetShape(0)

	snap := block.Snapshot(0)
	require.Len(t, snap.Inputs, 1)
	assert.Equal(t, "EMPTY", snap.Inputs[0].Name)
	assert.Equal(t, []string{"PLUS", QuoteOpen, QuoteClose}, snap.Inputs[0].Fields)
	require.NoError(t, inst.Mutator().Verify())

	inst.Plus()
	snap = block.Snapshot(inst.ItemCount())
	assert.Equal(t, []string{"ADD0"}, snap.InputNames())
	assert.Equal(t, []string{"PLUS", "MINUS", "create text with"}, snap.Inputs[0].Fields)
}

func TestLocalizedLabels(t *testing.T) {
	inst, block := attach(t, ListCreate(msg.NewLocalizer("fr")))
	inst.Mutator().SetShape(0)

	snap := block.Snapshot(0)
	assert.Equal(t, []string{"PLUS", "créer une liste vide"}, snap.Inputs[0].Fields)
}

func TestExtraStateRoundTrip(t *testing.T) {
	inst, _ := attach(t, ListCreate(msg.NewLocalizer("en")))
	inst.Plus()
	inst.Plus()

	data, err := inst.SaveExtraState()
	require.NoError(t, err)
	assert.Equal(t, `{"items":5}`, string(data))

	restored, block := attach(t, ListCreate(msg.NewLocalizer("en")))
	require.NoError(t, restored.LoadExtraState(data))
	assert.Equal(t, 5, restored.ItemCount())
	assert.Len(t, block.Snapshot(5).Inputs, 5)
}

func TestMutationXMLRoundTrip(t *testing.T) {
	inst, _ := attach(t, TextJoin(msg.NewLocalizer("en")))
	inst.Minus()
	inst.Minus()

	data, err := inst.MutationToXML()
	require.NoError(t, err)
	assert.Equal(t, `<mutation items="0"></mutation>`, string(data))

	restored, _ := attach(t, TextJoin(msg.NewLocalizer("en")))
	require.NoError(t, restored.LoadMutationXML(data))
	assert.Equal(t, 0, restored.ItemCount())
	require.NoError(t, restored.Mutator().Verify())
}

func TestLoadRejectsMalformedCount(t *testing.T) {
	inst, block := attach(t, ListCreate(msg.NewLocalizer("en")))
	before := block.Snapshot(inst.ItemCount())

	err := inst.LoadMutationXML([]byte(`<mutation items="-2"></mutation>`))
	require.Error(t, err)
	var mutErr *MutationError
	require.ErrorAs(t, err, &mutErr)
	assert.Equal(t, TypeListCreate, mutErr.BlockType)

	err = inst.LoadExtraState([]byte(`{"items":"lots"}`))
	require.Error(t, err)

	assert.Equal(t, before, block.Snapshot(inst.ItemCount()), "rejected loads leave the block untouched")
}

func TestFromDef(t *testing.T) {
	def := ir.BlockDef{
		Type: "math_sum",
		Mutator: ir.MutatorDef{
			DefaultItems: 1,
			Check:        ir.ValueCheck{"Number"},
			EmptyLabel:   "sum of nothing",
			ItemLabel:    "sum of",
			Placeholder:  ir.PlaceholderLabel,
		},
	}

	inst, block := attach(t, FromDef(def))
	snap := block.Snapshot(inst.ItemCount())
	assert.Equal(t, []string{"ADD0"}, snap.InputNames())
	assert.Equal(t, ir.ValueCheck{"Number"}, snap.Inputs[0].Check)

	inst.Minus()
	assert.Equal(t, []string{"PLUS", "sum of nothing"}, block.Snapshot(0).Inputs[0].Fields)

	quotes := FromDef(ir.BlockDef{Type: "q", Mutator: ir.MutatorDef{Placeholder: ir.PlaceholderQuotes}})
	assert.Equal(t, QuotesPlaceholder{}, quotes.Placeholder)
}

func TestCatalog(t *testing.T) {
	cat := Builtin(msg.NewLocalizer("en"))
	assert.Equal(t, []string{TypeListCreate, TypeTextJoin}, cat.Types())

	b, ok := cat.Lookup(TypeTextJoin)
	require.True(t, ok)
	assert.Equal(t, 2, b.DefaultCount)

	_, ok = cat.Lookup("nope")
	assert.False(t, ok)

	cat.Add(Binding{Type: TypeTextJoin, DefaultCount: 4})
	b, _ = cat.Lookup(TypeTextJoin)
	assert.Equal(t, 4, b.DefaultCount)
	assert.Len(t, cat.Types(), 2)
}
