package mutator_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/mutator"
	"github.com/roach88/plusminus/internal/workspace"
)

func newCore(t *testing.T, opts ...mutator.Option) (*mutator.Core, *workspace.Block) {
	t.Helper()
	block := workspace.NewBlock("b1", "test_block")
	core := mutator.NewCore(block, opts...)
	require.NoError(t, core.Verify())
	return core, block
}

func slotNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("ADD%d", i)
	}
	return names
}

func TestNewCoreStartsEmpty(t *testing.T) {
	core, block := newCore(t, mutator.WithPlaceholder(mutator.LabelPlaceholder{Text: "empty"}))

	assert.Equal(t, 0, core.ItemCount())
	snap := block.Snapshot(core.ItemCount())
	require.Len(t, snap.Inputs, 1)
	assert.Equal(t, "EMPTY", snap.Inputs[0].Name)
	assert.Equal(t, "dummy", snap.Inputs[0].Kind)
	assert.Equal(t, []string{"PLUS", "empty"}, snap.Inputs[0].Fields)
}

func TestNewCoreAdoptsDeclaredPlaceholder(t *testing.T) {
	block := workspace.NewBlock("b1", "lists_create_with")
	block.AppendPlaceholderInput(mutator.Placeholder()).
		AppendField(mutator.Label("create empty list"), mutator.FieldNone)

	core := mutator.NewCore(block)
	require.NoError(t, core.Verify())

	snap := block.Snapshot(core.ItemCount())
	require.Len(t, snap.Inputs, 1)
	assert.Equal(t, []string{"PLUS", "create empty list"}, snap.Inputs[0].Fields)
	assert.Equal(t, mutator.Placeholder(), core.TopInput().Name())
}

func TestSetShapeConvergence(t *testing.T) {
	for a := 0; a <= 5; a++ {
		for b := 0; b <= 5; b++ {
			t.Run(fmt.Sprintf("%d_to_%d", a, b), func(t *testing.T) {
				core, block := newCore(t)
				core.SetShape(a)
				core.SetShape(b)

				assert.Equal(t, b, core.ItemCount())
				require.NoError(t, core.Verify())

				snap := block.Snapshot(core.ItemCount())
				if b == 0 {
					assert.Equal(t, []string{"EMPTY"}, snap.InputNames())
				} else {
					assert.Equal(t, slotNames(b), snap.InputNames())
				}
			})
		}
	}
}

func TestSetShapeSameCountIsNoop(t *testing.T) {
	core, block := newCore(t)
	core.SetShape(2)
	before := block.Snapshot(core.ItemCount())

	core.SetShape(2)

	assert.Equal(t, before, block.Snapshot(core.ItemCount()))
}

func TestSetShapeNegativePanics(t *testing.T) {
	core, _ := newCore(t)
	assert.Panics(t, func() { core.SetShape(-1) })
}

func TestFirstSlotCarriesAffordancesAndLabel(t *testing.T) {
	core, block := newCore(t,
		mutator.WithCheck(ir.ValueCheck{"Number"}),
		mutator.WithItemLabel("create list with"),
	)

	core.Grow()
	core.Grow()

	snap := block.Snapshot(core.ItemCount())
	require.Len(t, snap.Inputs, 2)
	assert.Equal(t, "ADD0", snap.Inputs[0].Name)
	assert.Equal(t, []string{"PLUS", "MINUS", "create list with"}, snap.Inputs[0].Fields)
	assert.Equal(t, ir.ValueCheck{"Number"}, snap.Inputs[0].Check)
	assert.Equal(t, "ADD1", snap.Inputs[1].Name)
	assert.Empty(t, snap.Inputs[1].Fields)
	assert.Equal(t, ir.ValueCheck{"Number"}, snap.Inputs[1].Check)
}

func TestRoundTrip(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("items_%d", n), func(t *testing.T) {
			core, _ := newCore(t)
			core.SetShape(n)

			form := core.Serialize()
			assert.Equal(t, ir.Mutation{Items: n}, form)

			core.Deserialize(form)
			assert.Equal(t, n, core.ItemCount())
			require.NoError(t, core.Verify())
		})
	}
}

func TestDeserializeIdempotent(t *testing.T) {
	core, block := newCore(t)

	core.Deserialize(ir.Mutation{Items: 4})
	first := block.Snapshot(core.ItemCount())
	core.Deserialize(ir.Mutation{Items: 4})

	assert.Equal(t, first, block.Snapshot(core.ItemCount()))
}

func TestDeserializeFreshBlock(t *testing.T) {
	core, block := newCore(t)

	core.Deserialize(ir.Mutation{Items: 5})

	assert.Equal(t, 5, core.ItemCount())
	assert.Equal(t, slotNames(5), block.Snapshot(5).InputNames())
	assert.Equal(t, ir.Mutation{Items: 5}, core.Serialize())
}

func TestShrinkToZeroThenExtraShrinks(t *testing.T) {
	core, block := newCore(t, mutator.WithPlaceholder(mutator.LabelPlaceholder{Text: "empty"}))
	core.SetShape(3)

	for i := 0; i < 3; i++ {
		core.Shrink()
		require.NoError(t, core.Verify())
	}
	assert.Equal(t, 0, core.ItemCount())
	atZero := block.Snapshot(0)
	assert.False(t, atZero.HasField("MINUS"))
	assert.Equal(t, []string{"EMPTY"}, atZero.InputNames())

	core.Shrink()
	core.Shrink()

	assert.Equal(t, 0, core.ItemCount())
	assert.Equal(t, atZero, block.Snapshot(0))
}

func TestAffordanceVisibilityAcrossSequence(t *testing.T) {
	core, block := newCore(t)
	ops := []func(){core.Grow, core.Shrink, core.Shrink, core.Grow, core.Grow, core.Shrink,
		func() { core.SetShape(4) }, func() { core.SetShape(0) }, core.Grow}

	for i, op := range ops {
		op()
		snap := block.Snapshot(core.ItemCount())
		assert.Equal(t, core.ItemCount() > 0, snap.HasField("MINUS"), "step %d", i)
		assert.True(t, snap.HasField("PLUS"), "step %d", i)
		require.NoError(t, core.Verify(), "step %d", i)
	}
}

func TestMinusSitsRightAfterPlus(t *testing.T) {
	core, block := newCore(t, mutator.WithItemLabel("with"))
	core.Grow()

	top := block.Inputs()[0]
	specs := top.FieldSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, mutator.KindPlus, specs[0].Kind)
	assert.Equal(t, mutator.KindMinus, specs[1].Kind)
	assert.Equal(t, mutator.KindLabel, specs[2].Kind)
}

func TestAffordanceFieldsDriveCore(t *testing.T) {
	core, block := newCore(t)

	require.NoError(t, block.Click(mutator.FieldPlus))
	require.NoError(t, block.Click(mutator.FieldPlus))
	assert.Equal(t, 2, core.ItemCount())

	require.NoError(t, block.Click(mutator.FieldMinus))
	assert.Equal(t, 1, core.ItemCount())

	require.NoError(t, block.Click(mutator.FieldMinus))
	assert.Equal(t, 0, core.ItemCount())

	err := block.Click(mutator.FieldMinus)
	require.Error(t, err, "minus is gone at zero")
}

func TestCustomPlaceholderRenderer(t *testing.T) {
	core, block := newCore(t, mutator.WithPlaceholder(rendererFunc(func(row mutator.InputRow) {
		row.AppendField(mutator.Label("a"), mutator.FieldNone).
			AppendField(mutator.Label("b"), mutator.FieldNone)
	})))
	core.SetShape(1)
	core.SetShape(0)

	snap := block.Snapshot(0)
	require.Len(t, snap.Inputs, 1)
	assert.Equal(t, "EMPTY", snap.Inputs[0].Name)
	assert.Equal(t, []string{"PLUS", "a", "b"}, snap.Inputs[0].Fields)
}

func TestVerifyDetectsDrift(t *testing.T) {
	core, block := newCore(t)
	core.SetShape(2)

	block.RemoveInput(mutator.Slot(1))

	err := core.Verify()
	require.Error(t, err)
	var shapeErr *mutator.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "ADD1", shapeErr.Input)
}

type rendererFunc func(row mutator.InputRow)

func (f rendererFunc) RenderPlaceholder(row mutator.InputRow) { f(row) }
