package mutator

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/plusminus/internal/ir"
)

// VariadicMutator is the per-block state machine behind the plus/minus
// affordances.
type VariadicMutator interface {
	ItemCount() int
	Serialize() ir.Mutation
	Deserialize(m ir.Mutation)
	SetShape(target int)
	Grow()
	Shrink()
}

// PlaceholderRenderer fills the placeholder row after the plus field has been
// placed on it. Block types override this to show something other than a
// plain label; the row itself is always the single EMPTY row.
type PlaceholderRenderer interface {
	RenderPlaceholder(row InputRow)
}

// LabelPlaceholder renders the empty-state text as a single label.
type LabelPlaceholder struct {
	Text string
}

// RenderPlaceholder appends the label.
func (p LabelPlaceholder) RenderPlaceholder(row InputRow) {
	row.AppendField(Label(p.Text), FieldNone)
}

// Option configures a Core.
type Option func(*Core)

// WithCheck sets the type constraint applied to every slot row.
func WithCheck(check ir.ValueCheck) Option {
	return func(c *Core) {
		c.check = check
	}
}

// WithItemLabel sets the label shown on the first slot row.
func WithItemLabel(text string) Option {
	return func(c *Core) {
		c.itemLabel = text
	}
}

// WithPlaceholder overrides how the empty row is rendered.
func WithPlaceholder(r PlaceholderRenderer) Option {
	return func(c *Core) {
		if r != nil {
			c.placeholder = r
		}
	}
}

// WithLogger sets the logger used for shape changes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Core is the default VariadicMutator.
//
// Invariants after every exported call:
//   - itemCount equals the number of slot rows, named ADD0..ADD(itemCount-1)
//   - the EMPTY row exists iff itemCount == 0
//   - top carries PLUS, and carries MINUS at position 1 iff itemCount > 0
//
// Core is not safe for concurrent use; the host drives it from one event loop.
type Core struct {
	block       Block
	check       ir.ValueCheck
	itemLabel   string
	placeholder PlaceholderRenderer
	logger      *slog.Logger

	itemCount int
	top       InputRow
}

var _ VariadicMutator = (*Core)(nil)

// NewCore attaches a mutator to block, which must not yet carry any slot rows.
//
// If the block already has an EMPTY row (declared by its definition) the plus
// field is inserted at its front; otherwise an EMPTY row is created through the
// placeholder renderer. The result has zero slots; call SetShape to apply a
// default count.
func NewCore(block Block, opts ...Option) *Core {
	c := &Core{
		block:       block,
		placeholder: LabelPlaceholder{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if row, ok := block.Input(Placeholder()); ok {
		if _, hasPlus := row.Field(FieldPlus); !hasPlus {
			row.InsertFieldAt(0, PlusField(c), FieldPlus)
		}
		c.top = row
	} else {
		c.top = c.appendPlaceholder()
	}
	c.refreshRemoveAffordance()
	return c
}

// ItemCount returns the number of slot rows.
func (c *Core) ItemCount() int {
	return c.itemCount
}

// TopInput returns the row that currently carries the affordances.
func (c *Core) TopInput() InputRow {
	return c.top
}

// Serialize returns the persisted form. It has no side effects.
func (c *Core) Serialize() ir.Mutation {
	return ir.Mutation{Items: c.itemCount}
}

// Deserialize reshapes the block to m.Items slots.
// m must already be validated; see ir.ParseMutationXML.
func (c *Core) Deserialize(m ir.Mutation) {
	c.SetShape(m.Items)
}

// SetShape adds or removes slots until exactly target exist.
// A negative target is a caller bug and panics.
func (c *Core) SetShape(target int) {
	if target < 0 {
		panic(fmt.Sprintf("mutator: negative target count %d", target))
	}
	before := c.itemCount
	for c.itemCount < target {
		c.addSlot()
	}
	for c.itemCount > target {
		c.removeSlot()
	}
	c.refreshRemoveAffordance()

	if before != target {
		c.logger.Debug("shape updated",
			"from", before,
			"to", target,
		)
	}
}

// Grow appends one slot. There is no upper bound.
func (c *Core) Grow() {
	c.addSlot()
	c.refreshRemoveAffordance()
	c.logger.Debug("slot added", "items", c.itemCount)
}

// Shrink removes the highest slot. It does nothing when there are no slots.
func (c *Core) Shrink() {
	if c.itemCount == 0 {
		return
	}
	c.removeSlot()
	c.refreshRemoveAffordance()
	c.logger.Debug("slot removed", "items", c.itemCount)
}

// addSlot names the new row with the current count and increments after, so
// the first slot is always ADD0.
func (c *Core) addSlot() {
	name := Slot(c.itemCount)
	if c.itemCount == 0 {
		if _, ok := c.block.Input(Placeholder()); ok {
			c.block.RemoveInput(Placeholder())
		}
		c.top = c.block.AppendSlotInput(name).
			SetCheck(c.check).
			AppendField(PlusField(c), FieldPlus).
			AppendField(Label(c.itemLabel), FieldNone)
	} else {
		c.block.AppendSlotInput(name).SetCheck(c.check)
	}
	c.itemCount++
}

// removeSlot decrements first so the removed row is the highest index.
func (c *Core) removeSlot() {
	if c.itemCount == 0 {
		return
	}
	c.itemCount--
	c.block.RemoveInput(Slot(c.itemCount))
	if c.itemCount == 0 {
		c.top = c.appendPlaceholder()
	}
}

func (c *Core) appendPlaceholder() InputRow {
	row := c.block.AppendPlaceholderInput(Placeholder()).
		AppendField(PlusField(c), FieldPlus)
	c.placeholder.RenderPlaceholder(row)
	return row
}

// refreshRemoveAffordance shows MINUS right after PLUS iff there is a slot to remove.
func (c *Core) refreshRemoveAffordance() {
	_, hasMinus := c.top.Field(FieldMinus)
	switch {
	case !hasMinus && c.itemCount > 0:
		c.top.InsertFieldAt(1, MinusField(c), FieldMinus)
	case hasMinus && c.itemCount == 0:
		c.top.RemoveField(FieldMinus)
	}
}
