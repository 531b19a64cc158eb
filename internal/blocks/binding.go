package blocks

import (
	"fmt"
	"log/slog"

	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/msg"
	"github.com/roach88/plusminus/internal/mutator"
)

// Binding is the per-block-type configuration of the plus/minus mutator.
type Binding struct {
	Type         string
	Check        ir.ValueCheck
	EmptyLabel   string
	ItemLabel    string
	DefaultCount int

	// Placeholder renders the empty state. Nil means a LabelPlaceholder
	// showing EmptyLabel.
	Placeholder mutator.PlaceholderRenderer
}

func (b Binding) placeholder() mutator.PlaceholderRenderer {
	if b.Placeholder != nil {
		return b.Placeholder
	}
	return mutator.LabelPlaceholder{Text: b.EmptyLabel}
}

// Instance is one block wired to its mutator.
type Instance struct {
	Binding Binding
	Block   mutator.Block
	core    *mutator.Core
}

// Attach runs the initialization hook: it wires a new mutator to block and
// applies the binding's default count, so a freshly placed block is usable
// without clicking plus. Saved state, if any, is applied afterwards with
// LoadExtraState or LoadMutationXML.
func (b Binding) Attach(block mutator.Block, logger *slog.Logger) *Instance {
	core := mutator.NewCore(block,
		mutator.WithCheck(b.Check),
		mutator.WithItemLabel(b.ItemLabel),
		mutator.WithPlaceholder(b.placeholder()),
		mutator.WithLogger(logger),
	)
	core.SetShape(b.DefaultCount)
	return &Instance{Binding: b, Block: block, core: core}
}

// Mutator returns the instance's state machine.
func (i *Instance) Mutator() *mutator.Core {
	return i.core
}

// ItemCount returns the number of slots.
func (i *Instance) ItemCount() int {
	return i.core.ItemCount()
}

// Plus handles a click on the plus affordance.
func (i *Instance) Plus() {
	i.core.Grow()
}

// Minus handles a click on the minus affordance.
func (i *Instance) Minus() {
	i.core.Shrink()
}

// SaveExtraState returns the JSON form {"items":n}.
func (i *Instance) SaveExtraState() ([]byte, error) {
	return i.core.Serialize().MarshalJSON()
}

// LoadExtraState validates and applies the JSON form.
func (i *Instance) LoadExtraState(data []byte) error {
	m, err := ir.ParseMutationJSON(data)
	if err != nil {
		return &MutationError{BlockType: i.Binding.Type, Err: err}
	}
	i.core.Deserialize(m)
	return nil
}

// MutationToXML returns <mutation items="n"></mutation>.
func (i *Instance) MutationToXML() ([]byte, error) {
	return i.core.Serialize().EncodeXML()
}

// LoadMutationXML validates and applies the XML form.
func (i *Instance) LoadMutationXML(data []byte) error {
	m, err := ir.ParseMutationXML(data)
	if err != nil {
		return &MutationError{BlockType: i.Binding.Type, Err: err}
	}
	i.core.Deserialize(m)
	return nil
}

// MutationError reports a saved count that cannot be applied.
type MutationError struct {
	BlockType string
	Err       error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: invalid mutation: %v", e.BlockType, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Catalog maps block type names to bindings. It is an ordinary value built
// and passed around by the caller.
type Catalog struct {
	bindings map[string]Binding
	order    []string
}

// NewCatalog builds a catalog. Later bindings replace earlier ones of the same type.
func NewCatalog(bindings ...Binding) *Catalog {
	c := &Catalog{bindings: make(map[string]Binding, len(bindings))}
	for _, b := range bindings {
		c.Add(b)
	}
	return c
}

// Add inserts or replaces a binding.
func (c *Catalog) Add(b Binding) {
	if _, ok := c.bindings[b.Type]; !ok {
		c.order = append(c.order, b.Type)
	}
	c.bindings[b.Type] = b
}

// Lookup returns the binding for a block type.
func (c *Catalog) Lookup(blockType string) (Binding, bool) {
	b, ok := c.bindings[blockType]
	return b, ok
}

// Types returns the registered type names in insertion order.
func (c *Catalog) Types() []string {
	return append([]string(nil), c.order...)
}

// Builtin returns the list and text bindings localized through l.
func Builtin(l *msg.Localizer) *Catalog {
	return NewCatalog(ListCreate(l), TextJoin(l))
}
