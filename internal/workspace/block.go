package workspace

import (
	"fmt"
	"strings"

	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/mutator"
)

// InputKind distinguishes rows that accept a value from label-only rows.
type InputKind int

const (
	InputValue InputKind = iota + 1 // accepts a connected value
	InputDummy                      // fields only
)

func (k InputKind) String() string {
	switch k {
	case InputValue:
		return "value"
	case InputDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

type field struct {
	name mutator.FieldName
	spec mutator.FieldSpec
}

// Input is one row of a Block.
type Input struct {
	name   mutator.InputName
	kind   InputKind
	check  ir.ValueCheck
	fields []field
}

var _ mutator.InputRow = (*Input)(nil)

// Name returns the row identifier.
func (in *Input) Name() mutator.InputName { return in.name }

// Kind returns whether the row accepts a value.
func (in *Input) Kind() InputKind { return in.kind }

// Check returns the row's type constraint.
func (in *Input) Check() ir.ValueCheck { return in.check }

// SetCheck sets the type constraint. Dummy rows ignore it.
func (in *Input) SetCheck(check ir.ValueCheck) mutator.InputRow {
	if in.kind == InputValue {
		in.check = check
	}
	return in
}

// AppendField adds a field at the end of the row.
func (in *Input) AppendField(spec mutator.FieldSpec, name mutator.FieldName) mutator.InputRow {
	in.fields = append(in.fields, field{name: name, spec: spec})
	return in
}

// InsertFieldAt inserts a field at pos, clamped to the row's bounds.
func (in *Input) InsertFieldAt(pos int, spec mutator.FieldSpec, name mutator.FieldName) mutator.InputRow {
	pos = max(0, min(pos, len(in.fields)))
	in.fields = append(in.fields, field{})
	copy(in.fields[pos+1:], in.fields[pos:])
	in.fields[pos] = field{name: name, spec: spec}
	return in
}

// RemoveField removes the named field. Removing an absent field is a no-op.
func (in *Input) RemoveField(name mutator.FieldName) {
	if name == mutator.FieldNone {
		return
	}
	for i, f := range in.fields {
		if f.name == name {
			in.fields = append(in.fields[:i], in.fields[i+1:]...)
			return
		}
	}
}

// Field looks up a named field.
func (in *Input) Field(name mutator.FieldName) (mutator.FieldSpec, bool) {
	if name == mutator.FieldNone {
		return mutator.FieldSpec{}, false
	}
	for _, f := range in.fields {
		if f.name == name {
			return f.spec, true
		}
	}
	return mutator.FieldSpec{}, false
}

// FieldSpecs returns the row's fields in display order.
func (in *Input) FieldSpecs() []mutator.FieldSpec {
	specs := make([]mutator.FieldSpec, len(in.fields))
	for i, f := range in.fields {
		specs[i] = f.spec
	}
	return specs
}

// fieldKey is the snapshot form of a field: its name when named, else its text.
func (f field) key() string {
	if f.name != mutator.FieldNone {
		return f.name.String()
	}
	return f.spec.Text
}

// Block is an in-memory host block with ordered input rows.
type Block struct {
	id     string
	typ    string
	inputs []*Input
}

var _ mutator.Block = (*Block)(nil)

// NewBlock creates an empty block.
func NewBlock(id, blockType string) *Block {
	return &Block{id: id, typ: blockType}
}

// ID returns the block identifier.
func (b *Block) ID() string { return b.id }

// Type returns the block type name.
func (b *Block) Type() string { return b.typ }

// Inputs returns the rows in display order.
func (b *Block) Inputs() []*Input {
	return append([]*Input(nil), b.inputs...)
}

// AppendSlotInput appends a value row. Duplicate names are a host bug and panic.
func (b *Block) AppendSlotInput(name mutator.InputName) mutator.InputRow {
	return b.appendInput(name, InputValue)
}

// AppendPlaceholderInput appends a dummy row.
func (b *Block) AppendPlaceholderInput(name mutator.InputName) mutator.InputRow {
	return b.appendInput(name, InputDummy)
}

func (b *Block) appendInput(name mutator.InputName, kind InputKind) *Input {
	if _, ok := b.Input(name); ok {
		panic(fmt.Sprintf("workspace: block %s already has input %q", b.id, name))
	}
	in := &Input{name: name, kind: kind}
	b.inputs = append(b.inputs, in)
	return in
}

// RemoveInput removes the named row if present.
func (b *Block) RemoveInput(name mutator.InputName) {
	for i, in := range b.inputs {
		if in.name == name {
			b.inputs = append(b.inputs[:i], b.inputs[i+1:]...)
			return
		}
	}
}

// Input looks up a row by name.
func (b *Block) Input(name mutator.InputName) (mutator.InputRow, bool) {
	for _, in := range b.inputs {
		if in.name == name {
			return in, true
		}
	}
	return nil, false
}

// Click activates the first field with the given name.
func (b *Block) Click(name mutator.FieldName) error {
	for _, in := range b.inputs {
		if spec, ok := in.Field(name); ok {
			spec.Activate()
			return nil
		}
	}
	return fmt.Errorf("block %s has no %s field", b.id, name)
}

// Snapshot captures the block's current shape.
func (b *Block) Snapshot(items int) ir.BlockSnapshot {
	snap := ir.BlockSnapshot{
		ID:     b.id,
		Type:   b.typ,
		Items:  items,
		Inputs: make([]ir.InputSnapshot, len(b.inputs)),
	}
	for i, in := range b.inputs {
		fields := make([]string, len(in.fields))
		for j, f := range in.fields {
			fields[j] = f.key()
		}
		snap.Inputs[i] = ir.InputSnapshot{
			Name:   in.name.String(),
			Kind:   in.kind.String(),
			Check:  in.check,
			Fields: fields,
		}
	}
	return snap
}

// Render draws the block as text, one row per line:
//
//	ADD0: [+] [-] create list with <ADD0>
//	ADD1: <ADD1>
func (b *Block) Render() string {
	var sb strings.Builder
	for _, in := range b.inputs {
		parts := make([]string, 0, len(in.fields)+1)
		for _, f := range in.fields {
			switch f.spec.Kind {
			case mutator.KindPlus:
				parts = append(parts, "[+]")
			case mutator.KindMinus:
				parts = append(parts, "[-]")
			default:
				if f.spec.Text != "" {
					parts = append(parts, f.spec.Text)
				}
			}
		}
		if in.kind == InputValue {
			parts = append(parts, "<"+in.name.String()+">")
		}
		fmt.Fprintf(&sb, "%s: %s\n", in.name, strings.Join(parts, " "))
	}
	return sb.String()
}
