package mutator

import "github.com/roach88/plusminus/internal/ir"

// Block is the narrow view of a host block that the mutator drives.
// The mutator assumes it is the only code adding or removing these rows.
type Block interface {
	// AppendSlotInput appends a value-accepting row.
	AppendSlotInput(name InputName) InputRow

	// AppendPlaceholderInput appends a row that accepts no value.
	AppendPlaceholderInput(name InputName) InputRow

	// RemoveInput removes the named row. Removing an absent row is a no-op.
	RemoveInput(name InputName)

	// Input looks up a row by name.
	Input(name InputName) (InputRow, bool)
}

// InputRow is a single row on the host block.
// Mutating methods return the row so calls can be chained.
type InputRow interface {
	Name() InputName
	SetCheck(check ir.ValueCheck) InputRow
	AppendField(spec FieldSpec, name FieldName) InputRow
	InsertFieldAt(pos int, spec FieldSpec, name FieldName) InputRow
	RemoveField(name FieldName)
	Field(name FieldName) (FieldSpec, bool)
}
