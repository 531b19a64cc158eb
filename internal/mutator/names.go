package mutator

import (
	"fmt"
	"strconv"
	"strings"
)

type inputKind int

const (
	inputPlaceholder inputKind = iota + 1
	inputSlot
)

// InputName identifies one of the rows the mutator manages.
// The set is closed: a row is either the placeholder or a numbered slot.
// Construct values with Placeholder and Slot; the zero value is invalid.
type InputName struct {
	kind  inputKind
	index int
}

// Placeholder is the row shown while the block has no slots ("EMPTY").
func Placeholder() InputName {
	return InputName{kind: inputPlaceholder}
}

// Slot is the i-th value row ("ADD<i>"), zero-based by creation order.
func Slot(i int) InputName {
	if i < 0 {
		panic(fmt.Sprintf("mutator: negative slot index %d", i))
	}
	return InputName{kind: inputSlot, index: i}
}

// IsPlaceholder reports whether n names the placeholder row.
func (n InputName) IsPlaceholder() bool {
	return n.kind == inputPlaceholder
}

// SlotIndex returns the slot index and true when n names a slot row.
func (n InputName) SlotIndex() (int, bool) {
	if n.kind != inputSlot {
		return 0, false
	}
	return n.index, true
}

// String returns the serialized input name.
func (n InputName) String() string {
	switch n.kind {
	case inputPlaceholder:
		return "EMPTY"
	case inputSlot:
		return "ADD" + strconv.Itoa(n.index)
	default:
		return ""
	}
}

// ParseInputName maps a serialized name back to an InputName.
func ParseInputName(s string) (InputName, bool) {
	if s == "EMPTY" {
		return Placeholder(), true
	}
	rest, ok := strings.CutPrefix(s, "ADD")
	if !ok || rest == "" {
		return InputName{}, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 || strconv.Itoa(i) != rest {
		return InputName{}, false
	}
	return Slot(i), true
}

// FieldName identifies the named fields the mutator places on rows.
// Decorative fields (labels, quote markers) use FieldNone.
type FieldName int

const (
	FieldNone FieldName = iota
	FieldPlus
	FieldMinus
)

func (f FieldName) String() string {
	switch f {
	case FieldPlus:
		return "PLUS"
	case FieldMinus:
		return "MINUS"
	default:
		return ""
	}
}

// FieldKind enumerates what a field displays.
type FieldKind int

const (
	KindLabel FieldKind = iota // static text
	KindPlus                   // grow affordance
	KindMinus                  // shrink affordance
	KindQuote                  // decorative quote marker
)

func (k FieldKind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindPlus:
		return "plus"
	case KindMinus:
		return "minus"
	case KindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// FieldSpec describes a field to be placed on an input row.
type FieldSpec struct {
	Kind FieldKind
	Text string

	// OnActivate runs when the user clicks the field. Nil for static fields.
	OnActivate func()
}

// Activate invokes the field's click handler, if any.
func (f FieldSpec) Activate() {
	if f.OnActivate != nil {
		f.OnActivate()
	}
}

// Label returns a static text field.
func Label(text string) FieldSpec {
	return FieldSpec{Kind: KindLabel, Text: text}
}

// PlusField returns the grow affordance bound to m.
func PlusField(m VariadicMutator) FieldSpec {
	return FieldSpec{Kind: KindPlus, Text: "+", OnActivate: m.Grow}
}

// MinusField returns the shrink affordance bound to m.
func MinusField(m VariadicMutator) FieldSpec {
	return FieldSpec{Kind: KindMinus, Text: "-", OnActivate: m.Shrink}
}
