package blocks

import (
	"github.com/roach88/plusminus/internal/ir"
	"github.com/roach88/plusminus/internal/msg"
	"github.com/roach88/plusminus/internal/mutator"
)

// Built-in block type names.
const (
	TypeListCreate = "lists_create_with"
	TypeTextJoin   = "text_join"
)

// ListCreate builds a list from its slots. New blocks start with three.
func ListCreate(l *msg.Localizer) Binding {
	return Binding{
		Type:         TypeListCreate,
		EmptyLabel:   l.Text(msg.ListsCreateEmptyTitle),
		ItemLabel:    l.Text(msg.ListsCreateWithInputWith),
		DefaultCount: 3,
	}
}

// TextJoin concatenates its slots. New blocks start with two, and the empty
// block shows a pair of quotes instead of a label.
func TextJoin(l *msg.Localizer) Binding {
	return Binding{
		Type:         TypeTextJoin,
		ItemLabel:    l.Text(msg.TextJoinTitleCreateWith),
		DefaultCount: 2,
		Placeholder:  QuotesPlaceholder{},
	}
}

// Quote marker glyphs.
const (
	QuoteOpen  = "“"
	QuoteClose = "”"
)

// QuotesPlaceholder renders an empty string literal: an opening and a closing
// quote marker after the plus.
type QuotesPlaceholder struct{}

// RenderPlaceholder appends both markers.
func (QuotesPlaceholder) RenderPlaceholder(row mutator.InputRow) {
	row.AppendField(mutator.FieldSpec{Kind: mutator.KindQuote, Text: QuoteOpen}, mutator.FieldNone).
		AppendField(mutator.FieldSpec{Kind: mutator.KindQuote, Text: QuoteClose}, mutator.FieldNone)
}

// FromDef converts a compiled block definition into a binding.
func FromDef(def ir.BlockDef) Binding {
	b := Binding{
		Type:         def.Type,
		Check:        def.Mutator.Check,
		EmptyLabel:   def.Mutator.EmptyLabel,
		ItemLabel:    def.Mutator.ItemLabel,
		DefaultCount: def.Mutator.DefaultItems,
	}
	if def.Mutator.Placeholder == ir.PlaceholderQuotes {
		b.Placeholder = QuotesPlaceholder{}
	}
	return b
}
