package ir

import (
	"encoding/json"
	"fmt"
)

// ValueCheck is the connection-type constraint applied to every slot input.
// A nil ValueCheck means unconstrained; otherwise a connected value must match
// one of the listed type names.
type ValueCheck []string

// Unconstrained reports whether the check accepts any value.
func (c ValueCheck) Unconstrained() bool {
	return len(c) == 0
}

// Accepts reports whether a value of the given type may connect.
func (c ValueCheck) Accepts(typeName string) bool {
	if c.Unconstrained() {
		return true
	}
	for _, t := range c {
		if t == typeName {
			return true
		}
	}
	return false
}

// MarshalJSON encodes an unconstrained check as null, a single type as a
// string, and several types as an array, matching the block-definition format.
func (c ValueCheck) MarshalJSON() ([]byte, error) {
	switch len(c) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(c[0])
	default:
		return json.Marshal([]string(c))
	}
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (c *ValueCheck) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = ValueCheck{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("value check must be null, a string, or a list of strings: %w", err)
	}
	*c = ValueCheck(many)
	return nil
}

// Placeholder kinds describe what the empty row shows besides the plus.
const (
	PlaceholderLabel  = "label"
	PlaceholderQuotes = "quotes"
)

// ValidPlaceholders defines allowed placeholder kinds.
var ValidPlaceholders = map[string]bool{
	PlaceholderLabel:  true,
	PlaceholderQuotes: true,
}

// BlockDef is a compiled block-type definition.
type BlockDef struct {
	Type     string     `json:"type"`
	Message0 string     `json:"message0"`
	Output   ValueCheck `json:"output"`
	Style    string     `json:"style,omitempty"`
	Tooltip  string     `json:"tooltip,omitempty"`
	HelpURL  string     `json:"help_url,omitempty"`
	Mutator  MutatorDef `json:"mutator"`
}

// MutatorDef configures the plus/minus mutator for a block type.
type MutatorDef struct {
	DefaultItems int        `json:"default_items"`
	Check        ValueCheck `json:"check"`
	EmptyLabel   string     `json:"empty_label"`
	ItemLabel    string     `json:"item_label"`
	Placeholder  string     `json:"placeholder"`
}

// BlockSnapshot is the observable shape of one block at a point in time.
type BlockSnapshot struct {
	ID     string          `json:"id" cbor:"1,keyasint"`
	Type   string          `json:"type" cbor:"2,keyasint"`
	Items  int             `json:"items" cbor:"3,keyasint"`
	Inputs []InputSnapshot `json:"inputs" cbor:"4,keyasint"`
}

// InputSnapshot describes a single input row and its fields in order.
type InputSnapshot struct {
	Name   string     `json:"name" cbor:"1,keyasint"`
	Kind   string     `json:"kind" cbor:"2,keyasint"` // "value" or "dummy"
	Check  ValueCheck `json:"check,omitempty" cbor:"3,keyasint,omitempty"`
	Fields []string   `json:"fields" cbor:"4,keyasint"`
}

// InputNames returns the names of all input rows in order.
func (s BlockSnapshot) InputNames() []string {
	names := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		names[i] = in.Name
	}
	return names
}

// HasField reports whether any input row carries the named field.
func (s BlockSnapshot) HasField(name string) bool {
	for _, in := range s.Inputs {
		for _, f := range in.Fields {
			if f == name {
				return true
			}
		}
	}
	return false
}

// Event kinds recorded in the event log.
const (
	EventCreate = "create"
	EventPlus   = "plus"
	EventMinus  = "minus"
	EventLoad   = "load"
	EventSave   = "save"
)

// ValidEventKinds defines allowed event kinds.
var ValidEventKinds = map[string]bool{
	EventCreate: true,
	EventPlus:   true,
	EventMinus:  true,
	EventLoad:   true,
	EventSave:   true,
}

// Event is one applied user or lifecycle event.
type Event struct {
	Seq         int64  `json:"seq"` // Logical clock
	FlowToken   string `json:"flow_token"`
	BlockID     string `json:"block_id"`
	BlockType   string `json:"block_type"`
	Kind        string `json:"kind"`
	Items       int    `json:"items,omitempty"` // target for load events
	ItemsBefore int    `json:"items_before"`
	ItemsAfter  int    `json:"items_after"`
}
