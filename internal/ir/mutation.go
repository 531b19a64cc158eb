package ir

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Mutation is the persisted form of a plus/minus block: the number of slots.
type Mutation struct {
	Items int `json:"items"`
}

// xmlMutation mirrors <mutation items="n"></mutation>.
type xmlMutation struct {
	XMLName xml.Name `xml:"mutation"`
	Items   string   `xml:"items,attr"`
}

// EncodeXML renders the mutation element.
func (m Mutation) EncodeXML() ([]byte, error) {
	return xml.Marshal(xmlMutation{Items: strconv.Itoa(m.Items)})
}

// ParseMutationXML reads a <mutation> element.
// A missing, non-integer, or negative items attribute is rejected.
func ParseMutationXML(data []byte) (Mutation, error) {
	var x xmlMutation
	if err := xml.Unmarshal(data, &x); err != nil {
		return Mutation{}, fmt.Errorf("parse mutation xml: %w", err)
	}
	return parseItems(x.Items)
}

// MarshalJSON is the extra-state form {"items":n}.
func (m Mutation) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(map[string]any{"items": m.Items})
}

// ParseMutationJSON reads {"items":n}. Fractional, negative, or missing
// counts are rejected.
func ParseMutationJSON(data []byte) (Mutation, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Mutation{}, fmt.Errorf("parse mutation json: %w", err)
	}
	v, ok := raw["items"]
	if !ok {
		return Mutation{}, fmt.Errorf("parse mutation json: items is required")
	}
	return parseItems(strings.TrimSpace(string(v)))
}

func parseItems(s string) (Mutation, error) {
	if s == "" {
		return Mutation{}, fmt.Errorf("items is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Mutation{}, fmt.Errorf("items must be an integer, got %q", s)
	}
	if n < 0 {
		return Mutation{}, fmt.Errorf("items must be non-negative, got %d", n)
	}
	return Mutation{Items: n}, nil
}
