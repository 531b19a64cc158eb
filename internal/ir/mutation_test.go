package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationXMLRoundTrip(t *testing.T) {
	data, err := Mutation{Items: 5}.EncodeXML()
	require.NoError(t, err)
	assert.Equal(t, `<mutation items="5"></mutation>`, string(data))

	m, err := ParseMutationXML(data)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Items)
}

func TestParseMutationXMLRejects(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"missing", `<mutation></mutation>`, "required"},
		{"non-integer", `<mutation items="three"></mutation>`, "integer"},
		{"negative", `<mutation items="-1"></mutation>`, "non-negative"},
		{"wrong element", `<mutator items="1"></mutator>`, "parse mutation xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMutationXML([]byte(tt.xml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMutationJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Mutation{Items: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"items":3}`, string(data))

	m, err := ParseMutationJSON(data)
	require.NoError(t, err)
	assert.Equal(t, Mutation{Items: 3}, m)
}

func TestParseMutationJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing", `{}`},
		{"fraction", `{"items":2.5}`},
		{"string", `{"items":"2"}`},
		{"negative", `{"items":-4}`},
		{"not an object", `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMutationJSON([]byte(tt.json))
			require.Error(t, err)
		})
	}
}
