package graphtran

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationSchema_ParsesOnce(t *testing.T) {
	t.Parallel()
	first, err := TranslationSchema()
	require.NoError(t, err)
	second, err := TranslationSchema()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTranslationSchema_Shape(t *testing.T) {
	t.Parallel()
	def, err := TranslationSchema()
	require.NoError(t, err)
	assert.Equal(t, "graph_translation", def.Name)

	require.Contains(t, def.Schema, "properties")
	props, ok := def.Schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "graphs")

	required, ok := def.Schema["required"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"graphs"}, required)
	assert.Equal(t, false, def.Schema["additionalProperties"])
}

func TestTranslationSchema_RoundTripsThroughJSON(t *testing.T) {
	t.Parallel()
	def, err := TranslationSchema()
	require.NoError(t, err)
	data, err := json.Marshal(def)
	require.NoError(t, err)

	var back SchemaDefinition
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, def.Name, back.Name)
	assert.Contains(t, back.Schema, "properties")
}
