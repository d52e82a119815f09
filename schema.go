package graphtran

import (
	"encoding/json"
	"fmt"
	"sync"
)

// SchemaVersion identifies the embedded translation schema revision. Bump when
// the schema literal below changes shape.
const SchemaVersion = "1"

// SchemaDefinition is the provider-facing JSON Schema envelope sent inside
// response_format. The Schema field is the raw JSON Schema document.
type SchemaDefinition struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// translationSchemaJSON is the fixed structured-output schema. It constrains
// the model to return a "graphs" array of named translation units so the
// response can be decoded without a free-text parser. Not user-configurable;
// constant for a given SchemaVersion.
const translationSchemaJSON = `{
  "name": "graph_translation",
  "schema": {
    "type": "object",
    "properties": {
      "graphs": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "graph_name": {"type": "string"},
            "graph_type": {"type": "string"},
            "graph_class": {"type": "string"},
            "code": {
              "type": "object",
              "properties": {
                "graphDeclaration": {"type": "string"},
                "graphImplementation": {"type": "string"},
                "implementationNotes": {"type": "string"}
              },
              "required": ["graphDeclaration", "graphImplementation"]
            }
          },
          "required": ["graph_name", "graph_type", "graph_class", "code"]
        }
      }
    },
    "required": ["graphs"],
    "additionalProperties": false
  }
}`

var (
	schemaOnce sync.Once
	schemaVal  *SchemaDefinition
	schemaErr  error
)

// TranslationSchema parses the embedded schema once and returns the shared
// definition. A parse failure is a defect in the schema literal, not a runtime
// condition; callers must surface it loudly rather than drop response_format.
// The returned value is shared: callers must not mutate it.
func TranslationSchema() (*SchemaDefinition, error) {
	schemaOnce.Do(func() {
		var def SchemaDefinition
		if err := json.Unmarshal([]byte(translationSchemaJSON), &def); err != nil {
			schemaErr = fmt.Errorf("%w: %w", ErrSchemaParse, err)
			return
		}
		if def.Name == "" || def.Schema == nil {
			schemaErr = fmt.Errorf("%w: missing name or schema", ErrSchemaParse)
			return
		}
		schemaVal = &def
	})
	return schemaVal, schemaErr
}
