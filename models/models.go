// Package models holds the static capability table for known chat-completion
// model identifiers. The table is built once and read-only; unknown models
// fall back to a configurable default instead of failing, since providers add
// models faster than capability tables are updated.
package models

import "maps"

// Capability describes what a model supports on the request surface.
type Capability struct {
	// SystemRole reports whether the model accepts a distinguished
	// system-role message separate from user content.
	SystemRole bool
	// StructuredOutput reports whether the model accepts a response_format
	// JSON Schema constraint.
	StructuredOutput bool
}

// knownModels is the fixed enumeration of capability exceptions. Models absent
// here get the table default. The o1 preview generation accepts neither system
// messages nor response_format.
var knownModels = map[string]Capability{
	"gpt-4o":                {SystemRole: true, StructuredOutput: true},
	"gpt-4o-mini":           {SystemRole: true, StructuredOutput: true},
	"gpt-4-turbo":           {SystemRole: true, StructuredOutput: true},
	"gpt-4.1":               {SystemRole: true, StructuredOutput: true},
	"gpt-4.1-mini":          {SystemRole: true, StructuredOutput: true},
	"o1-preview":            {SystemRole: false, StructuredOutput: false},
	"o1-preview-2024-09-12": {SystemRole: false, StructuredOutput: false},
	"o1-mini":               {SystemRole: false, StructuredOutput: false},
	"o1-mini-2024-09-12":    {SystemRole: false, StructuredOutput: false},
}

// Table maps model identifiers to capabilities with a default for unknown ids.
// Immutable after construction; safe for concurrent use.
type Table struct {
	caps map[string]Capability
	def  Capability
}

// Option configures a Table (functional options pattern).
type Option func(*Table)

// WithDefault sets the capability returned for unknown model identifiers.
// The default default is fully capable, so system instructions are never
// silently dropped for models the table has not caught up with.
func WithDefault(def Capability) Option {
	return func(t *Table) { t.def = def }
}

// WithOverrides merges extra entries over the built-in enumeration.
func WithOverrides(overrides map[string]Capability) Option {
	return func(t *Table) { maps.Copy(t.caps, overrides) }
}

// NewTable builds a Table from the built-in enumeration and options.
func NewTable(opts ...Option) *Table {
	t := &Table{
		caps: maps.Clone(knownModels),
		def:  Capability{SystemRole: true, StructuredOutput: true},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// defaultTable is the shared process-wide table.
var defaultTable = NewTable()

// Default returns the shared built-in table.
func Default() *Table { return defaultTable }

// Lookup returns the capability for model, or the table default when the
// identifier is unknown. Exact match only; no format validation.
func (t *Table) Lookup(model string) Capability {
	if c, ok := t.caps[model]; ok {
		return c
	}
	return t.def
}

// SupportsSystemRole reports whether model accepts a system-role message.
func (t *Table) SupportsSystemRole(model string) bool {
	return t.Lookup(model).SystemRole
}

// SupportsStructuredOutput reports whether model accepts a response_format
// schema constraint.
func (t *Table) SupportsStructuredOutput(model string) bool {
	return t.Lookup(model).StructuredOutput
}
