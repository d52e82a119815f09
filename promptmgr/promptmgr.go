// Package promptmgr prepares prompt content for providers: merging system
// instructions into the user message for models without native system-role
// support, and prepending auxiliary source material when configured.
package promptmgr

import "strings"

// mergeSeparator joins system and user content in merged prompts. Merge uses
// it to recognize already-merged content, so it must stay stable.
const mergeSeparator = "\n\n---\n\n"

// sourceHeader introduces prepended source material.
const sourceHeader = "Relevant source files:\n\n"

// SourceProvider supplies optional reference text prepended to outgoing
// content. Implementations return ok=false when no material is configured;
// the manager treats that as a no-op.
type SourceProvider interface {
	SourceMaterial() (material string, ok bool)
}

// Manager merges and augments prompt content. Immutable after construction;
// safe for concurrent use.
type Manager struct {
	source SourceProvider
}

// Option configures a Manager.
type Option func(*Manager)

// WithSourceProvider sets the auxiliary source material provider.
func WithSourceProvider(sp SourceProvider) Option {
	return func(m *Manager) { m.source = sp }
}

// New creates a Manager. Without options it merges only.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge combines system and user content into a single user message for
// models that lack system-role support. Deterministic and idempotent: when
// userContent already begins with the merged form of systemContent, it is
// returned unchanged, so re-merging never duplicates the system instructions.
func (m *Manager) Merge(userContent, systemContent string) string {
	if systemContent == "" {
		return userContent
	}
	prefix := systemContent + mergeSeparator
	if strings.HasPrefix(userContent, prefix) {
		return userContent
	}
	return prefix + userContent
}

// Prepare resolves the final user content for one request: system
// instructions are merged in when the model lacks system-role support, then
// source material is prepended. Adapters that send a real system message pass
// supportsSystemRole=true and keep systemContent out of the user message.
func (m *Manager) Prepare(userContent, systemContent string, supportsSystemRole bool) string {
	if !supportsSystemRole {
		userContent = m.Merge(userContent, systemContent)
	}
	return m.AugmentWithSourceMaterial(userContent)
}

// AugmentWithSourceMaterial prepends configured reference text to content.
// No-op when no provider is set, the provider has no material, or the
// material is already present.
func (m *Manager) AugmentWithSourceMaterial(content string) string {
	if m.source == nil {
		return content
	}
	material, ok := m.source.SourceMaterial()
	if !ok || material == "" {
		return content
	}
	block := sourceHeader + material + "\n\n"
	if strings.HasPrefix(content, block) {
		return content
	}
	return block + content
}
