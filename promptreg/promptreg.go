// Package promptreg loads system-prompt manifests from YAML files. Prompts
// are keyed by name and target language: {dir}/{name}.{target}.yaml with
// fallback to {dir}/{name}.yaml. Loads are lazy, cached, and deduplicated, so
// concurrent translations of many graphs parse each manifest once.
package promptreg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for prompt registry operations. Callers should use errors.Is.
var (
	ErrPromptNotFound  = errors.New("promptreg: prompt not found")
	ErrInvalidManifest = errors.New("promptreg: manifest file is malformed")
	ErrRender          = errors.New("promptreg: prompt rendering failed")
)

// fileManifest is the YAML manifest shape.
type fileManifest struct {
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Variables   struct {
		Partial map[string]any `yaml:"partial"`
	} `yaml:"variables"`
	Content string `yaml:"content"`
}

// Prompt is a parsed system-prompt template. Immutable after parsing.
type Prompt struct {
	ID      string
	Version string
	partial map[string]any
	tpl     *template.Template
}

// Render executes the prompt template with vars merged over the manifest's
// partial variables (vars win). Unresolved variables fail with ErrRender.
func (p *Prompt) Render(vars map[string]any) (string, error) {
	merged := maps.Clone(p.partial)
	if merged == nil {
		merged = make(map[string]any)
	}
	maps.Copy(merged, vars)

	var b strings.Builder
	if err := p.tpl.Execute(&b, merged); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrRender, p.ID, err)
	}
	return b.String(), nil
}

// ParseBytes parses a YAML manifest into a Prompt.
func ParseBytes(data []byte) (*Prompt, error) {
	var m fileManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidManifest)
	}
	if m.Content == "" {
		return nil, fmt.Errorf("%w: %q: missing content", ErrInvalidManifest, m.ID)
	}
	tpl, err := template.New(m.ID).Option("missingkey=error").Parse(m.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidManifest, m.ID, err)
	}
	return &Prompt{
		ID:      m.ID,
		Version: m.Version,
		partial: maps.Clone(m.Variables.Partial),
		tpl:     tpl,
	}, nil
}

// Registry loads prompts from a directory (lazy, cached, singleflight).
// Safe for concurrent use.
type Registry struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*Prompt
	sf    singleflight.Group
}

// New creates a Registry that reads YAML manifests from dir.
func New(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[string]*Prompt),
	}
}

// Get returns a prompt by name and target language. Resolution:
// {dir}/{name}.{target}.yaml or .yml, then fallback {dir}/{name}.yaml or .yml.
func (r *Registry) Get(ctx context.Context, name, target string) (*Prompt, error) {
	key := name + ":" + target
	r.mu.RLock()
	p, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		p, err := r.load(name, target)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Prompt), nil
}

// Reload clears the cache (for hot-reload in development).
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*Prompt)
}

func (r *Registry) load(name, target string) (*Prompt, error) {
	var candidates []string
	extensions := []string{".yaml", ".yml"}
	if target != "" {
		for _, ext := range extensions {
			candidates = append(candidates, name+"."+target+ext)
		}
	}
	for _, ext := range extensions {
		candidates = append(candidates, name+ext)
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(filepath.Join(r.dir, candidate))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("promptreg: read %s: %w", candidate, err)
		}
		return ParseBytes(data)
	}
	return nil, fmt.Errorf("%w: %q (target %q)", ErrPromptNotFound, name, target)
}
