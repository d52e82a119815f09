// Package translator orchestrates one full graph-to-code translation: render
// the system prompt for the configured target language, send the graph dump
// through a provider adapter, wait for the terminal callback, and normalize
// the response into typed translation units. Batch translation runs multiple
// graphs with bounded concurrency.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/graphtran/graphtran"
	"github.com/graphtran/graphtran/promptreg"
	"github.com/graphtran/graphtran/provider"
)

// defaultPromptName is the registry name of the translation system prompt.
const defaultPromptName = "translator"

// ErrNoService indicates the Translator was constructed without an adapter.
var ErrNoService = errors.New("translator: provider service must not be nil")

// Translator runs translations through one provider adapter. Immutable after
// construction; safe for concurrent use if the underlying Service is.
type Translator struct {
	svc        provider.Service
	prompts    *promptreg.Registry
	promptName string
	target     string
	limit      int
	log        *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithPromptName overrides the registry name of the system prompt.
func WithPromptName(name string) Option {
	return func(t *Translator) { t.promptName = name }
}

// WithTarget sets the output language (prompt selection and rendering).
func WithTarget(target string) Option {
	return func(t *Translator) { t.target = target }
}

// WithConcurrency bounds parallel translations in TranslateAll. Default 4.
func WithConcurrency(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.limit = n
		}
	}
}

// WithLogger sets the diagnostic logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(t *Translator) {
		if log != nil {
			t.log = log
		}
	}
}

// New creates a Translator. svc must be an initialized provider service;
// prompts supplies system-prompt manifests.
func New(svc provider.Service, prompts *promptreg.Registry, opts ...Option) (*Translator, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	t := &Translator{
		svc:        svc,
		prompts:    prompts,
		promptName: defaultPromptName,
		target:     "cpp",
		limit:      4,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Translate sends one graph dump and returns the normalized result. The
// provider callback fires exactly once; Translate bridges it back into a
// synchronous call, honoring ctx cancellation.
func (t *Translator) Translate(ctx context.Context, graphJSON string) (*graphtran.TranslationResult, error) {
	systemContent, err := t.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}

	// Buffered so a late transport resolve never blocks against an
	// abandoned receiver.
	bodyCh := make(chan string, 1)
	t.svc.SendRequest(ctx, graphJSON, systemContent, func(body string) {
		bodyCh <- body
	})

	select {
	case body := <-bodyCh:
		result, err := graphtran.ParseTranslation(body)
		if err != nil {
			return nil, err
		}
		t.log.Info("graph translated", slog.Int("graphs", len(result.Graphs)))
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TranslateAll translates graphs with bounded concurrency and returns
// results in input order. The first failure cancels the remaining work.
func (t *Translator) TranslateAll(ctx context.Context, graphs []string) ([]*graphtran.TranslationResult, error) {
	results := make([]*graphtran.TranslationResult, len(graphs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.limit)
	for i, graph := range graphs {
		i, graph := i, graph
		g.Go(func() error {
			result, err := t.Translate(ctx, graph)
			if err != nil {
				return fmt.Errorf("translator: graph %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// systemPrompt renders the configured system prompt, or returns empty content
// when no registry is wired (the adapter then sends the graph alone).
func (t *Translator) systemPrompt(ctx context.Context) (string, error) {
	if t.prompts == nil {
		return "", nil
	}
	p, err := t.prompts.Get(ctx, t.promptName, t.target)
	if err != nil {
		return "", err
	}
	return p.Render(map[string]any{"target": t.target})
}
