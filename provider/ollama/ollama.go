// Package ollama implements provider.Service for a local Ollama instance.
// Ollama takes no credentials and no json_schema response_format; the adapter
// requests plain JSON mode and relies on the prompt to pin the output shape.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/graphtran/graphtran"
	"github.com/graphtran/graphtran/models"
	"github.com/graphtran/graphtran/promptmgr"
	"github.com/graphtran/graphtran/provider"
	"github.com/graphtran/graphtran/transport"
)

// DefaultEndpoint is the local Ollama chat endpoint.
const DefaultEndpoint = "http://localhost:11434/api/chat"

const notInitializedMsg = "Service not initialized"

// maxOutputTokens mirrors the OpenAI adapter's output budget; Ollama calls it
// num_predict.
const maxOutputTokens = 8192

// Ensures Service implements provider.Service.
var _ provider.Service = (*Service)(nil)

// Service is the Ollama provider adapter. Same lifecycle as the OpenAI
// adapter: New, Initialize once, then SendRequest.
type Service struct {
	cfg       graphtran.ProviderConfig
	state     provider.State
	caps      *models.Table
	prompts   *promptmgr.Manager
	transport provider.Transport
	log       *slog.Logger
}

// Option configures a Service before Initialize.
type Option func(*Service)

// WithTransport injects the transport. Default is transport.NewHTTP().
func WithTransport(t provider.Transport) Option {
	return func(s *Service) { s.transport = t }
}

// WithCapabilities sets the model capability table. Default is models.Default().
func WithCapabilities(tbl *models.Table) Option {
	return func(s *Service) { s.caps = tbl }
}

// WithPromptManager sets the prompt manager. Default is promptmgr.New().
func WithPromptManager(m *promptmgr.Manager) Option {
	return func(s *Service) { s.prompts = m }
}

// WithLogger sets the diagnostic logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New creates an uninitialized Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize applies cfg and wires default collaborators. The API key is
// ignored; Ollama is unauthenticated.
func (s *Service) Initialize(cfg graphtran.ProviderConfig) error {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if parsed, err := url.Parse(cfg.Endpoint); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		s.state = provider.StateFaulted
		s.logger().Error("invalid endpoint", slog.String("endpoint", cfg.Endpoint))
		return fmt.Errorf("%w: endpoint %q", provider.ErrInvalidConfig, cfg.Endpoint)
	}
	if cfg.Model == "" {
		s.state = provider.StateFaulted
		s.logger().Error("missing model identifier")
		return fmt.Errorf("%w: model must not be empty", provider.ErrInvalidConfig)
	}

	s.cfg = cfg
	if s.caps == nil {
		s.caps = models.Default()
	}
	if s.prompts == nil {
		s.prompts = promptmgr.New()
	}
	if s.transport == nil {
		s.transport = transport.NewHTTP(transport.WithLogger(s.logger()))
	}
	if hc, ok := s.transport.(provider.HeaderCarrier); ok {
		hc.SetExtraHeaders(s.Headers())
	}

	s.state = provider.StateReady
	return nil
}

// requestPayload is the Ollama chat wire request.
type requestPayload struct {
	Model    string                  `json:"model"`
	Messages []graphtran.ChatMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
	Format   string                  `json:"format,omitempty"`
	Options  map[string]any          `json:"options,omitempty"`
}

// SendRequest formats the payload and hands it to the transport. Exactly one
// terminal callback per call.
func (s *Service) SendRequest(ctx context.Context, userContent, systemContent string, cb provider.Callback) {
	done := provider.NewCompletion(cb)

	if s.state != provider.StateReady {
		s.logger().Error("request rejected", slog.String("state", s.state.String()))
		done.ResolveError(notInitializedMsg)
		return
	}

	supportsSystemRole := s.caps.SupportsSystemRole(s.cfg.Model)
	finalContent := s.prompts.Prepare(userContent, systemContent, supportsSystemRole)

	req := requestPayload{
		Model:  s.cfg.Model,
		Stream: false,
		Format: "json",
		Options: map[string]any{
			"temperature": 0.0,
			"num_predict": maxOutputTokens,
		},
	}
	if supportsSystemRole {
		req.Messages = append(req.Messages, graphtran.ChatMessage{Role: graphtran.RoleSystem, Content: systemContent})
	}
	req.Messages = append(req.Messages, graphtran.ChatMessage{Role: graphtran.RoleUser, Content: finalContent})

	data, err := json.Marshal(req)
	if err != nil {
		s.logger().Error("payload build failed", slog.String("error", err.Error()))
		done.ResolveError(err.Error())
		return
	}

	s.logger().Info("sending request",
		slog.String("provider", "ollama"),
		slog.String("model", s.cfg.Model),
	)
	s.transport.Post(ctx, s.cfg.Endpoint, "", string(data), done)
}

// Headers returns the content-type header only; Ollama takes no credentials.
func (s *Service) Headers() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// EffectiveConfig returns the endpoint, an empty auth token, and whether the
// configured model supports system-role messages.
func (s *Service) EffectiveConfig() (endpoint, authToken string, supportsSystemRole bool) {
	caps := s.caps
	if caps == nil {
		caps = models.Default()
	}
	return s.cfg.Endpoint, "", caps.SupportsSystemRole(s.cfg.Model)
}

// State returns the lifecycle state, for diagnostics.
func (s *Service) State() provider.State { return s.state }

func (s *Service) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default()
}
