// Package openai implements provider.Service for OpenAI-compatible
// chat-completion endpoints. It formats the wire payload with the embedded
// translation schema and delegates the network call to an injected Transport.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/url"

	"github.com/graphtran/graphtran"
	"github.com/graphtran/graphtran/models"
	"github.com/graphtran/graphtran/promptmgr"
	"github.com/graphtran/graphtran/provider"
	"github.com/graphtran/graphtran/transport"
)

// DefaultEndpoint is used when the configuration supplies none.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// notInitializedMsg is the error payload message for requests outside the
// ready state.
const notInitializedMsg = "Service not initialized"

// Ensures Service implements provider.Service.
var _ provider.Service = (*Service)(nil)

// Service is the OpenAI provider adapter. Configure with New options, then
// Initialize exactly once before SendRequest. Configuration is immutable
// after a successful Initialize. Initialize is not safe to call concurrently
// with SendRequest.
type Service struct {
	cfg       graphtran.ProviderConfig
	state     provider.State
	caps      *models.Table
	prompts   *promptmgr.Manager
	transport provider.Transport
	log       *slog.Logger
	headers   map[string]string
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

// WithPromptManager sets the prompt manager used for merging and source
// material augmentation. Default is a plain promptmgr.New().
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

// Initialize applies cfg, wires defaults for missing collaborators, and
// computes provider headers. On failure the service transitions to faulted
// and stays unusable until a later Initialize succeeds; it never panics or
// aborts the host.
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

	s.headers = s.providerHeaders()
	if hc, ok := s.transport.(provider.HeaderCarrier); ok {
		hc.SetExtraHeaders(s.Headers())
	}

	s.state = provider.StateReady
	return nil
}

// SendRequest formats the payload and hands it to the transport. The callback
// receives exactly one terminal result: the provider response body, or an
// error-shaped payload when the service is not ready or the build fails.
func (s *Service) SendRequest(ctx context.Context, userContent, systemContent string, cb provider.Callback) {
	done := provider.NewCompletion(cb)

	if s.state != provider.StateReady {
		s.logger().Error("request rejected", slog.String("state", s.state.String()))
		done.ResolveError(notInitializedMsg)
		return
	}

	payload, err := s.buildPayload(userContent, systemContent)
	if err != nil {
		s.logger().Error("payload build failed", slog.String("error", err.Error()))
		done.ResolveError(err.Error())
		return
	}

	s.logger().Info("sending request",
		slog.String("provider", "openai"),
		slog.String("model", s.cfg.Model),
	)
	s.transport.Post(ctx, s.cfg.Endpoint, s.cfg.APIKey, payload, done)
}

// Headers returns the transport headers for this provider: bearer
// authorization, content type, and the organization header when configured.
// The returned map is a copy.
func (s *Service) Headers() map[string]string {
	return maps.Clone(s.headers)
}

// EffectiveConfig returns the endpoint, auth token, and whether the
// configured model supports system-role messages. Read-only accessor.
func (s *Service) EffectiveConfig() (endpoint, authToken string, supportsSystemRole bool) {
	caps := s.caps
	if caps == nil {
		caps = models.Default()
	}
	return s.cfg.Endpoint, s.cfg.APIKey, caps.SupportsSystemRole(s.cfg.Model)
}

// State returns the lifecycle state, for diagnostics.
func (s *Service) State() provider.State { return s.state }

func (s *Service) providerHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + s.cfg.APIKey,
		"Content-Type":  "application/json",
	}
	if s.cfg.OrganizationID != "" {
		headers["OpenAI-Organization"] = s.cfg.OrganizationID
	}
	return headers
}

// logger returns the configured logger or slog.Default, so logging never
// nil-panics on a zero Service.
func (s *Service) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default()
}
