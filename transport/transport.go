// Package transport provides the HTTP collaborator used by provider
// adapters. It posts a serialized payload to a chat-completion endpoint and
// resolves the request's Completion with the response body, or with an
// error-shaped payload when the call itself fails. Provider-level errors
// (non-2xx with a JSON body) pass through verbatim; interpreting them is the
// caller's concern.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/graphtran/graphtran/provider"
)

// maxBodySize limits response body reads (8 MiB); generated code for one
// request fits well within it.
const maxBodySize = 8 << 20

// defaultTimeout bounds one completion round trip. Large graph translations
// routinely run past a minute.
const defaultTimeout = 120 * time.Second

// Ensures HTTP implements the transport contract and the header seam.
var (
	_ provider.Transport     = (*HTTP)(nil)
	_ provider.HeaderCarrier = (*HTTP)(nil)
)

// HTTP is the standard transport. Construct with NewHTTP; configure extra
// headers before the first Post (adapters do this during Initialize).
type HTTP struct {
	client  *http.Client
	log     *slog.Logger
	headers map[string]string
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithClient sets the HTTP client. Default has a 120s timeout. If c is nil,
// the default client is left unchanged.
func WithClient(c *http.Client) Option {
	return func(t *HTTP) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the diagnostic logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(t *HTTP) {
		if log != nil {
			t.log = log
		}
	}
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts ...Option) *HTTP {
	t := &HTTP{
		client: &http.Client{Timeout: defaultTimeout},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetExtraHeaders replaces the extra header set sent with every request.
// Not safe to call concurrently with Post; adapters call it once at
// Initialize time.
func (t *HTTP) SetExtraHeaders(headers map[string]string) {
	t.headers = headers
}

// Post sends payload to endpoint asynchronously and resolves done exactly
// once. authToken is sent as a bearer Authorization header when non-empty and
// no explicit Authorization header was configured.
func (t *HTTP) Post(ctx context.Context, endpoint, authToken, payload string, done *provider.Completion) {
	go t.post(ctx, endpoint, authToken, payload, done)
}

func (t *HTTP) post(ctx context.Context, endpoint, authToken, payload string, done *provider.Completion) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload))
	if err != nil {
		t.log.Error("transport: build request", slog.String("error", err.Error()))
		done.ResolveError(err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error("transport: request failed", slog.String("error", err.Error()))
		done.ResolveError(err.Error())
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		t.log.Error("transport: read body", slog.String("error", err.Error()))
		done.ResolveError(err.Error())
		return
	}

	t.log.Debug("transport: response received",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)
	done.Resolve(string(body))
}
