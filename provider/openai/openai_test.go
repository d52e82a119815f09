package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/graphtran/graphtran"
	"github.com/graphtran/graphtran/promptmgr"
	"github.com/graphtran/graphtran/provider"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransport records the last Post call and resolves synchronously.
type fakeTransport struct {
	calls    int
	endpoint string
	token    string
	payload  string
	headers  map[string]string
	respond  string
}

func (f *fakeTransport) Post(_ context.Context, endpoint, authToken, payload string, done *provider.Completion) {
	f.calls++
	f.endpoint = endpoint
	f.token = authToken
	f.payload = payload
	body := f.respond
	if body == "" {
		body = `{"choices":[{"message":{"content":"{}"}}]}`
	}
	done.Resolve(body)
}

func (f *fakeTransport) SetExtraHeaders(headers map[string]string) { f.headers = headers }

func newReady(t *testing.T, cfg graphtran.ProviderConfig, opts ...Option) (*Service, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	opts = append([]Option{WithTransport(ft), WithLogger(discardLogger())}, opts...)
	svc := New(opts...)
	require.NoError(t, svc.Initialize(cfg))
	return svc, ft
}

func sendAndDecode(t *testing.T, svc *Service, ft *fakeTransport, user, system string) map[string]any {
	t.Helper()
	var bodies []string
	svc.SendRequest(context.Background(), user, system, func(body string) {
		bodies = append(bodies, body)
	})
	require.Len(t, bodies, 1, "callback must fire exactly once")
	require.Equal(t, 1, ft.calls)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(ft.payload), &payload))
	return payload
}

func TestSendRequest_SystemRoleModel(t *testing.T) {
	t.Parallel()
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "k"})

	payload := sendAndDecode(t, svc, ft, "translate this", "you are a translator")

	assert.Equal(t, "gpt-4o", payload["model"])
	assert.InDelta(t, 0.0, payload["temperature"], 1e-9)
	assert.InDelta(t, 8192, payload["max_tokens"], 1e-9)

	msgs, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	second := msgs[1].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "you are a translator", first["content"])
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "translate this", second["content"])

	rf, ok := payload["response_format"].(map[string]any)
	require.True(t, ok, "response_format must be present for gpt-4o")
	assert.Equal(t, "json_schema", rf["type"])
	schema := rf["json_schema"].(map[string]any)
	assert.Equal(t, "graph_translation", schema["name"])
}

func TestSendRequest_NoSystemRoleModel(t *testing.T) {
	t.Parallel()
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "o1-mini", APIKey: "k"})

	payload := sendAndDecode(t, svc, ft, "translate this", "you are a translator")

	msgs, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1, "no system message for o1-mini")
	only := msgs[0].(map[string]any)
	assert.Equal(t, "user", only["role"])
	content := only["content"].(string)
	assert.Contains(t, content, "you are a translator")
	assert.Contains(t, content, "translate this")

	assert.NotContains(t, payload, "temperature")
	assert.NotContains(t, payload, "max_tokens")
	assert.NotContains(t, payload, "response_format", "o1-mini is denylisted for structured output")
}

func TestSendRequest_UnknownModelKeepsSchema(t *testing.T) {
	t.Parallel()
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "some-future-model", APIKey: "k"})

	payload := sendAndDecode(t, svc, ft, "u", "s")
	assert.Contains(t, payload, "response_format")
	msgs := payload["messages"].([]any)
	assert.Len(t, msgs, 2)
}

func TestSendRequest_Uninitialized(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	svc := New(WithTransport(ft), WithLogger(discardLogger()))

	var bodies []string
	svc.SendRequest(context.Background(), "u", "s", func(body string) {
		bodies = append(bodies, body)
	})

	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"error": "Service not initialized"}`, bodies[0])
	assert.Equal(t, 0, ft.calls, "transport must not be contacted")
}

func TestInitialize_InvalidEndpointFaults(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	svc := New(WithTransport(ft), WithLogger(discardLogger()))

	err := svc.Initialize(graphtran.ProviderConfig{Endpoint: "not a url", Model: "gpt-4o"})
	require.ErrorIs(t, err, provider.ErrInvalidConfig)
	assert.Equal(t, provider.StateFaulted, svc.State())

	var bodies []string
	svc.SendRequest(context.Background(), "u", "s", func(body string) {
		bodies = append(bodies, body)
	})
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"error": "Service not initialized"}`, bodies[0])
	assert.Equal(t, 0, ft.calls)
}

func TestInitialize_MissingModelFaults(t *testing.T) {
	t.Parallel()
	svc := New(WithTransport(&fakeTransport{}), WithLogger(discardLogger()))
	err := svc.Initialize(graphtran.ProviderConfig{APIKey: "k"})
	require.ErrorIs(t, err, provider.ErrInvalidConfig)
	assert.Equal(t, provider.StateFaulted, svc.State())
}

func TestInitialize_DefaultEndpoint(t *testing.T) {
	t.Parallel()
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "k"})

	endpoint, token, supportsSystem := svc.EffectiveConfig()
	assert.Equal(t, DefaultEndpoint, endpoint)
	assert.Equal(t, "k", token)
	assert.True(t, supportsSystem)

	sendAndDecode(t, svc, ft, "u", "s")
	assert.Equal(t, DefaultEndpoint, ft.endpoint)
	assert.Equal(t, "k", ft.token)
}

func TestHeaders(t *testing.T) {
	t.Parallel()
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "secret", OrganizationID: "org-1"})

	headers := svc.Headers()
	assert.Equal(t, "Bearer secret", headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "org-1", headers["OpenAI-Organization"])

	// Transport received the same headers via the HeaderCarrier seam.
	assert.Equal(t, headers, ft.headers)

	// Returned map is a copy.
	headers["Authorization"] = "tampered"
	assert.Equal(t, "Bearer secret", svc.Headers()["Authorization"])
}

func TestHeaders_NoOrganization(t *testing.T) {
	t.Parallel()
	svc, _ := newReady(t, graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "k"})
	assert.NotContains(t, svc.Headers(), "OpenAI-Organization")
}

func TestSendRequest_SourceMaterialAugmentsUserContent(t *testing.T) {
	t.Parallel()
	pm := promptmgr.New(promptmgr.WithSourceProvider(staticSource{material: "class ADoor {};"}))
	svc, ft := newReady(t, graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "k"}, WithPromptManager(pm))

	payload := sendAndDecode(t, svc, ft, "translate this", "sys")
	msgs := payload["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "class ADoor {};")
	assert.Contains(t, user, "translate this")
	sys := msgs[0].(map[string]any)["content"].(string)
	assert.Equal(t, "sys", sys, "system message is never augmented")
}

type staticSource struct{ material string }

func (s staticSource) SourceMaterial() (string, bool) { return s.material, s.material != "" }

func TestSendRequest_ForwardsTransportBodyVerbatim(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{respond: `{"error": {"message": "upstream boom"}}`}
	svc := New(WithTransport(ft), WithLogger(discardLogger()))
	require.NoError(t, svc.Initialize(graphtran.ProviderConfig{Model: "gpt-4o", APIKey: "k"}))

	var got string
	svc.SendRequest(context.Background(), "u", "s", func(body string) { got = body })
	assert.Equal(t, `{"error": {"message": "upstream boom"}}`, got, "transport results pass through uninterpreted")
}
