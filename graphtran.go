package graphtran

// Role is the chat message role on the wire (system or user).
type Role string

// Chat message roles.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ChatMessage is a single wire message. Value type, no identity.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ProviderConfig holds provider settings supplied once at Initialize time.
// Immutable after initialization; owned by exactly one adapter instance.
type ProviderConfig struct {
	Endpoint       string // chat-completion URL; adapters apply their default when empty
	APIKey         string // secret; never logged
	Model          string // provider-defined model identifier
	OrganizationID string // optional; sent as OpenAI-Organization when set
}

// CodeBlock is the generated code for one graph.
type CodeBlock struct {
	Declaration         string `json:"graphDeclaration"`
	Implementation      string `json:"graphImplementation"`
	ImplementationNotes string `json:"implementationNotes,omitempty"`
}

// GraphUnit is one translated graph as returned by the model.
type GraphUnit struct {
	Name  string    `json:"graph_name"`
	Type  string    `json:"graph_type"`
	Class string    `json:"graph_class"`
	Code  CodeBlock `json:"code"`
}

// TranslationResult is the normalized outcome of one translation request.
type TranslationResult struct {
	Graphs []GraphUnit `json:"graphs"`
}
