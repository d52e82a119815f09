package graphtran

import (
	"encoding/json"
	"fmt"
	"strings"
)

// completionEnvelope is the subset of a provider response we consume. It
// covers both wire shapes in use: the OpenAI choices array and the native
// Ollama top-level message. The error field is decoded leniently: providers
// send either a bare string (the transport convention for local failures) or
// an object with a message.
type completionEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// ParseTranslation decodes a raw provider response body into a
// TranslationResult. Error-shaped bodies ({"error": ...}) return a
// *ResponseError; structurally invalid content returns ErrMalformedResponse.
func ParseTranslation(body string) (*TranslationResult, error) {
	var env completionEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(env.Error) > 0 && string(env.Error) != "null" {
		return nil, &ResponseError{Message: errorMessage(env.Error)}
	}
	content := env.Message.Content
	if len(env.Choices) > 0 {
		content = env.Choices[0].Message.Content
	}
	if content == "" {
		return nil, ErrEmptyResponse
	}

	content = stripFences(content)
	var result TranslationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	for i, g := range result.Graphs {
		if g.Name == "" || g.Type == "" || g.Class == "" {
			return nil, fmt.Errorf("%w: graph %d missing name, type, or class", ErrMalformedResponse, i)
		}
		if g.Code.Declaration == "" && g.Code.Implementation == "" {
			return nil, fmt.Errorf("%w: graph %d has no code", ErrMalformedResponse, i)
		}
	}
	return &result, nil
}

// errorMessage extracts a human-readable message from a raw error field that
// is either a JSON string or an object with a "message" property.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// stripFences removes a surrounding markdown code fence (``` or ```json) that
// some models emit around JSON content despite the structured-output schema.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
