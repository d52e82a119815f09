package openai

import (
	"encoding/json"
	"fmt"

	"github.com/graphtran/graphtran"
)

// Deterministic sampling parameters applied to system-role-capable models.
// The tool translates graphs to code; reproducibility beats diversity.
const (
	deterministicTemperature = 0.0
	maxOutputTokens          = 8192
)

// requestPayload is the chat-completion wire request. Built fresh per
// request, serialized, and discarded; never mutated after construction.
type requestPayload struct {
	Model          string                  `json:"model"`
	ResponseFormat *responseFormat         `json:"response_format,omitempty"`
	Temperature    *float64                `json:"temperature,omitempty"`
	MaxTokens      *int                    `json:"max_tokens,omitempty"`
	Messages       []graphtran.ChatMessage `json:"messages"`
}

// responseFormat carries the structured-output constraint.
type responseFormat struct {
	Type       string                      `json:"type"`
	JSONSchema *graphtran.SchemaDefinition `json:"json_schema"`
}

// buildPayload constructs the wire payload from normalized inputs:
//
//  1. Look up system-role support for the configured model.
//  2. Resolve the final user content (merge, then source material).
//  3. Attach the parsed translation schema unless the model is denylisted
//     for structured output; a schema parse failure fails the whole build.
//  4. Pin temperature and max_tokens for system-role-capable models.
func (s *Service) buildPayload(userContent, systemContent string) (string, error) {
	supportsSystemRole := s.caps.SupportsSystemRole(s.cfg.Model)
	finalContent := s.prompts.Prepare(userContent, systemContent, supportsSystemRole)

	req := requestPayload{Model: s.cfg.Model}

	if s.caps.SupportsStructuredOutput(s.cfg.Model) {
		schema, err := graphtran.TranslationSchema()
		if err != nil {
			return "", err
		}
		req.ResponseFormat = &responseFormat{Type: "json_schema", JSONSchema: schema}
	}

	if supportsSystemRole {
		temp := deterministicTemperature
		tokens := maxOutputTokens
		req.Temperature = &temp
		req.MaxTokens = &tokens
		req.Messages = append(req.Messages, graphtran.ChatMessage{
			Role:    graphtran.RoleSystem,
			Content: systemContent,
		})
	}
	req.Messages = append(req.Messages, graphtran.ChatMessage{
		Role:    graphtran.RoleUser,
		Content: finalContent,
	})

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("openai: marshal payload: %w", err)
	}
	return string(data), nil
}
