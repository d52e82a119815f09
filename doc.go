// Package graphtran translates visual-scripting graph dumps into generated
// source code by delegating to LLM chat-completion providers. It holds the
// normalized data model shared by all provider adapters: chat messages,
// provider configuration, the versioned structured-output schema, and the
// typed translation result parsed back from provider responses.
package graphtran
