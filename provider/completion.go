package provider

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Completion is a consumed-on-resolve handle around a Callback. It guarantees
// the exactly-once terminal notification contract: the first Resolve or
// ResolveError wins, later calls are no-ops. Safe for concurrent use.
type Completion struct {
	once     sync.Once
	resolved atomic.Bool
	cb       Callback
}

// NewCompletion wraps cb. A nil cb yields a completion that resolves into
// nothing, so adapters never have to nil-check the caller's callback.
func NewCompletion(cb Callback) *Completion {
	return &Completion{cb: cb}
}

// Resolve delivers body to the callback. Returns true if this call resolved
// the completion, false if it was already resolved.
func (c *Completion) Resolve(body string) bool {
	won := false
	c.once.Do(func() {
		won = true
		c.resolved.Store(true)
		if c.cb != nil {
			c.cb(body)
		}
	})
	return won
}

// ResolveError delivers an error-shaped payload ({"error": msg}) to the
// callback, following the convention that request errors travel the same
// channel as successful responses.
func (c *Completion) ResolveError(msg string) bool {
	payload, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		// map[string]string cannot fail to marshal; guard for completeness.
		payload = []byte(`{"error": "internal error"}`)
	}
	return c.Resolve(string(payload))
}

// Resolved reports whether the completion has been resolved.
func (c *Completion) Resolved() bool {
	return c.resolved.Load()
}
