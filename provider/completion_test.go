package provider

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCompletion_ResolveOnce(t *testing.T) {
	t.Parallel()
	var got []string
	c := NewCompletion(func(body string) { got = append(got, body) })

	assert.True(t, c.Resolve("first"))
	assert.False(t, c.Resolve("second"))
	assert.False(t, c.ResolveError("third"))

	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0])
	assert.True(t, c.Resolved())
}

func TestCompletion_ResolveError_Shape(t *testing.T) {
	t.Parallel()
	var got string
	c := NewCompletion(func(body string) { got = body })

	assert.True(t, c.ResolveError(`Service "x" not initialized`))

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &payload))
	assert.Equal(t, `Service "x" not initialized`, payload["error"])
}

func TestCompletion_NilCallback(t *testing.T) {
	t.Parallel()
	c := NewCompletion(nil)
	assert.True(t, c.Resolve("body"))
	assert.True(t, c.Resolved())
}

func TestCompletion_ConcurrentResolve(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	calls := 0
	c := NewCompletion(func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wins := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- c.Resolve("body")
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, calls)
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "faulted", StateFaulted.String())
	assert.Equal(t, "unknown", State(42).String())
}
