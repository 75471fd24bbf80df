package generator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrExhausted is returned by Mock once its scripted responses run out.
var ErrExhausted = errors.New("generator: mock responses exhausted")

// Mock is a lightweight in-memory Generator useful for tests and demos. It
// replays a scripted queue of responses in order, recording every prompt it
// receives. Safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	err       error
	delay     time.Duration
}

// NewMock constructs a mock that replays the given responses in order.
func NewMock(responses ...string) *Mock {
	return &Mock{responses: responses}
}

// AddResponse appends scripted responses to the replay queue.
func (m *Mock) AddResponse(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// FailWith makes every subsequent call return err instead of a response.
// Passing nil clears the failure.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes every call block for d (or until the context is cancelled)
// before responding, simulating generation latency.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Prompts returns a copy of every prompt received so far, in order.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Generate implements Generator by replaying the next scripted response.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	err := m.err
	delay := m.delay
	var resp string
	ok := false
	if err == nil && len(m.responses) > 0 {
		resp, m.responses = m.responses[0], m.responses[1:]
		ok = true
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrExhausted
	}
	return resp, nil
}
