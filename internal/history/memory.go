package history

import (
	"context"
	"sync"
)

// Memory is a slice-backed Store.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	opts     options
}

var _ Store = (*Memory)(nil)

// NewMemory returns a store seeded with the greeting.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{opts: buildOptions(opts)}
	m.messages = []Message{Assistant(Greeting, m.opts.now())}
	return m
}

// Append adds msg at the end of the log.
func (m *Memory) Append(_ context.Context, msg Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	return nil
}

// Reset replaces the log with the greeting.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	m.messages = []Message{Assistant(Greeting, m.opts.now())}
	m.mu.Unlock()
	return nil
}

// All returns a copy of the log, oldest first.
func (m *Memory) All(_ context.Context) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

func (m *Memory) Close() error { return nil }
