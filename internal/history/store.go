// Package history keeps the ordered, append-only message log of one chat session.
package history

import (
	"context"
	"time"
)

// Store is the conversation log. It is never empty once constructed: it starts
// with the greeting and Reset brings it back to that single message.
type Store interface {
	Append(ctx context.Context, msg Message) error
	Reset(ctx context.Context) error
	All(ctx context.Context) ([]Message, error)
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used to stamp the greeting.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
