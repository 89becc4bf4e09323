// Package mq carries the notification events from the API server to
// the mail worker. Both ends speak through a small broker-agnostic
// surface so the broker can be swapped per deployment.
package mq

import "context"

// Message is a delivered payload. Attributes carry the event kind so
// consumers can route without decoding Data.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes one message. A non-nil error nacks the message so
// the broker redelivers it.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each broker.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Queue is the broker-agnostic handle the rest of the app holds.
type Queue struct {
	backend Backend
}

// New wraps the given backend.
func New(backend Backend) *Queue {
	return &Queue{backend: backend}
}

// Publish sends data to the named channel and returns the broker's
// message id.
func (q *Queue) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return q.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes the named channel until ctx is cancelled.
func (q *Queue) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return q.backend.Subscribe(ctx, channel, handler)
}

func (q *Queue) Close() error {
	return q.backend.Close()
}
