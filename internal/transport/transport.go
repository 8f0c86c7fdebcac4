package transport

import (
	"context"
)

// Handler processes a single keeper message. A non-nil error rejects the message;
// rejected messages are not redelivered.
type Handler func(ctx context.Context, msg KeeperMsg) error

// Publisher sends keeper messages to the relay transport.
type Publisher interface {
	Publish(ctx context.Context, msg KeeperMsg) error
}

// Consumer delivers keeper messages to a handler until the context is cancelled or
// the transport fails permanently. Delivery is at-least-once.
type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
}
