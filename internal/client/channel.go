package client

import (
	"context"
	"encoding/json"
)

// Channel is the bidirectional event transport to the server. Delivery,
// framing and reconnects belong to the implementation.
type Channel interface {
	Connect(ctx context.Context) error
	Emit(event string, args ...any) error
	// On registers fn for an inbound event. raw is nil for events without payload.
	On(event string, fn func(raw json.RawMessage))
	// OnStatus is called whenever the connection comes up or goes down.
	OnStatus(fn func(connected bool, reason string))
	Close() error
}
