package client

import (
	"context"
	"encoding/json"
	"sync"
)

type emitted struct {
	event string
	args  []any
}

type fakeChannel struct {
	mu         sync.Mutex
	handlers   map[string]func(json.RawMessage)
	status     func(bool, string)
	emitted    []emitted
	emitErr    error
	connectErr error
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]func(json.RawMessage))}
}

func (f *fakeChannel) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.setStatus(true, "")
	return nil
}

func (f *fakeChannel) Emit(event string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emitErr != nil {
		return f.emitErr
	}
	f.emitted = append(f.emitted, emitted{event: event, args: args})
	return nil
}

func (f *fakeChannel) On(event string, fn func(raw json.RawMessage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = fn
}

func (f *fakeChannel) OnStatus(fn func(bool, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = fn
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) deliver(event, raw string) {
	f.mu.Lock()
	h := f.handlers[event]
	f.mu.Unlock()
	if h == nil {
		panic("no handler for " + event)
	}
	var payload json.RawMessage
	if raw != "" {
		payload = json.RawMessage(raw)
	}
	h(payload)
}

func (f *fakeChannel) setStatus(up bool, reason string) {
	f.mu.Lock()
	fn := f.status
	f.mu.Unlock()
	if fn != nil {
		fn(up, reason)
	}
}

func (f *fakeChannel) sent() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emitted, len(f.emitted))
	copy(out, f.emitted)
	return out
}
