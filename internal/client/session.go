package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/kiliankoe/drawguess/internal/protocol"
	"github.com/rs/zerolog"
)

var (
	ErrSessionActive = errors.New("session already connected")
	ErrSessionClosed = errors.New("session disposed")
)

type envelope struct {
	name    string
	raw     json.RawMessage
	local   game.Event
	relogin bool
}

// Session ties one Channel to one Store. Inbound events are queued by the
// transport callbacks and applied one at a time by a single loop goroutine.
type Session struct {
	ch      Channel
	store   *Store
	emitter *Emitter
	storage Storage
	decoder game.Decoder
	log     zerolog.Logger
	notice  func(error)
	inbox   chan envelope

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	disposed  bool
	connected bool // seen at least one connect

	persistedID string // only touched on the loop goroutine
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

func WithDecoder(d game.Decoder) Option { return func(s *Session) { s.decoder = d } }

// WithNoticeHandler receives capacity notices and other non-fatal errors the
// user should see.
func WithNoticeHandler(fn func(error)) Option { return func(s *Session) { s.notice = fn } }

func NewSession(ch Channel, storage Storage, opts ...Option) *Session {
	s := &Session{
		ch:      ch,
		storage: storage,
		log:     zerolog.Nop(),
		inbox:   make(chan envelope, 64),
	}
	for _, o := range opts {
		o(s)
	}
	s.store = NewStore(s.log)
	s.emitter = NewEmitter(ch, s.store, storage)
	if id, ok := storage.Get(KeyUserID); ok {
		s.persistedID = id
	}
	s.store.Subscribe(s.persistIdentity)
	return s
}

func (s *Session) Store() *Store { return s.store }

func (s *Session) Emitter() *Emitter { return s.emitter }

// Connect registers the event handlers, starts the loop and connects the
// channel. The loop runs until Dispose.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrSessionActive
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	for _, name := range protocol.ServerEvents {
		name := name
		s.ch.On(name, func(raw json.RawMessage) {
			s.enqueue(loopCtx, envelope{name: name, raw: raw})
		})
	}
	s.ch.OnStatus(func(up bool, reason string) { s.handleStatus(loopCtx, up, reason) })

	go s.loop(loopCtx, s.done)

	if err := s.ch.Connect(ctx); err != nil {
		s.stop()
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Dispose closes the channel and stops the loop. Safe to call twice.
func (s *Session) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.mu.Unlock()

	err := s.ch.Close()
	s.stop()
	return err
}

func (s *Session) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) enqueue(ctx context.Context, env envelope) {
	select {
	case s.inbox <- env:
	case <-ctx.Done():
	}
}

func (s *Session) handleStatus(ctx context.Context, up bool, reason string) {
	if !up {
		s.log.Warn().Str("reason", reason).Msg("channel disconnected")
		s.enqueue(ctx, envelope{local: game.ConnectionLost{}})
		return
	}
	s.mu.Lock()
	again := s.connected
	s.connected = true
	s.mu.Unlock()
	s.log.Info().Bool("reconnect", again).Msg("channel connected")
	if again {
		s.enqueue(ctx, envelope{relogin: true})
	}
}

func (s *Session) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-s.inbox:
			s.handle(env)
		}
	}
}

func (s *Session) handle(env envelope) {
	if env.relogin {
		name, ok := s.storage.Get(KeyUser)
		if !ok {
			return
		}
		if err := s.emitter.SubmitLogin(name); err != nil {
			s.log.Error().Err(err).Msg("relogin failed")
		}
		return
	}

	ev := env.local
	if ev == nil {
		var err error
		ev, err = s.decoder.Decode(env.name, env.raw)
		if err != nil {
			s.report(env.name, err)
			return
		}
	}
	if err := s.store.Apply(ev); err != nil {
		s.report(ev.Kind(), err)
	}
}

func (s *Session) report(event string, err error) {
	var capErr *game.CapacityError
	if errors.As(err, &capErr) {
		s.log.Warn().Str("event", event).Err(err).Msg("lobby full")
		if s.notice != nil {
			s.notice(err)
		}
		return
	}
	s.log.Error().Str("event", event).Err(err).Msg("discarded event")
}

func (s *Session) persistIdentity(st game.SessionState) {
	if st.LocalPlayerID == "" || st.LocalPlayerID == s.persistedID {
		return
	}
	if err := s.storage.Set(KeyUserID, st.LocalPlayerID); err != nil {
		s.log.Error().Err(err).Msg("failed to persist user id")
		return
	}
	s.persistedID = st.LocalPlayerID
}
