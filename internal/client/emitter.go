package client

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/kiliankoe/drawguess/internal/protocol"
)

// Emitter turns local intents into outgoing events. Its checks only save a
// round trip; the server still decides.
type Emitter struct {
	ch      Channel
	store   *Store
	storage Storage

	// Color picks the display color sent on login.
	Color func() string
}

func NewEmitter(ch Channel, store *Store, storage Storage) *Emitter {
	return &Emitter{ch: ch, store: store, storage: storage, Color: RandomColor}
}

// RandomColor returns a uniformly random #rrggbb color.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

func (e *Emitter) SubmitLogin(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &game.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := e.storage.Set(KeyUser, name); err != nil {
		return fmt.Errorf("failed to persist name: %w", err)
	}
	return e.emit(protocol.EventNewUser, protocol.NewUserRequest{Username: name, Color: e.Color()})
}

// ToggleReadiness asks the server to flip the local player's readiness. The
// state changes once the server echoes userStatus back.
func (e *Emitter) ToggleReadiness() error {
	s := e.store.Snapshot()
	if s.LocalPlayerID == "" {
		return &game.PreconditionError{Action: "toggle readiness", Reason: "not logged in"}
	}
	status := protocol.StatusReady
	if p, ok := s.LocalPlayer(); ok && p.IsReady {
		status = protocol.StatusWaiting
	}
	return e.emit(protocol.EventUserStatus, protocol.UserStatus{StatusID: s.LocalPlayerID, StatusText: status})
}

// RequestStartGame always emits; whether enough players are ready is up to
// the server.
func (e *Emitter) RequestStartGame() error {
	return e.emit(protocol.EventStartGame)
}

func (e *Emitter) SubmitGuess(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &game.ValidationError{Field: "guess", Reason: "must not be empty"}
	}
	user, _ := e.storage.Get(KeyUser)
	return e.emit(protocol.EventGuess, protocol.Guess{Message: text, User: user})
}

// ClaimCorrectGuess asks the server to award a point to the local player.
// The server does not verify the claim.
func (e *Emitter) ClaimCorrectGuess() error {
	s := e.store.Snapshot()
	if s.LocalPlayerID == "" {
		return &game.PreconditionError{Action: "claim guess", Reason: "not logged in"}
	}
	return e.emit(protocol.EventUpdatePoints, s.LocalPlayerID)
}

func (e *Emitter) emit(event string, args ...any) error {
	if err := e.ch.Emit(event, args...); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}
