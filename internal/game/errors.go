package game

import (
	"errors"
	"fmt"
)

var ErrNotConnected = errors.New("channel not connected")

// ValidationError reports empty or otherwise unusable user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PreconditionError reports an action attempted before the session allows it,
// usually before the server issued an identity.
type PreconditionError struct {
	Action string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}

// MalformedEventError reports an inbound payload that does not match the
// event contract. The event is discarded.
type MalformedEventError struct {
	Event  string
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s event: %s: %v", e.Event, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s event: %s", e.Event, e.Reason)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// CapacityError reports players turned away because the lobby is full.
type CapacityError struct {
	Capacity int
	Rejected []string
	// Err is set when the notice payload could not be decoded and Capacity
	// fell back to MaxPlayers.
	Err error
}

func (e *CapacityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lobby full (%d players), rejected %d: %v", e.Capacity, len(e.Rejected), e.Err)
	}
	return fmt.Sprintf("lobby full (%d players), rejected %d", e.Capacity, len(e.Rejected))
}

func (e *CapacityError) Unwrap() error { return e.Err }

func IsMalformed(err error) bool {
	var me *MalformedEventError
	return errors.As(err, &me)
}

func malformed(event, reason string) error {
	return &MalformedEventError{Event: event, Reason: reason}
}
