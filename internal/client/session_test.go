package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiliankoe/drawguess/internal/game"
	"github.com/kiliankoe/drawguess/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func connectSession(t *testing.T, opts ...Option) (*Session, *fakeChannel, *MemoryStorage) {
	t.Helper()
	ch := newFakeChannel()
	storage := NewMemoryStorage()
	s := NewSession(ch, storage, opts...)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Dispose() })
	return s, ch, storage
}

func TestSession_AppliesEventsInOrder(t *testing.T) {
	s, ch, storage := connectSession(t)

	ch.deliver(protocol.EventNewUser, `{"userId":"p1","playersReady":0}`)
	ch.deliver(protocol.EventUpdateUserList, `[{"id":"p1","username":"Ann","color":"#fff","isReady":false}]`)
	ch.deliver(protocol.EventUserStatus, `{"statusId":"p1","statusText":"ready"}`)

	require.Eventually(t, func() bool { return s.Store().Snapshot().ReadyCount == 1 }, waitFor, 5*time.Millisecond)
	snap := s.Store().Snapshot()
	assert.Equal(t, "p1", snap.LocalPlayerID)
	require.Len(t, snap.Roster, 1)
	assert.True(t, snap.Roster[0].IsReady)

	id, ok := storage.Get(KeyUserID)
	assert.True(t, ok)
	assert.Equal(t, "p1", id)
}

func TestSession_CountdownToRound(t *testing.T) {
	s, ch, _ := connectSession(t)
	ch.deliver(protocol.EventCountdownUpdate, `5`)
	ch.deliver(protocol.EventCountdownUpdate, `3`)
	ch.deliver(protocol.EventCountdownFinished, ``)

	require.Eventually(t, func() bool { return s.Store().Snapshot().Phase == game.PhaseRound }, waitFor, 5*time.Millisecond)
	assert.Nil(t, s.Store().Snapshot().Countdown)
}

func TestSession_DiscardsMalformedEvents(t *testing.T) {
	s, ch, _ := connectSession(t)
	ch.deliver(protocol.EventPlayersReady, `"lots"`)
	ch.deliver(protocol.EventPlayersReady, `3`)

	require.Eventually(t, func() bool { return s.Store().Snapshot().ReadyCount == 3 }, waitFor, 5*time.Millisecond)
}

func TestSession_LobbyFullNotice(t *testing.T) {
	notices := make(chan error, 1)
	_, ch, _ := connectSession(t, WithNoticeHandler(func(err error) { notices <- err }))
	ch.deliver(protocol.EventLobbyFull, `{"capacity":5}`)

	select {
	case err := <-notices:
		var capErr *game.CapacityError
		assert.True(t, errors.As(err, &capErr))
	case <-time.After(waitFor):
		t.Fatal("expected a capacity notice")
	}
}

func TestSession_ReconnectResubmitsLogin(t *testing.T) {
	s, ch, _ := connectSession(t)
	require.NoError(t, s.Emitter().SubmitLogin("Ann"))
	ch.deliver(protocol.EventNewUser, `{"userId":"old","playersReady":0}`)
	require.Eventually(t, func() bool { return s.Store().Snapshot().LocalPlayerID == "old" }, waitFor, 5*time.Millisecond)

	ch.setStatus(false, "transport close")
	ch.setStatus(true, "")

	require.Eventually(t, func() bool { return len(ch.sent()) == 2 }, waitFor, 5*time.Millisecond)
	relogin := ch.sent()[1]
	assert.Equal(t, protocol.EventNewUser, relogin.event)
	req, ok := relogin.args[0].(protocol.NewUserRequest)
	require.True(t, ok)
	assert.Equal(t, "Ann", req.Username)

	ch.deliver(protocol.EventNewUser, `{"userId":"new","playersReady":0}`)
	require.Eventually(t, func() bool { return s.Store().Snapshot().LocalPlayerID == "new" }, waitFor, 5*time.Millisecond)
}

func TestSession_ConnectErrors(t *testing.T) {
	ch := newFakeChannel()
	ch.connectErr = errors.New("refused")
	s := NewSession(ch, NewMemoryStorage())
	require.Error(t, s.Connect(context.Background()))

	s2, _, _ := connectSession(t)
	assert.ErrorIs(t, s2.Connect(context.Background()), ErrSessionActive)
}

func TestSession_Dispose(t *testing.T) {
	ch := newFakeChannel()
	s := NewSession(ch, NewMemoryStorage())
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Dispose())
	require.NoError(t, s.Dispose())
	assert.True(t, ch.closed)
	assert.ErrorIs(t, s.Connect(context.Background()), ErrSessionClosed)
}
