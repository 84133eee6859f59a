package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/jonboulle/clockwork"
	"github.com/kiliankoe/drawguess/internal/config"
	"github.com/kiliankoe/drawguess/internal/lobby"
	"github.com/kiliankoe/drawguess/internal/protocol"
	"github.com/kiliankoe/drawguess/internal/words"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const room = "lobby"

// peer is the part of socketio.Conn the handlers need.
type peer interface {
	ID() string
	Emit(event string, v ...interface{})
}

type broadcaster interface {
	Broadcast(event string, args ...any)
}

type roomBroadcaster struct{ io *socketio.Server }

func (b roomBroadcaster) Broadcast(event string, args ...any) {
	b.io.BroadcastToRoom("/", room, event, args...)
}

// Server hosts a single lobby over socket.io.
type Server struct {
	Lobby *lobby.Lobby
	Words words.Provider
	Clock clockwork.Clock

	config   config.Config
	out      broadcaster
	mu       sync.Mutex
	members  map[string]peer // socketID -> conn
	limiters map[string]*rate.Limiter
	stop     context.CancelFunc
}

func New(l *lobby.Lobby, wp words.Provider, cfg config.Config) *Server {
	return &Server{
		Lobby:    l,
		Words:    wp,
		Clock:    clockwork.NewRealClock(),
		config:   cfg,
		members:  make(map[string]peer),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Mount attaches the Socket.IO server and the lobby API to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.out = roomBroadcaster{io}

	io.OnConnect("/", func(s socketio.Conn) error {
		s.Join(room)
		// runs before the connection's writer starts, so nothing may be emitted here
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})
	io.OnEvent("/", protocol.EventNewUser, func(s socketio.Conn, req protocol.NewUserRequest) {
		srv.handleNewUser(s, req)
	})
	io.OnEvent("/", protocol.EventUserStatus, func(s socketio.Conn, st protocol.UserStatus) {
		srv.handleUserStatus(s, st)
	})
	io.OnEvent("/", protocol.EventStartGame, func(s socketio.Conn) {
		srv.handleStartGame(s)
	})
	io.OnEvent("/", protocol.EventGuess, func(s socketio.Conn, g protocol.Guess) {
		srv.handleGuess(s, g)
	})
	io.OnEvent("/", protocol.EventUpdatePoints, func(s socketio.Conn, id string) {
		srv.handleUpdatePoints(s, id)
	})
	io.OnError("/", func(s socketio.Conn, e error) {
		sid := ""
		if s != nil {
			sid = s.ID()
		}
		log.Error().Str("sid", sid).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
		srv.handleDisconnect(s)
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io serve")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	r.GET("/lobby", srv.lobbyHandler)
	r.GET("/words", srv.wordsHandler)
	return io
}

func (srv *Server) lobbyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":         srv.Lobby.Code,
		"phase":        srv.Lobby.GetPhase(),
		"players":      srv.Lobby.Players(),
		"playersReady": srv.Lobby.ReadyCount(),
		"round":        srv.Lobby.CurrentRound(),
	})
}

func (srv *Server) wordsHandler(c *gin.Context) {
	list, err := srv.Words.Words(c.Request.Context(), srv.Lobby.Config.WordsPerRound)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, words.Payload(list))
}

func (srv *Server) handleNewUser(s peer, req protocol.NewUserRequest) {
	ready, err := srv.Lobby.Join(s.ID(), strings.TrimSpace(req.Username), req.Color)
	switch {
	case errors.Is(err, lobby.ErrLobbyFull):
		log.Warn().Str("sid", s.ID()).Str("username", req.Username).Msg("lobby full")
		s.Emit(protocol.EventLobbyFull, protocol.LobbyFull{Capacity: srv.Lobby.Config.Capacity})
		return
	case err != nil:
		log.Warn().Str("sid", s.ID()).Err(err).Msg("newUser rejected")
		return
	}
	srv.mu.Lock()
	srv.members[s.ID()] = s
	srv.mu.Unlock()
	log.Info().Str("sid", s.ID()).Str("username", req.Username).Msg("newUser")

	s.Emit(protocol.EventNewUser, protocol.NewUserAck{UserID: s.ID(), PlayersReady: ready})
	srv.broadcast(protocol.EventUpdateUserList, srv.userList())
}

func (srv *Server) handleUserStatus(s peer, st protocol.UserStatus) {
	ready, err := srv.Lobby.SetReady(s.ID(), st.StatusText == protocol.StatusReady)
	if err != nil {
		log.Warn().Str("sid", s.ID()).Err(err).Msg("userStatus rejected")
		return
	}
	log.Info().Str("sid", s.ID()).Str("status", st.StatusText).Int("ready", ready).Msg("userStatus")
	srv.broadcast(protocol.EventUserStatus, protocol.UserStatus{StatusID: s.ID(), StatusText: st.StatusText})
	srv.broadcast(protocol.EventPlayersReady, ready)
}

func (srv *Server) handleStartGame(s peer) {
	if err := srv.Lobby.StartCountdown(); err != nil {
		log.Warn().Str("sid", s.ID()).Err(err).Msg("startGame rejected")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv.mu.Lock()
	srv.stop = cancel
	srv.mu.Unlock()
	log.Info().Str("sid", s.ID()).Int("from", srv.Lobby.Config.CountdownSeconds).Msg("countdown started")

	go lobby.RunCountdown(ctx, srv.Clock, srv.Lobby.Config.CountdownSeconds,
		func(remaining int) { srv.broadcast(protocol.EventCountdownUpdate, remaining) },
		func() {
			srv.broadcast(protocol.EventCountdownFinished)
			srv.startRound(ctx)
		})
}

// startRound fetches words, picks a drawer and hands the words to the
// drawer only.
func (srv *Server) startRound(ctx context.Context) {
	list, err := srv.Words.Words(ctx, srv.Lobby.Config.WordsPerRound)
	if err != nil {
		log.Error().Err(err).Msg("no words for round")
		return
	}
	r, err := srv.Lobby.StartRound(list)
	if err != nil {
		log.Warn().Err(err).Msg("could not start round")
		return
	}
	log.Info().Int("round", r.Index).Str("drawer", r.DrawerID).Msg("round started")
	srv.broadcast(protocol.EventRandomUser, r.DrawerID)

	srv.mu.Lock()
	drawer := srv.members[r.DrawerID]
	srv.mu.Unlock()
	if drawer != nil {
		drawer.Emit(protocol.EventWords, words.Payload(r.Words))
	}
}

func (srv *Server) handleGuess(s peer, g protocol.Guess) {
	p, ok := srv.Lobby.Player(s.ID())
	if !ok {
		return
	}
	if !srv.limiter(s.ID()).Allow() {
		log.Debug().Str("sid", s.ID()).Msg("guess dropped by rate limit")
		return
	}
	msg := strings.TrimSpace(g.Message)
	if msg == "" {
		return
	}
	srv.broadcast(protocol.EventGuess, protocol.Guess{Message: msg, User: p.Name})
}

func (srv *Server) handleUpdatePoints(s peer, id string) {
	before := srv.Lobby.GetPhase()
	if err := srv.Lobby.AwardPoint(id); err != nil {
		log.Warn().Str("sid", s.ID()).Str("id", id).Err(err).Msg("updatePoints rejected")
		return
	}
	log.Info().Str("sid", s.ID()).Str("id", id).Msg("updatePoints")
	srv.broadcast(protocol.EventUpdatedUserPoints, srv.scores())

	if before != lobby.PhaseRound || srv.Lobby.GetPhase() != lobby.PhaseScoring {
		return
	}
	if srv.config.ExportEnabled {
		if err := lobby.ExportScores(srv.Lobby, srv.config.ExportFile); err != nil {
			log.Error().Err(err).Msg("failed to export scores")
		} else {
			log.Info().Str("file", srv.config.ExportFile).Msg("exported scores")
		}
	}
	srv.scheduleNextRound()
}

func (srv *Server) handleDisconnect(s peer) {
	srv.mu.Lock()
	delete(srv.members, s.ID())
	delete(srv.limiters, s.ID())
	srv.mu.Unlock()

	before := srv.Lobby.GetPhase()
	if !srv.Lobby.Leave(s.ID()) {
		return
	}
	srv.broadcast(protocol.EventUpdateUserList, srv.userList())
	srv.broadcast(protocol.EventPlayersReady, srv.Lobby.ReadyCount())

	switch after := srv.Lobby.GetPhase(); {
	case after == lobby.PhaseLobby && before != lobby.PhaseLobby:
		srv.cancelCountdown()
	case before == lobby.PhaseRound && after == lobby.PhaseScoring:
		// the drawer left
		srv.scheduleNextRound()
	}
}

func (srv *Server) scheduleNextRound() {
	srv.Clock.AfterFunc(srv.config.RoundBreak, func() {
		srv.startRound(context.Background())
	})
}

func (srv *Server) cancelCountdown() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.stop != nil {
		srv.stop()
		srv.stop = nil
	}
}

func (srv *Server) limiter(id string) *rate.Limiter {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	l := srv.limiters[id]
	if l == nil {
		per := srv.config.GuessesPerSecond
		if per <= 0 {
			per = 2
		}
		burst := int(per)
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(per), burst)
		srv.limiters[id] = l
	}
	return l
}

func (srv *Server) broadcast(event string, args ...any) {
	if srv.out == nil {
		return
	}
	srv.out.Broadcast(event, args...)
}

func (srv *Server) userList() []protocol.UserEntry {
	players := srv.Lobby.Players()
	out := make([]protocol.UserEntry, 0, len(players))
	for _, p := range players {
		out = append(out, protocol.UserEntry{ID: p.ID, Username: p.Name, Color: p.Color, IsReady: p.IsReady, Points: p.Points})
	}
	return out
}

func (srv *Server) scores() []protocol.UserPoints {
	players := srv.Lobby.Players()
	out := make([]protocol.UserPoints, 0, len(players))
	for _, p := range players {
		out = append(out, protocol.UserPoints{ID: p.ID, Username: p.Name, Points: p.Points})
	}
	return out
}
