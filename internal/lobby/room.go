package lobby

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLobbyFull       = errors.New("lobby full")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPhase    = errors.New("invalid phase for action")
	ErrNotEnoughReady  = errors.New("not enough players ready")
	ErrEmptyName       = errors.New("empty name")
)

// Lobby is the authoritative state of one game room.
type Lobby struct {
	Code      string
	CreatedAt time.Time
	Config    SessionConfig

	players []*Player // join order
	byID    map[string]*Player

	Phase   Phase
	RoundIx int
	Rounds  []*Round

	mu sync.Mutex
}

func NewLobby(cfg SessionConfig) *Lobby {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.RequiredReady <= 0 || cfg.RequiredReady > cfg.Capacity {
		cfg.RequiredReady = cfg.Capacity
	}
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = def.CountdownSeconds
	}
	if cfg.WordsPerRound <= 0 {
		cfg.WordsPerRound = def.WordsPerRound
	}
	return &Lobby{
		Code:      randomCode(5),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		byID:      make(map[string]*Player),
		Phase:     PhaseLobby,
	}
}

// Join adds a player under the given connection id. Joining again with the
// same id updates name and color.
func (l *Lobby) Join(id, name, color string) (readyCount int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name == "" {
		return 0, ErrEmptyName
	}
	if p := l.byID[id]; p != nil {
		p.Name = name
		p.Color = color
		return l.readyCount(), nil
	}
	if len(l.players) >= l.Config.Capacity {
		return 0, ErrLobbyFull
	}
	p := &Player{ID: id, Name: name, Color: color, JoinedAt: time.Now().UTC()}
	l.players = append(l.players, p)
	l.byID[id] = p
	return l.readyCount(), nil
}

// Leave removes a player and reports whether it was present. A drawer who
// leaves mid round sends the lobby back to scoring.
func (l *Lobby) Leave(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byID[id] == nil {
		return false
	}
	delete(l.byID, id)
	for i, p := range l.players {
		if p.ID == id {
			l.players = append(l.players[:i], l.players[i+1:]...)
			break
		}
	}
	if r := l.current(); r != nil && r.DrawerID == id && l.Phase == PhaseRound {
		l.Phase = PhaseScoring
		r.Status = PhaseScoring
	}
	if len(l.players) == 0 {
		l.Phase = PhaseLobby
	}
	return true
}

func (l *Lobby) SetReady(id string, ready bool) (readyCount int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.byID[id]
	if p == nil {
		return 0, ErrPlayerNotFound
	}
	p.IsReady = ready
	return l.readyCount(), nil
}

func (l *Lobby) ReadyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readyCount()
}

// StartCountdown moves the lobby into the countdown once enough players
// are ready.
func (l *Lobby) StartCountdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Phase != PhaseLobby {
		return ErrInvalidPhase
	}
	if l.readyCount() < l.Config.RequiredReady {
		return ErrNotEnoughReady
	}
	l.Phase = PhaseCountdown
	return nil
}

// StartRound picks the next drawer and opens a round. Valid right after the
// countdown or after a round was scored.
func (l *Lobby) StartRound(words []string) (*Round, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Phase != PhaseCountdown && l.Phase != PhaseScoring {
		return nil, ErrInvalidPhase
	}
	if len(l.players) == 0 {
		return nil, ErrPlayerNotFound
	}
	l.RoundIx++
	drawer := l.players[rand.Intn(len(l.players))]
	if prev := l.previous(); prev != nil && len(l.players) > 1 {
		// rotate so nobody draws twice in a row
		for drawer.ID == prev.DrawerID {
			drawer = l.players[rand.Intn(len(l.players))]
		}
	}
	r := &Round{ID: uuid.NewString(), Index: l.RoundIx, DrawerID: drawer.ID, Words: words, Status: PhaseRound}
	l.Rounds = append(l.Rounds, r)
	l.Phase = PhaseRound
	return r, nil
}

// AwardPoint credits one point to a player and closes the round. Claims are
// not verified.
func (l *Lobby) AwardPoint(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.byID[id]
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Points++
	if l.Phase == PhaseRound {
		l.Phase = PhaseScoring
		if r := l.current(); r != nil {
			r.Status = PhaseScoring
		}
	}
	return nil
}

func (l *Lobby) Players() []Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Player, 0, len(l.players))
	for _, p := range l.players {
		out = append(out, *p)
	}
	return out
}

func (l *Lobby) Player(id string) (Player, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.byID[id]; p != nil {
		return *p, true
	}
	return Player{}, false
}

func (l *Lobby) GetPhase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Phase
}

func (l *Lobby) CurrentRound() *Round {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.current()
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (l *Lobby) readyCount() int {
	n := 0
	for _, p := range l.players {
		if p.IsReady {
			n++
		}
	}
	return n
}

func (l *Lobby) current() *Round {
	if l.RoundIx == 0 || len(l.Rounds) < l.RoundIx {
		return nil
	}
	return l.Rounds[l.RoundIx-1]
}

func (l *Lobby) previous() *Round {
	if l.RoundIx < 2 || len(l.Rounds) < l.RoundIx-1 {
		return nil
	}
	return l.Rounds[l.RoundIx-2]
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
