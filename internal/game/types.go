package game

// MaxPlayers is the lobby capacity. A roster never holds more entries.
const MaxPlayers = 5

type Phase string

const (
	PhaseLobby     Phase = "LOBBY"
	PhaseCountdown Phase = "COUNTDOWN"
	PhaseRound     Phase = "ROUND"
	PhaseScoring   Phase = "SCORING"
)

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	IsReady bool   `json:"isReady"`
	Score   int    `json:"score"`
}

type ChatEntry struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// SessionState is the client's belief about the shared session.
type SessionState struct {
	Roster        []Player    `json:"roster"`
	LocalPlayerID string      `json:"localPlayerId,omitempty"`
	// LocalOrphaned is set when the local id is missing from the latest
	// roster snapshot.
	LocalOrphaned bool        `json:"localOrphaned,omitempty"`
	ReadyCount    int         `json:"readyCount"`
	Countdown     *int        `json:"countdown,omitempty"` // only while Phase == PhaseCountdown
	CurrentDrawer string      `json:"currentDrawer,omitempty"`
	CurrentWord   string      `json:"currentWord,omitempty"`
	Chat          []ChatEntry `json:"chat"`
	Phase         Phase       `json:"phase"`
}

func NewSessionState() SessionState {
	return SessionState{Phase: PhaseLobby}
}

// Clone returns a deep copy; the reducer never writes to its input.
func (s SessionState) Clone() SessionState {
	out := s
	if s.Roster != nil {
		out.Roster = make([]Player, len(s.Roster))
		copy(out.Roster, s.Roster)
	}
	if s.Chat != nil {
		out.Chat = make([]ChatEntry, len(s.Chat))
		copy(out.Chat, s.Chat)
	}
	if s.Countdown != nil {
		v := *s.Countdown
		out.Countdown = &v
	}
	return out
}

// Player looks up a roster entry by id.
func (s SessionState) Player(id string) (Player, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Roster[i], true
	}
	return Player{}, false
}

// LocalPlayer returns the roster entry of this client, if any.
func (s SessionState) LocalPlayer() (Player, bool) {
	if s.LocalPlayerID == "" {
		return Player{}, false
	}
	return s.Player(s.LocalPlayerID)
}

// IsLocalDrawer reports whether this client received the word to draw.
func (s SessionState) IsLocalDrawer() bool {
	return s.CurrentWord != ""
}

func (s SessionState) indexOf(id string) int {
	for i := range s.Roster {
		if s.Roster[i].ID == id {
			return i
		}
	}
	return -1
}

// resolve matches a player reference that may be an id or a display name.
// Names only match when exactly one player carries them.
func (s SessionState) resolve(ref string) int {
	if i := s.indexOf(ref); i >= 0 {
		return i
	}
	found := -1
	for i := range s.Roster {
		if s.Roster[i].Name == ref {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

func countReady(roster []Player) int {
	n := 0
	for _, p := range roster {
		if p.IsReady {
			n++
		}
	}
	return n
}
