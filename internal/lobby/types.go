package lobby

import (
	"time"
)

type Phase string

const (
	PhaseLobby     Phase = "Lobby"
	PhaseCountdown Phase = "Countdown"
	PhaseRound     Phase = "Round"
	PhaseScoring   Phase = "Scoring"
)

type SessionConfig struct {
	Capacity         int `json:"capacity"`
	RequiredReady    int `json:"requiredReady"`
	CountdownSeconds int `json:"countdownSeconds"`
	WordsPerRound    int `json:"wordsPerRound"`
}

func DefaultConfig() SessionConfig {
	return SessionConfig{Capacity: 5, RequiredReady: 5, CountdownSeconds: 5, WordsPerRound: 3}
}

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"username"`
	Color    string    `json:"color"`
	IsReady  bool      `json:"isReady"`
	Points   int       `json:"points"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Round struct {
	ID       string   `json:"id"`
	Index    int      `json:"index"`
	DrawerID string   `json:"drawerId"`
	Words    []string `json:"words"`
	Status   Phase    `json:"status"`
}
