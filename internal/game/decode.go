package game

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strings"

	"github.com/kiliankoe/drawguess/internal/protocol"
)

// Decoder turns raw server payloads into events.
type Decoder struct {
	// Pick chooses one of n candidate words. Defaults to math/rand.
	Pick func(n int) int
}

// Decode maps one inbound socket event to an Event. Shape mismatches come
// back as *MalformedEventError. A lobbyFull notice comes back as
// *CapacityError with a nil event.
func (d Decoder) Decode(name string, raw []byte) (Event, error) {
	switch name {
	case protocol.EventNewUser:
		var ack protocol.NewUserAck
		if err := unmarshal(name, raw, &ack); err != nil {
			return nil, err
		}
		return PlayerJoinedAck{PlayerID: ack.UserID, ReadyCount: ack.PlayersReady}, nil

	case protocol.EventUpdateUserList:
		var users []protocol.UserEntry
		if err := unmarshal(name, raw, &users); err != nil {
			return nil, err
		}
		players := make([]Player, 0, len(users))
		for _, u := range users {
			players = append(players, Player{ID: u.ID, Name: u.Username, Color: u.Color, IsReady: u.IsReady, Score: u.Points})
		}
		return RosterSnapshot{Players: players}, nil

	case protocol.EventUserStatus:
		var st protocol.UserStatus
		if err := unmarshal(name, raw, &st); err != nil {
			return nil, err
		}
		if st.StatusID == "" {
			return nil, malformed(name, "missing statusId")
		}
		switch st.StatusText {
		case protocol.StatusReady:
			return ReadinessChanged{PlayerID: st.StatusID, Ready: true}, nil
		case protocol.StatusWaiting:
			return ReadinessChanged{PlayerID: st.StatusID, Ready: false}, nil
		default:
			return nil, malformed(name, "unknown statusText "+st.StatusText)
		}

	case protocol.EventPlayersReady:
		var n int
		if err := unmarshal(name, raw, &n); err != nil {
			return nil, err
		}
		return ReadyCountBroadcast{Count: n}, nil

	case protocol.EventCountdownUpdate:
		var v int
		if err := unmarshal(name, raw, &v); err != nil {
			return nil, err
		}
		return CountdownTick{Value: v}, nil

	case protocol.EventCountdownFinished:
		return CountdownFinished{}, nil

	case protocol.EventRandomUser:
		ref, err := decodeUserRef(name, raw)
		if err != nil {
			return nil, err
		}
		return DrawerAssigned{PlayerRef: ref}, nil

	case protocol.EventWords:
		var lists []protocol.WordList
		if err := unmarshal(name, raw, &lists); err != nil {
			return nil, err
		}
		if len(lists) == 0 || len(lists[0].Words) == 0 {
			return nil, malformed(name, "no words")
		}
		words := lists[0].Words
		return WordAssigned{Word: words[d.pick(len(words))].Word}, nil

	case protocol.EventGuess:
		var g protocol.Guess
		if err := unmarshal(name, raw, &g); err != nil {
			return nil, err
		}
		return GuessReceived{Author: g.User, Text: g.Message}, nil

	case protocol.EventUpdatedUserPoints:
		var pts []protocol.UserPoints
		if err := unmarshal(name, raw, &pts); err != nil {
			return nil, err
		}
		scores := make([]PlayerScore, 0, len(pts))
		for _, p := range pts {
			scores = append(scores, PlayerScore{PlayerID: p.ID, Name: p.Username, Points: p.Points})
		}
		return ScoreboardUpdated{Scores: scores}, nil

	case protocol.EventLobbyFull:
		var lf protocol.LobbyFull
		capErr := &CapacityError{Capacity: MaxPlayers}
		// the notice may come without a payload
		if t := bytes.TrimSpace(raw); len(t) > 0 && !bytes.Equal(t, []byte("null")) {
			if err := unmarshal(name, raw, &lf); err != nil {
				capErr.Err = err
			}
		}
		if lf.Capacity > 0 {
			capErr.Capacity = lf.Capacity
		}
		return nil, capErr
	}
	return nil, malformed(name, "unknown event")
}

func (d Decoder) pick(n int) int {
	if d.Pick == nil {
		return rand.Intn(n)
	}
	i := d.Pick(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

// decodeUserRef accepts a bare string or an object carrying id/username.
func decodeUserRef(name string, raw []byte) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", malformed(name, "empty user reference")
		}
		return s, nil
	}
	var obj struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := unmarshal(name, raw, &obj); err != nil {
		return "", err
	}
	if obj.ID != "" {
		return obj.ID, nil
	}
	if obj.Username != "" {
		return obj.Username, nil
	}
	return "", malformed(name, "empty user reference")
}

func unmarshal(name string, raw []byte, v any) error {
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return malformed(name, "missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &MalformedEventError{Event: name, Reason: "decode payload", Err: err}
	}
	return nil
}
