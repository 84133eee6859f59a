package game

import "fmt"

// Reduce computes the state that follows ev. The input is never modified.
//
// A *MalformedEventError means ev was rejected and the input is returned as
// is. A *CapacityError is informational: the returned state holds whatever
// part of the event fit into the lobby and should still be committed.
func Reduce(s SessionState, ev Event) (SessionState, error) {
	switch e := ev.(type) {
	case RosterSnapshot:
		return reduceSnapshot(s, e)
	case PlayerJoined:
		return reduceJoined(s, e)
	case PlayerJoinedAck:
		if s.LocalPlayerID != "" {
			return s, nil
		}
		if e.PlayerID == "" {
			return s, malformed(e.Kind(), "empty player id")
		}
		if e.ReadyCount < 0 {
			return s, malformed(e.Kind(), "negative ready count")
		}
		next := s.Clone()
		next.LocalPlayerID = e.PlayerID
		next.ReadyCount = e.ReadyCount
		next.LocalOrphaned = false
		return next, nil
	case ReadinessChanged:
		i := s.indexOf(e.PlayerID)
		if i < 0 {
			return s, nil
		}
		next := s.Clone()
		next.Roster[i].IsReady = e.Ready
		next.ReadyCount = countReady(next.Roster)
		return next, nil
	case ReadyCountBroadcast:
		if e.Count < 0 {
			return s, malformed(e.Kind(), "negative ready count")
		}
		next := s.Clone()
		next.ReadyCount = e.Count
		return next, nil
	case CountdownTick:
		if e.Value < 0 {
			return s, malformed(e.Kind(), "negative countdown value")
		}
		if s.Phase != PhaseLobby && s.Phase != PhaseCountdown {
			return s, nil
		}
		next := s.Clone()
		v := e.Value
		next.Phase = PhaseCountdown
		next.Countdown = &v
		return next, nil
	case CountdownFinished:
		if s.Phase != PhaseCountdown {
			return s, nil
		}
		next := s.Clone()
		next.Countdown = nil
		next.Phase = PhaseRound
		return next, nil
	case DrawerAssigned:
		if e.PlayerRef == "" {
			return s, malformed(e.Kind(), "empty drawer reference")
		}
		i := s.resolve(e.PlayerRef)
		if i < 0 {
			return s, nil
		}
		next := s.Clone()
		next.CurrentDrawer = next.Roster[i].ID
		if next.CurrentDrawer != s.CurrentDrawer {
			// the word belongs to the previous drawer
			next.CurrentWord = ""
		}
		if next.Phase == PhaseScoring {
			// next round
			next.Phase = PhaseRound
			next.CurrentWord = ""
		}
		return next, nil
	case WordAssigned:
		if e.Word == "" {
			return s, malformed(e.Kind(), "empty word")
		}
		next := s.Clone()
		next.CurrentWord = e.Word
		return next, nil
	case GuessReceived:
		next := s.Clone()
		next.Chat = append(next.Chat, ChatEntry{Author: e.Author, Text: e.Text})
		return next, nil
	case ScoreboardUpdated:
		return reduceScores(s, e)
	case ConnectionLost:
		next := s.Clone()
		next.LocalPlayerID = ""
		next.LocalOrphaned = false
		return next, nil
	case nil:
		return s, malformed("unknown", "nil event")
	default:
		return s, malformed(ev.Kind(), fmt.Sprintf("unsupported event type %T", ev))
	}
}

func reduceSnapshot(s SessionState, e RosterSnapshot) (SessionState, error) {
	seen := make(map[string]bool, len(e.Players))
	for _, p := range e.Players {
		if p.ID == "" {
			return s, malformed(e.Kind(), "player without id")
		}
		if seen[p.ID] {
			return s, malformed(e.Kind(), "duplicate player id "+p.ID)
		}
		seen[p.ID] = true
	}

	var capErr error
	players := e.Players
	if len(players) > MaxPlayers {
		rejected := make([]string, 0, len(players)-MaxPlayers)
		for _, p := range players[MaxPlayers:] {
			rejected = append(rejected, p.ID)
		}
		capErr = &CapacityError{Capacity: MaxPlayers, Rejected: rejected}
		players = players[:MaxPlayers]
	}

	next := s.Clone()
	next.Roster = make([]Player, len(players))
	copy(next.Roster, players)
	next.ReadyCount = countReady(next.Roster)
	next.LocalOrphaned = next.LocalPlayerID != "" && next.indexOf(next.LocalPlayerID) < 0
	if next.CurrentDrawer != "" && next.indexOf(next.CurrentDrawer) < 0 {
		next.CurrentDrawer = ""
	}
	return next, capErr
}

func reduceJoined(s SessionState, e PlayerJoined) (SessionState, error) {
	if e.Player.ID == "" {
		return s, malformed(e.Kind(), "player without id")
	}
	next := s.Clone()
	if i := next.indexOf(e.Player.ID); i >= 0 {
		next.Roster[i] = e.Player
	} else {
		if len(next.Roster) >= MaxPlayers {
			return s, &CapacityError{Capacity: MaxPlayers, Rejected: []string{e.Player.ID}}
		}
		next.Roster = append(next.Roster, e.Player)
	}
	next.ReadyCount = countReady(next.Roster)
	if e.Player.ID == next.LocalPlayerID {
		next.LocalOrphaned = false
	}
	return next, nil
}

func reduceScores(s SessionState, e ScoreboardUpdated) (SessionState, error) {
	for _, sc := range e.Scores {
		if sc.Points < 0 {
			return s, malformed(e.Kind(), "negative points")
		}
	}
	next := s.Clone()
	for _, sc := range e.Scores {
		i := -1
		if sc.PlayerID != "" {
			i = next.indexOf(sc.PlayerID)
		}
		if i < 0 && sc.Name != "" {
			i = next.resolve(sc.Name)
		}
		if i < 0 {
			continue
		}
		next.Roster[i].Score = sc.Points
	}
	if next.Phase == PhaseRound {
		next.Phase = PhaseScoring
	}
	return next, nil
}
