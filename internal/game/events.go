package game

// Event is an inbound change to the session, already decoded from the wire.
type Event interface {
	Kind() string
}

type RosterSnapshot struct {
	Players []Player
}

// PlayerJoined announces a single player without a full snapshot.
type PlayerJoined struct {
	Player Player
}

type PlayerJoinedAck struct {
	PlayerID   string
	ReadyCount int
}

type ReadinessChanged struct {
	PlayerID string
	Ready    bool
}

type ReadyCountBroadcast struct {
	Count int
}

type CountdownTick struct {
	Value int
}

type CountdownFinished struct{}

// DrawerAssigned carries an id or, as some servers send, a display name.
type DrawerAssigned struct {
	PlayerRef string
}

type WordAssigned struct {
	Word string
}

type GuessReceived struct {
	Author string
	Text   string
}

// PlayerScore references a player by id when known, else by display name.
type PlayerScore struct {
	PlayerID string
	Name     string
	Points   int
}

type ScoreboardUpdated struct {
	Scores []PlayerScore
}

// ConnectionLost is raised locally when the channel drops. Server ids are
// scoped to one connection.
type ConnectionLost struct{}

func (RosterSnapshot) Kind() string      { return "rosterSnapshot" }
func (PlayerJoined) Kind() string        { return "playerJoined" }
func (PlayerJoinedAck) Kind() string     { return "playerJoinedAck" }
func (ReadinessChanged) Kind() string    { return "readinessChanged" }
func (ReadyCountBroadcast) Kind() string { return "readyCountBroadcast" }
func (CountdownTick) Kind() string       { return "countdownTick" }
func (CountdownFinished) Kind() string   { return "countdownFinished" }
func (DrawerAssigned) Kind() string      { return "drawerAssigned" }
func (WordAssigned) Kind() string        { return "wordAssigned" }
func (GuessReceived) Kind() string       { return "guessReceived" }
func (ScoreboardUpdated) Kind() string   { return "scoreboardUpdated" }
func (ConnectionLost) Kind() string      { return "connectionLost" }
