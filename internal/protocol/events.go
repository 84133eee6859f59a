package protocol

// Event names on the socket.io channel. Some names are used in both
// directions with different payloads (newUser, userStatus, guess).
const (
	EventNewUser           = "newUser"
	EventUpdateUserList    = "updateUserList"
	EventUserStatus        = "userStatus"
	EventPlayersReady      = "playersReady"
	EventStartGame         = "startGame"
	EventCountdownUpdate   = "countdownUpdate"
	EventCountdownFinished = "countdownFinished"
	EventRandomUser        = "randomUser"
	EventWords             = "words"
	EventGuess             = "guess"
	EventUpdatePoints      = "updatePoints"
	EventUpdatedUserPoints = "updatedUserPoints"
	EventLobbyFull         = "lobbyFull"
)

// Status texts carried by userStatus.
const (
	StatusReady   = "ready"
	StatusWaiting = "waiting"
)

// ServerEvents lists every event a client subscribes to.
var ServerEvents = []string{
	EventNewUser,
	EventUpdateUserList,
	EventUserStatus,
	EventPlayersReady,
	EventCountdownUpdate,
	EventCountdownFinished,
	EventRandomUser,
	EventWords,
	EventGuess,
	EventUpdatedUserPoints,
	EventLobbyFull,
}

// NewUserRequest is sent by a client to log in.
type NewUserRequest struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

// NewUserAck is the server's reply to NewUserRequest.
type NewUserAck struct {
	UserID       string `json:"userId"`
	PlayersReady int    `json:"playersReady"`
}

// UserEntry is one element of updateUserList.
type UserEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	IsReady  bool   `json:"isReady"`
	Points   int    `json:"points"`
}

type UserStatus struct {
	StatusID   string `json:"statusId"`
	StatusText string `json:"statusText"`
}

type Guess struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

type Word struct {
	Word string `json:"word"`
}

// WordList is one element of the words event payload, which arrives as
// [{ words: [{word}, ...] }].
type WordList struct {
	Words []Word `json:"words"`
}

// UserPoints is one element of updatedUserPoints.
type UserPoints struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type LobbyFull struct {
	Capacity int `json:"capacity"`
}
