package protocol

// AuthMessage is the first line a client sends after connecting.
// Generation 2 servers only look at the username; generation 3 servers also
// require the account code.
type AuthMessage struct {
	Username string `json:"username"`
	Code     string `json:"code,omitempty"`
}

// ActionMessage is the client's reply to a tick. Tick must echo the tick
// number of the snapshot the action answers, otherwise the server discards
// the action as stale.
type ActionMessage struct {
	Tick   uint32 `json:"tick"`
	Action Action `json:"action"`
}

// TickMessage is one simulation step's snapshot of the player's surroundings.
type TickMessage struct {
	View View   `json:"view"`
	Tick uint32 `json:"tick"`
}

// DiedMessage ends a session with the player's final score.
type DiedMessage struct {
	FinalScore int `json:"final_score"`
}

// SpawnedMessage tells an authenticated client which game it has been placed
// into.
type SpawnedMessage struct {
	GameID int `json:"game_id"`
}

// ServerMessage is a generation-3 server line. Exactly one field is set;
// dispatch on whichever is non-nil.
type ServerMessage struct {
	Error   *string         `json:"error,omitempty"`
	Died    *DiedMessage    `json:"died,omitempty"`
	Spawned *SpawnedMessage `json:"spawned,omitempty"`
	Tick    *TickMessage    `json:"tick,omitempty"`
}
