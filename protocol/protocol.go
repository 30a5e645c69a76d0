// Package protocol defines the wire types spoken between an AI client and
// the game server. Every message is a single line of JSON terminated by '\n'
// (except generation-1 actions, which are one raw byte). The JSON tokens
// here must match the server exactly; do not rename fields.
package protocol

// Action is the move a player submits for one tick.
type Action string

const (
	Forward   Action = "F"
	Stay      Action = "S"
	TurnLeft  Action = "L"
	TurnRight Action = "R"
	Eat       Action = "E"
)

// Valid reports whether a is one of the five actions the server accepts.
func (a Action) Valid() bool {
	switch a {
	case Forward, Stay, TurnLeft, TurnRight, Eat:
		return true
	}
	return false
}

// Direction is a compass heading of a player or mob.
type Direction string

const (
	North Direction = "N"
	East  Direction = "E"
	South Direction = "S"
	West  Direction = "W"
)

// Clockwise returns the heading after a right turn.
func (d Direction) Clockwise() Direction {
	switch d {
	case North:
		return East
	case East:
		return South
	case South:
		return West
	case West:
		return North
	}
	return d
}

// AntiClockwise returns the heading after a left turn.
func (d Direction) AntiClockwise() Direction {
	return d.Clockwise().Clockwise().Clockwise()
}

// Reverse returns the opposite heading.
func (d Direction) Reverse() Direction {
	return d.Clockwise().Clockwise()
}

// BaseTile is the terrain under a map cell.
type BaseTile string

const (
	Land  BaseTile = "L"
	Water BaseTile = "W"
	Wall  BaseTile = "X"
)

// PlayerView is what one player sees of another (or of itself when
// IsCurrentPlayer is set).
type PlayerView struct {
	Direction       Direction `json:"direction"`
	Health          uint8     `json:"health"`
	IsInvulnerable  bool      `json:"is_invulnerable"`
	IsCurrentPlayer bool      `json:"is_current_player"`
}

// MobView is what a player sees of a mob.
type MobView struct {
	Direction Direction `json:"direction"`
}

// Tile is one cell of the local view. Player and Mob are nil when the cell
// is empty; the server never sets both.
type Tile struct {
	Base   BaseTile    `json:"base"`
	Player *PlayerView `json:"player"`
	Mob    *MobView    `json:"mob"`
}
