// Package spectator consumes the tournament server's WebSocket spectator
// feed. The feed uses a compact text encoding rather than JSON to keep
// per-tick broadcast sizes down.
package spectator

import "github.com/louisdewar/pacman-tournament/protocol"

// EntityType distinguishes mobs from players in spectator messages.
type EntityType byte

const (
	Mob    EntityType = 'M'
	Player EntityType = 'P'
)

// Food is a consumable on the map.
type Food byte

const (
	Fruit     Food = 'F'
	PowerPill Food = 'P'
)

// EntityMetadata describes an entity on the board. Variant is the server's
// per-game entity index, used by viewers to pick a sprite.
type EntityMetadata struct {
	Direction    protocol.Direction
	Invulnerable bool
	Type         EntityType
	Variant      int
}

// Message is one decoded spectator frame: *Initial, *Delta or *Leaderboard.
type Message interface {
	message()
}

// Initial is the full snapshot sent when a spectator first sees a game.
// Grids are column-major (x*height + y) with Width*Height cells; nil
// entries in Entities and zero entries in Food are empty cells.
type Initial struct {
	GameID    int
	Width     int
	Height    int
	BaseTiles []protocol.BaseTile
	Entities  []*EntityMetadata
	Food      []Food
}

func (*Initial) message() {}

// Move relocates the entity at Start to End.
type Move struct {
	Start uint32
	End   uint32
}

// Spawn introduces a new entity at Position.
type Spawn struct {
	Position uint32
	Metadata EntityMetadata
}

// FoodSpawn places (or replaces) food at Position.
type FoodSpawn struct {
	Position uint32
	Food     Food
}

// MetadataChange updates the mutable attributes of the entity at Position.
type MetadataChange struct {
	Position     uint32
	Direction    protocol.Direction
	Invulnerable bool
}

// Delta carries one tick's worth of changes to a game. Positions are
// column-major cell indices into the grid announced by the Initial message.
type Delta struct {
	GameID          int
	EntityDied      []uint32
	EntityMoved     []Move
	EntitySpawned   []Spawn
	FoodEaten       []uint32
	FoodSpawned     []FoodSpawn
	MetadataChanged []MetadataChange
}

func (*Delta) message() {}

// LeaderboardUser is one leaderboard row.
type LeaderboardUser struct {
	ID        int
	Username  string
	HighScore int
}

// Leaderboard is the periodic top-players broadcast.
type Leaderboard struct {
	Users []LeaderboardUser
}

func (*Leaderboard) message() {}
