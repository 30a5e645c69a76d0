package spectator

import (
	"reflect"
	"testing"

	"github.com/louisdewar/pacman-tournament/protocol"
)

func TestDecodeInitial(t *testing.T) {
	// 2x2 game: tiles L,L,X,W column-major; entities empty, empty, a mob
	// and an invulnerable player; fruit at 0 and a power pill at 3.
	msg, err := Decode("i3_2_2_LLXW|2NVM0SIP3|F2P")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	initial, ok := msg.(*Initial)
	if !ok {
		t.Fatalf("message type = %T, want *Initial", msg)
	}

	if initial.GameID != 3 || initial.Width != 2 || initial.Height != 2 {
		t.Fatalf("header = %+v", initial)
	}
	wantTiles := []protocol.BaseTile{protocol.Land, protocol.Land, protocol.Wall, protocol.Water}
	if !reflect.DeepEqual(initial.BaseTiles, wantTiles) {
		t.Fatalf("tiles = %v, want %v", initial.BaseTiles, wantTiles)
	}

	if initial.Entities[0] != nil || initial.Entities[1] != nil {
		t.Fatal("cells 0 and 1 should be empty")
	}
	mob := initial.Entities[2]
	if mob == nil || mob.Type != Mob || mob.Direction != protocol.North || mob.Invulnerable || mob.Variant != 0 {
		t.Fatalf("mob = %+v", mob)
	}
	player := initial.Entities[3]
	if player == nil || player.Type != Player || player.Direction != protocol.South || !player.Invulnerable || player.Variant != 3 {
		t.Fatalf("player = %+v", player)
	}

	wantFood := []Food{Fruit, 0, 0, PowerPill}
	if !reflect.DeepEqual(initial.Food, wantFood) {
		t.Fatalf("food = %v, want %v", initial.Food, wantFood)
	}
}

func TestDecodeDelta(t *testing.T) {
	msg, err := Decode("d7_a5,b1,2,c8NVM2e10Ff12EI")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	delta, ok := msg.(*Delta)
	if !ok {
		t.Fatalf("message type = %T, want *Delta", msg)
	}

	if delta.GameID != 7 {
		t.Fatalf("game id = %d, want 7", delta.GameID)
	}
	if !reflect.DeepEqual(delta.EntityDied, []uint32{5}) {
		t.Fatalf("died = %v", delta.EntityDied)
	}
	if !reflect.DeepEqual(delta.EntityMoved, []Move{{Start: 1, End: 2}}) {
		t.Fatalf("moved = %v", delta.EntityMoved)
	}
	wantSpawn := []Spawn{{
		Position: 8,
		Metadata: EntityMetadata{Direction: protocol.North, Type: Mob, Variant: 2},
	}}
	if !reflect.DeepEqual(delta.EntitySpawned, wantSpawn) {
		t.Fatalf("spawned = %+v", delta.EntitySpawned)
	}
	if !reflect.DeepEqual(delta.FoodSpawned, []FoodSpawn{{Position: 10, Food: Fruit}}) {
		t.Fatalf("food spawned = %+v", delta.FoodSpawned)
	}
	wantChanged := []MetadataChange{{Position: 12, Direction: protocol.East, Invulnerable: true}}
	if !reflect.DeepEqual(delta.MetadataChanged, wantChanged) {
		t.Fatalf("changed = %+v", delta.MetadataChanged)
	}
	if len(delta.FoodEaten) != 0 {
		t.Fatalf("food eaten = %v, want empty", delta.FoodEaten)
	}
}

func TestDecodeDeltaSingleSection(t *testing.T) {
	msg, err := Decode("d2_d4,9,")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	delta := msg.(*Delta)
	if !reflect.DeepEqual(delta.FoodEaten, []uint32{4, 9}) {
		t.Fatalf("food eaten = %v", delta.FoodEaten)
	}
}

func TestDecodeLeaderboard(t *testing.T) {
	msg, err := Decode("l1_alice_120,2_bob_95,")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	board, ok := msg.(*Leaderboard)
	if !ok {
		t.Fatalf("message type = %T, want *Leaderboard", msg)
	}
	want := []LeaderboardUser{
		{ID: 1, Username: "alice", HighScore: 120},
		{ID: 2, Username: "bob", HighScore: 95},
	}
	if !reflect.DeepEqual(board.Users, want) {
		t.Fatalf("users = %+v, want %+v", board.Users, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"empty", ""},
		{"unknown kind", "z123"},
		{"truncated initial", "i3_2_2_LL"},
		{"bad tile", "i1_1_1_Q|1|1"},
		{"out of order delta sections", "d1_b1,2,a3,"},
		{"repeated delta section", "d1_a1,a2,"},
		{"bad direction in spawn", "d1_c4QVM1"},
		{"truncated leaderboard", "l1_alice"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Decode(c.frame); err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", c.frame)
			}
		})
	}
}
