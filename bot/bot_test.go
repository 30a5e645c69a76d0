package bot

import (
	"testing"

	"github.com/louisdewar/pacman-tournament/protocol"
)

// viewFacing builds an all-land view with us in the center facing dir.
func viewFacing(dir protocol.Direction) protocol.View {
	var v protocol.View
	for x := 0; x < protocol.ViewWidth; x++ {
		for y := 0; y < protocol.ViewHeight; y++ {
			v[x][y] = protocol.Tile{Base: protocol.Land}
		}
	}
	v[1][2].Player = &protocol.PlayerView{Direction: dir, Health: 1, IsCurrentPlayer: true}
	return v
}

func TestStarterAlwaysForward(t *testing.T) {
	v := viewFacing(protocol.North)
	v[1][1].Base = protocol.Wall
	if got := (Starter{}).ChooseAction(v, 1); got != protocol.Forward {
		t.Fatalf("action = %q, want forward", got)
	}
}

func TestReference(t *testing.T) {
	cases := []struct {
		name  string
		setup func(v *protocol.View)
		want  protocol.Action
	}{
		{
			name:  "open land ahead",
			setup: func(v *protocol.View) {},
			want:  protocol.Forward,
		},
		{
			name:  "wall ahead turns right",
			setup: func(v *protocol.View) { v[1][1].Base = protocol.Wall },
			want:  protocol.TurnRight,
		},
		{
			name:  "water ahead turns right",
			setup: func(v *protocol.View) { v[1][1].Base = protocol.Water },
			want:  protocol.TurnRight,
		},
		{
			name: "enemy facing us gets charged",
			setup: func(v *protocol.View) {
				v[1][1].Player = &protocol.PlayerView{Direction: protocol.South, Health: 1}
			},
			want: protocol.Forward,
		},
		{
			name: "enemy facing away waits",
			setup: func(v *protocol.View) {
				v[1][1].Player = &protocol.PlayerView{Direction: protocol.North, Health: 1}
			},
			want: protocol.Stay,
		},
		{
			name: "enemy facing sideways waits",
			setup: func(v *protocol.View) {
				v[1][1].Player = &protocol.PlayerView{Direction: protocol.East, Health: 1}
			},
			want: protocol.Stay,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := viewFacing(protocol.North)
			c.setup(&v)
			if got := (Reference{}).ChooseAction(v, 1); got != c.want {
				t.Fatalf("action = %q, want %q", got, c.want)
			}
		})
	}
}

// The head-on check is relative to our own heading, not absolute north.
func TestReferenceHeadOnWhileFacingEast(t *testing.T) {
	v := viewFacing(protocol.East)
	v[1][1].Player = &protocol.PlayerView{Direction: protocol.West, Health: 1}
	if got := (Reference{}).ChooseAction(v, 1); got != protocol.Forward {
		t.Fatalf("action = %q, want forward", got)
	}
}
