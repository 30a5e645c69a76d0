// Package bot bundles the placeholder agents shipped with the example
// client. They demonstrate the Agent contract; writing a real strategy is
// left to you.
package bot

import "github.com/louisdewar/pacman-tournament/protocol"

// Starter always moves forward. The simplest possible agent, useful for
// checking connectivity.
type Starter struct{}

// ChooseAction returns Forward regardless of the view.
func (Starter) ChooseAction(view protocol.View, tick uint32) protocol.Action {
	return protocol.Forward
}

// Reference is the slightly-less-trivial example agent: it hugs land, turns
// at obstacles and only advances into an occupied cell when the occupant is
// facing it head-on.
type Reference struct{}

// ChooseAction turns right when the tile ahead is not land, charges an enemy
// facing us, advances into empty land and otherwise stays put.
func (Reference) ChooseAction(view protocol.View, tick uint32) protocol.Action {
	me := view.Me().Player
	if me == nil {
		// Should not happen: the server always places us at the view center.
		return protocol.Stay
	}

	ahead := view.Ahead()
	if ahead.Base != protocol.Land {
		return protocol.TurnRight
	}

	if enemy := ahead.Player; enemy != nil {
		if enemy.Direction == me.Direction.Reverse() {
			return protocol.Forward
		}
		return protocol.Stay
	}

	return protocol.Forward
}
