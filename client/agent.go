package client

import "github.com/louisdewar/pacman-tournament/protocol"

// Agent decides the player's move each tick. This is the part you are meant
// to replace: the bundled bots in package bot are placeholders that exist so
// the wire protocol can be exercised end to end.
type Agent interface {
	// ChooseAction is called once per tick with the local view and the tick
	// number. It must return one of the five protocol actions. It runs on the
	// session goroutine, so a slow agent delays the action past the tick
	// deadline and the server will ignore it.
	ChooseAction(view protocol.View, tick uint32) protocol.Action
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(view protocol.View, tick uint32) protocol.Action

// ChooseAction calls f.
func (f AgentFunc) ChooseAction(view protocol.View, tick uint32) protocol.Action {
	return f(view, tick)
}
