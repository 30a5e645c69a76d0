// Package servertest runs a scripted stand-in for the game server so client
// code can be exercised over a real TCP connection. It replays canned
// snapshots and records the actions it gets back; it contains no game rules.
package servertest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/louisdewar/pacman-tournament/protocol"
)

// Version mirrors the client's protocol generations without importing it.
type Version int

const (
	V1 Version = iota + 1
	V2
	V3
)

// Script describes one session from the server's point of view.
type Script struct {
	Version Version

	// Expected handshake (V2/V3). Empty means accept anything.
	ExpectUsername string
	ExpectCode     string

	// ErrorMessage, when set on a V3 script, is sent instead of playing.
	ErrorMessage string

	// SpawnGameID is announced after a successful V3 handshake.
	SpawnGameID int

	// Ticks are broadcast one by one, each waiting for an action.
	Ticks []protocol.View

	// FinalScore is sent in the death message once all ticks are played.
	FinalScore int
}

// Server accepts a single connection and plays its script against it.
type Server struct {
	ln     net.Listener
	script Script

	mu      sync.Mutex
	actions []protocol.ActionMessage

	done chan struct{}
	err  error
}

// Start listens on a random local port and begins waiting for the client.
func Start(script Script) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{ln: ln, script: script, done: make(chan struct{})}
	go s.serve()
	return s, nil
}

// Addr is the host:port to dial.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Actions returns the actions received so far, in arrival order.
func (s *Server) Actions() []protocol.ActionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.ActionMessage, len(s.actions))
	copy(out, s.actions)
	return out
}

// Wait blocks until the session finishes and reports any script violation.
func (s *Server) Wait() error {
	<-s.done
	return s.err
}

// Close stops listening and unblocks a pending accept.
func (s *Server) Close() { s.ln.Close() }

func (s *Server) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		s.err = err
		return
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	br := bufio.NewReader(conn)
	switch s.script.Version {
	case V1:
		s.err = s.playV1(conn, br)
	case V2:
		s.err = s.playV2(conn, br)
	default:
		s.err = s.playV3(conn, br)
	}
}

func (s *Server) record(a protocol.ActionMessage) {
	s.mu.Lock()
	s.actions = append(s.actions, a)
	s.mu.Unlock()
}

func writeLine(conn net.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = conn.Write(append(b, '\n'))
	return err
}

func readLine(br *bufio.Reader, v any) error {
	line, err := br.ReadBytes('\n')
	if err != nil {
		return err
	}
	return json.Unmarshal(line, v)
}

func (s *Server) checkHandshake(br *bufio.Reader, wantCode bool) error {
	var auth protocol.AuthMessage
	if err := readLine(br, &auth); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if s.script.ExpectUsername != "" && auth.Username != s.script.ExpectUsername {
		return fmt.Errorf("handshake username = %q, want %q", auth.Username, s.script.ExpectUsername)
	}
	if wantCode && s.script.ExpectCode != "" && auth.Code != s.script.ExpectCode {
		return fmt.Errorf("handshake code = %q, want %q", auth.Code, s.script.ExpectCode)
	}
	return nil
}

// playV1 broadcasts bare view arrays and reads single-byte actions.
func (s *Server) playV1(conn net.Conn, br *bufio.Reader) error {
	for i, view := range s.script.Ticks {
		if err := writeLine(conn, view); err != nil {
			return err
		}
		b, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("tick %d action: %w", i+1, err)
		}
		action := protocol.Action(b)
		if !action.Valid() {
			return fmt.Errorf("tick %d: invalid action byte %q", i+1, b)
		}
		s.record(protocol.ActionMessage{Tick: uint32(i + 1), Action: action})
	}
	return writeLine(conn, protocol.DiedMessage{FinalScore: s.script.FinalScore})
}

// playV2 sends numbered snapshots and expects numbered action envelopes.
func (s *Server) playV2(conn net.Conn, br *bufio.Reader) error {
	if err := s.checkHandshake(br, false); err != nil {
		return err
	}
	for i, view := range s.script.Ticks {
		tick := uint32(i + 1)
		if err := writeLine(conn, protocol.TickMessage{View: view, Tick: tick}); err != nil {
			return err
		}
		var action protocol.ActionMessage
		if err := readLine(br, &action); err != nil {
			return fmt.Errorf("tick %d action: %w", tick, err)
		}
		if action.Tick != tick {
			return fmt.Errorf("action echoed tick %d, want %d", action.Tick, tick)
		}
		s.record(action)
	}
	return writeLine(conn, protocol.DiedMessage{FinalScore: s.script.FinalScore})
}

// playV3 speaks the tagged tournament protocol.
func (s *Server) playV3(conn net.Conn, br *bufio.Reader) error {
	if err := s.checkHandshake(br, true); err != nil {
		return err
	}
	if s.script.ErrorMessage != "" {
		msg := s.script.ErrorMessage
		return writeLine(conn, protocol.ServerMessage{Error: &msg})
	}
	spawned := protocol.SpawnedMessage{GameID: s.script.SpawnGameID}
	if err := writeLine(conn, protocol.ServerMessage{Spawned: &spawned}); err != nil {
		return err
	}
	for i, view := range s.script.Ticks {
		tick := uint32(i + 1)
		tm := protocol.TickMessage{View: view, Tick: tick}
		if err := writeLine(conn, protocol.ServerMessage{Tick: &tm}); err != nil {
			return err
		}
		var action protocol.ActionMessage
		if err := readLine(br, &action); err != nil {
			return fmt.Errorf("tick %d action: %w", tick, err)
		}
		if action.Tick != tick {
			return fmt.Errorf("action echoed tick %d, want %d", action.Tick, tick)
		}
		s.record(action)
	}
	died := protocol.DiedMessage{FinalScore: s.script.FinalScore}
	return writeLine(conn, protocol.ServerMessage{Died: &died})
}
