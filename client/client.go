// Package client connects to a game server over TCP and runs the
// read-tick / choose-action / write-action loop on behalf of an Agent.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/louisdewar/pacman-tournament/protocol"
)

// Version selects which generation of the wire protocol to speak. The server
// deployments differ only in handshake and framing; the game itself is the
// same.
type Version int

const (
	// V1: no handshake, bare view arrays in, single raw action bytes out.
	V1 Version = iota + 1
	// V2: username handshake, tick-numbered snapshots and actions.
	V2
	// V3: username+code handshake, tagged server messages
	// (error/died/spawned/tick).
	V3
)

// Options configures a session. The zero value speaks V3 with no
// authentication details, which the server will reject, so set Username
// (and Code for V3).
type Options struct {
	Version  Version
	Username string
	Code     string

	// ReadTimeout bounds the wait for each server line. Zero means wait
	// forever.
	ReadTimeout time.Duration

	// OnSpawned is called when a V3 server places us into a game.
	OnSpawned func(gameID int)

	Logger  *zap.SugaredLogger
	Metrics *Metrics
}

// ServerError is an error message sent by the server itself, e.g. a rejected
// authentication.
type ServerError struct {
	Reason string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Reason)
}

// Result summarizes a finished session.
type Result struct {
	FinalScore int
	GameID     int // 0 before V3 servers existed
	Ticks      int
}

// Client is a single-session connection to the game server. Not safe for
// concurrent use; Run owns the connection until it returns.
type Client struct {
	conn    *Conn
	opts    Options
	log     *zap.SugaredLogger
	metrics *Metrics
}

// Dial connects to addr and prepares a session. The handshake is not sent
// until Run.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	if opts.Version == 0 {
		opts.Version = V3
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{
		conn:    NewConn(c),
		opts:    opts,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Metrics returns the session counters.
func (c *Client) Metrics() *Metrics { return c.metrics }

// Close tears down the connection. Run does this on return; Close exists for
// callers that dial but never run.
func (c *Client) Close() error { return c.conn.Close() }

// Run authenticates (V2/V3) and then plays until the session ends. It
// returns a Result when the player dies, a *ServerError when the server
// rejects us, ctx.Err() when the context is cancelled, or the transport
// error otherwise.
func (c *Client) Run(ctx context.Context, agent Agent) (*Result, error) {
	defer c.conn.Close()

	// Cancelling the context unblocks the read by closing the connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	switch c.opts.Version {
	case V2:
		if err := c.conn.WriteJSON(protocol.AuthMessage{Username: c.opts.Username}); err != nil {
			return nil, fmt.Errorf("handshake: %w", err)
		}
	case V3:
		msg := protocol.AuthMessage{Username: c.opts.Username, Code: c.opts.Code}
		if err := c.conn.WriteJSON(msg); err != nil {
			return nil, fmt.Errorf("handshake: %w", err)
		}
	}

	sess := &session{client: c, agent: agent}
	for {
		if c.opts.ReadTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		}
		line, err := c.conn.ReadLine()
		if err == ErrLineTooLong {
			c.metrics.IncBadLine()
			c.log.Warnw("dropped oversized server line")
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read: %w", err)
		}

		var result *Result
		switch c.opts.Version {
		case V1:
			result, err = sess.handleV1(line)
		case V2:
			result, err = sess.handleV2(line)
		default:
			result, err = sess.handleV3(line)
		}
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
}

// session is the per-run mutable state.
type session struct {
	client *Client
	agent  Agent
	gameID int
	ticks  int
}

// handleV1 processes a generation-1 line: either a bare view array or a
// death notice. Actions go back as one raw byte.
func (s *session) handleV1(line []byte) (*Result, error) {
	c := s.client
	if len(line) > 0 && line[0] == '[' {
		var view protocol.View
		if err := json.Unmarshal(line, &view); err != nil {
			c.metrics.IncBadLine()
			c.log.Warnw("invalid view from server", "line", string(line), "err", err)
			return nil, nil
		}
		s.ticks++
		action := s.decide(view, uint32(s.ticks))
		if err := c.conn.WriteRaw([]byte(action)); err != nil {
			return nil, fmt.Errorf("write action: %w", err)
		}
		c.metrics.IncAction()
		return nil, nil
	}

	var msg struct {
		FinalScore *int `json:"final_score"`
	}
	if err := json.Unmarshal(line, &msg); err != nil || msg.FinalScore == nil {
		c.metrics.IncBadLine()
		c.log.Warnw("unrecognized server line", "line", string(line))
		return nil, nil
	}
	return &Result{FinalScore: *msg.FinalScore, Ticks: s.ticks}, nil
}

// handleV2 processes a generation-2 line: a tick snapshot or a death notice.
func (s *session) handleV2(line []byte) (*Result, error) {
	c := s.client
	var msg struct {
		View       *protocol.View `json:"view"`
		Tick       *uint32        `json:"tick"`
		FinalScore *int           `json:"final_score"`
	}
	if err := json.Unmarshal(line, &msg); err != nil {
		c.metrics.IncBadLine()
		c.log.Warnw("invalid json from server", "line", string(line), "err", err)
		return nil, nil
	}

	switch {
	case msg.FinalScore != nil:
		return &Result{FinalScore: *msg.FinalScore, Ticks: s.ticks}, nil
	case msg.View != nil && msg.Tick != nil:
		return nil, s.playTick(protocol.TickMessage{View: *msg.View, Tick: *msg.Tick})
	default:
		c.metrics.IncBadLine()
		c.log.Warnw("unrecognized server line", "line", string(line))
		return nil, nil
	}
}

// handleV3 processes a tagged generation-3 server message.
func (s *session) handleV3(line []byte) (*Result, error) {
	c := s.client
	var msg protocol.ServerMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		c.metrics.IncBadLine()
		c.log.Warnw("invalid json from server", "line", string(line), "err", err)
		return nil, nil
	}

	switch {
	case msg.Error != nil:
		return nil, &ServerError{Reason: *msg.Error}
	case msg.Died != nil:
		return &Result{FinalScore: msg.Died.FinalScore, GameID: s.gameID, Ticks: s.ticks}, nil
	case msg.Spawned != nil:
		s.gameID = msg.Spawned.GameID
		c.metrics.IncSpawn()
		c.log.Infow("spawned into game", "game_id", s.gameID)
		if c.opts.OnSpawned != nil {
			c.opts.OnSpawned(s.gameID)
		}
		return nil, nil
	case msg.Tick != nil:
		return nil, s.playTick(*msg.Tick)
	default:
		c.metrics.IncBadLine()
		c.log.Warnw("unrecognized server line", "line", string(line))
		return nil, nil
	}
}

// playTick asks the agent for a move and writes it back, echoing the tick
// number so the server can match action to snapshot.
func (s *session) playTick(tick protocol.TickMessage) error {
	c := s.client
	s.ticks++
	action := s.decide(tick.View, tick.Tick)
	if err := c.conn.WriteJSON(protocol.ActionMessage{Tick: tick.Tick, Action: action}); err != nil {
		return fmt.Errorf("write action: %w", err)
	}
	c.metrics.IncAction()
	return nil
}

// decide invokes the agent, timing it and substituting Stay for anything the
// server would reject.
func (s *session) decide(view protocol.View, tick uint32) protocol.Action {
	c := s.client
	c.metrics.IncTick()
	start := time.Now()
	action := s.agent.ChooseAction(view, tick)
	c.metrics.AddDecision(time.Since(start).Nanoseconds())
	if !action.Valid() {
		c.log.Warnw("agent returned invalid action, sending stay", "action", string(action), "tick", tick)
		action = protocol.Stay
	}
	return action
}
