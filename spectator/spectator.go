package spectator

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Filter selects which games a spectator connection listens to.
type Filter struct {
	gameID int
	all    bool
}

// AllGames subscribes to every running game plus the leaderboard.
func AllGames() Filter { return Filter{all: true} }

// Game subscribes to a single game by id.
func Game(id int) Filter { return Filter{gameID: id} }

func (f Filter) token() string {
	if f.all {
		return "all"
	}
	return fmt.Sprintf("game:%d", f.gameID)
}

const (
	readLimit    = 1 << 20
	writeTimeout = 10 * time.Second
)

// Client is a read-only connection to the spectator feed.
type Client struct {
	ws  *websocket.Conn
	log *zap.SugaredLogger
}

// Dial connects to the spectator endpoint (e.g. ws://host:3002) and sends
// the subscription for the given filter.
func Dial(ctx context.Context, url string, filter Filter, logger *zap.SugaredLogger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("spectator dial %s: %w", url, err)
	}
	ws.SetReadLimit(readLimit)

	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, []byte(filter.token())); err != nil {
		ws.Close()
		return nil, fmt.Errorf("spectator subscribe: %w", err)
	}
	return &Client{ws: ws, log: logger}, nil
}

// Next blocks until the next decodable frame arrives. Frames that fail to
// decode are logged and skipped; a transport error ends the stream.
func (c *Client) Next() (Message, error) {
	for {
		kind, payload, err := c.ws.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("spectator read: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		msg, err := Decode(string(payload))
		if err != nil {
			c.log.Warnw("skipping undecodable spectator frame", "err", err, "frame", string(payload))
			continue
		}
		return msg, nil
	}
}

// Close shuts the connection down.
func (c *Client) Close() error {
	return c.ws.Close()
}
