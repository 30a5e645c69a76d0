package client_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/louisdewar/pacman-tournament/bot"
	"github.com/louisdewar/pacman-tournament/client"
	"github.com/louisdewar/pacman-tournament/internal/servertest"
	"github.com/louisdewar/pacman-tournament/protocol"
)

// openView is an all-land view with the player in the center facing north.
func openView() protocol.View {
	var v protocol.View
	for x := 0; x < protocol.ViewWidth; x++ {
		for y := 0; y < protocol.ViewHeight; y++ {
			v[x][y] = protocol.Tile{Base: protocol.Land}
		}
	}
	v[1][2].Player = &protocol.PlayerView{Direction: protocol.North, Health: 1, IsCurrentPlayer: true}
	return v
}

func run(t *testing.T, script servertest.Script, opts client.Options, agent client.Agent) (*client.Result, *servertest.Server, error) {
	t.Helper()
	srv, err := servertest.Start(script)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, srv.Addr(), opts)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	result, runErr := c.Run(ctx, agent)
	if err := srv.Wait(); err != nil {
		t.Fatalf("server script: %v", err)
	}
	return result, srv, runErr
}

func TestRunV3FullSession(t *testing.T) {
	script := servertest.Script{
		Version:        servertest.V3,
		ExpectUsername: "alice",
		ExpectCode:     "s3cret",
		SpawnGameID:    7,
		Ticks:          []protocol.View{openView(), openView(), openView()},
		FinalScore:     42,
	}

	spawned := make(chan int, 1)
	opts := client.Options{
		Version:   client.V3,
		Username:  "alice",
		Code:      "s3cret",
		OnSpawned: func(id int) { spawned <- id },
	}

	result, srv, err := run(t, script, opts, bot.Starter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalScore != 42 || result.GameID != 7 || result.Ticks != 3 {
		t.Fatalf("result = %+v", result)
	}

	select {
	case id := <-spawned:
		if id != 7 {
			t.Fatalf("spawn callback got game id %d, want 7", id)
		}
	default:
		t.Fatal("spawn callback never fired")
	}

	actions := srv.Actions()
	if len(actions) != 3 {
		t.Fatalf("server saw %d actions, want 3", len(actions))
	}
	for i, a := range actions {
		if a.Action != protocol.Forward {
			t.Errorf("action %d = %q, want forward", i, a.Action)
		}
		if a.Tick != uint32(i+1) {
			t.Errorf("action %d echoed tick %d, want %d", i, a.Tick, i+1)
		}
	}
}

func TestRunV3ServerError(t *testing.T) {
	script := servertest.Script{
		Version:      servertest.V3,
		ErrorMessage: "The code does not match your username",
	}
	opts := client.Options{Version: client.V3, Username: "alice", Code: "wrong"}

	_, _, err := run(t, script, opts, bot.Starter{})
	var serverErr *client.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if serverErr.Reason != "The code does not match your username" {
		t.Fatalf("reason = %q", serverErr.Reason)
	}
}

func TestRunV2FullSession(t *testing.T) {
	script := servertest.Script{
		Version:        servertest.V2,
		ExpectUsername: "bob",
		Ticks:          []protocol.View{openView(), openView()},
		FinalScore:     5,
	}
	opts := client.Options{Version: client.V2, Username: "bob"}

	result, srv, err := run(t, script, opts, bot.Starter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalScore != 5 || result.Ticks != 2 || result.GameID != 0 {
		t.Fatalf("result = %+v", result)
	}
	if got := len(srv.Actions()); got != 2 {
		t.Fatalf("server saw %d actions, want 2", got)
	}
}

func TestRunV1FullSession(t *testing.T) {
	script := servertest.Script{
		Version:    servertest.V1,
		Ticks:      []protocol.View{openView()},
		FinalScore: 1,
	}
	opts := client.Options{Version: client.V1}

	ticks := make([]uint32, 0, 1)
	agent := client.AgentFunc(func(view protocol.View, tick uint32) protocol.Action {
		ticks = append(ticks, tick)
		return protocol.Eat
	})

	result, srv, err := run(t, script, opts, agent)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalScore != 1 || result.Ticks != 1 {
		t.Fatalf("result = %+v", result)
	}
	// V1 carries no tick numbers; the client counts locally.
	if len(ticks) != 1 || ticks[0] != 1 {
		t.Fatalf("agent ticks = %v", ticks)
	}
	actions := srv.Actions()
	if len(actions) != 1 || actions[0].Action != protocol.Eat {
		t.Fatalf("server actions = %+v", actions)
	}
}

func TestRunInvalidAgentActionBecomesStay(t *testing.T) {
	script := servertest.Script{
		Version:        servertest.V3,
		ExpectUsername: "alice",
		Ticks:          []protocol.View{openView()},
	}
	opts := client.Options{Version: client.V3, Username: "alice", Code: "c"}
	agent := client.AgentFunc(func(view protocol.View, tick uint32) protocol.Action {
		return protocol.Action("bogus")
	})

	_, srv, err := run(t, script, opts, agent)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	actions := srv.Actions()
	if len(actions) != 1 || actions[0].Action != protocol.Stay {
		t.Fatalf("server actions = %+v, want one stay", actions)
	}
}

func TestRunMetrics(t *testing.T) {
	script := servertest.Script{
		Version:        servertest.V3,
		ExpectUsername: "alice",
		SpawnGameID:    1,
		Ticks:          []protocol.View{openView(), openView()},
	}
	metrics := client.NewMetrics()
	opts := client.Options{Version: client.V3, Username: "alice", Code: "c", Metrics: metrics}

	if _, _, err := run(t, script, opts, bot.Starter{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := metrics.Snapshot()
	if snap["ticks_received"].(int64) != 2 {
		t.Errorf("ticks_received = %v, want 2", snap["ticks_received"])
	}
	if snap["actions_sent"].(int64) != 2 {
		t.Errorf("actions_sent = %v, want 2", snap["actions_sent"])
	}
	if snap["spawns"].(int64) != 1 {
		t.Errorf("spawns = %v, want 1", snap["spawns"])
	}
}

func TestRunContextCancel(t *testing.T) {
	// A server that accepts and then goes silent.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	c, err := client.Dial(ctx, ln.Addr().String(), client.Options{Version: client.V3, Username: "a", Code: "b"})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = c.Run(ctx, bot.Starter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
