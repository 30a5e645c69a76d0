// The shim is the example AI client: it connects to the game server, relays
// authentication, prints each tick's view and answers with the bundled
// placeholder agent. Replace the agent with your own to actually compete.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisdewar/pacman-tournament/bot"
	"github.com/louisdewar/pacman-tournament/client"
	"github.com/louisdewar/pacman-tournament/config"
	"github.com/louisdewar/pacman-tournament/logging"
	"github.com/louisdewar/pacman-tournament/protocol"
)

func main() {
	cfg := config.Load()

	var (
		addr       string
		username   string
		code       string
		credsFile  string
		credsIndex int
		proto      int
		debugAddr  string
		logFile    string
		quiet      bool
	)
	flag.StringVar(&addr, "addr", cfg.Addr, "game server address, host:port")
	flag.StringVar(&username, "username", cfg.Username, "account username")
	flag.StringVar(&code, "code", cfg.Code, "account code (protocol 3)")
	flag.StringVar(&credsFile, "creds", cfg.CredsFile, "creds file with 'username code' lines")
	flag.IntVar(&credsIndex, "creds-index", cfg.CredsIndex, "1-based entry in the creds file")
	flag.IntVar(&proto, "proto", 3, "protocol generation to speak: 1, 2 or 3")
	flag.StringVar(&debugAddr, "debug-addr", cfg.DebugAddr, "serve /metrics and /healthz on this address (empty disables)")
	flag.StringVar(&logFile, "log", cfg.LogFile, "log file path")
	flag.BoolVar(&quiet, "quiet", false, "suppress per-tick view output")
	flag.Parse()

	if err := logging.Init(logFile); err != nil {
		panic(err)
	}
	defer logging.Sync()
	log := logging.Log

	cfg.Username, cfg.Code = username, code
	cfg.CredsFile, cfg.CredsIndex = credsFile, credsIndex
	creds, err := cfg.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Fatalf("resolving credentials: %v", err)
	}

	version := client.Version(proto)
	if version != client.V1 && version != client.V2 && version != client.V3 {
		log.Fatalf("unknown protocol generation %d", proto)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := client.NewMetrics()
	if debugAddr != "" {
		startDebugServer(debugAddr, metrics)
	}

	fmt.Printf("Connecting to %s\n", addr)
	c, err := client.Dial(ctx, addr, client.Options{
		Version:  version,
		Username: creds.Username,
		Code:     creds.Code,
		Logger:   log,
		Metrics:  metrics,
		OnSpawned: func(gameID int) {
			fmt.Printf("You have been spawned into game id %d\n", gameID)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Fatalf("connect: %v", err)
	}

	// Your code goes here: swap bot.Reference for your own Agent.
	var strategy client.Agent = bot.Reference{}
	agent := client.AgentFunc(func(view protocol.View, tick uint32) protocol.Action {
		action := strategy.ChooseAction(view, tick)
		if !quiet {
			fmt.Println("------------")
			fmt.Print(view.Render())
			fmt.Println("------------")
			fmt.Println("Playing action", string(action))
		}
		return action
	})

	result, err := c.Run(ctx, agent)
	if err != nil {
		var serverErr *client.ServerError
		switch {
		case errors.As(err, &serverErr):
			fmt.Println("There was an error:", serverErr.Reason)
			log.Warnf("server rejected session: %s", serverErr.Reason)
		case ctx.Err() != nil:
			log.Info("shutting down")
		default:
			fmt.Fprintln(os.Stderr, err)
			log.Errorf("session failed: %v", err)
		}
		return
	}

	fmt.Println("You died, your final score was", result.FinalScore)
	log.Infow("session over",
		"final_score", result.FinalScore,
		"game_id", result.GameID,
		"ticks", result.Ticks,
	)
}

// startDebugServer exposes session counters for monitoring while the shim
// runs. GET /metrics returns a JSON snapshot.
func startDebugServer(addr string, metrics *client.Metrics) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Snapshot())
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		logging.Log.Infof("debug endpoint on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logging.Log.Errorf("debug endpoint: %v", err)
		}
	}()
}
