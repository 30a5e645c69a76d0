// spectate tails the tournament's spectator feed and prints what happens in
// each game.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisdewar/pacman-tournament/config"
	"github.com/louisdewar/pacman-tournament/logging"
	"github.com/louisdewar/pacman-tournament/spectator"
)

func main() {
	cfg := config.Load()

	var (
		url     string
		gameID  int
		logFile string
	)
	flag.StringVar(&url, "url", cfg.SpectatorURL, "spectator endpoint, ws://host:port")
	flag.IntVar(&gameID, "game", 0, "follow a single game id (0 follows everything)")
	flag.StringVar(&logFile, "log", cfg.LogFile, "log file path")
	flag.Parse()

	if err := logging.Init(logFile); err != nil {
		panic(err)
	}
	defer logging.Sync()
	log := logging.Log

	filter := spectator.AllGames()
	if gameID != 0 {
		filter = spectator.Game(gameID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := spectator.Dial(ctx, url, filter, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	fmt.Printf("Watching %s\n", url)
	for {
		msg, err := c.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			log.Errorf("feed closed: %v", err)
			os.Exit(1)
		}
		print(msg)
	}
}

func print(msg spectator.Message) {
	switch m := msg.(type) {
	case *spectator.Initial:
		entities := 0
		for _, e := range m.Entities {
			if e != nil {
				entities++
			}
		}
		fmt.Printf("game %d: snapshot %dx%d, %d entities\n", m.GameID, m.Width, m.Height, entities)
	case *spectator.Delta:
		fmt.Printf("game %d: %d died, %d moved, %d spawned, %d food eaten, %d food spawned, %d changed\n",
			m.GameID,
			len(m.EntityDied), len(m.EntityMoved), len(m.EntitySpawned),
			len(m.FoodEaten), len(m.FoodSpawned), len(m.MetadataChanged),
		)
	case *spectator.Leaderboard:
		fmt.Println("leaderboard:")
		for i, u := range m.Users {
			fmt.Printf("  %2d. %s (%d)\n", i+1, u.Username, u.HighScore)
		}
	}
}
