// play is a manual client: it draws the 3x4 view in the terminal and lets a
// human pick each tick's action from the keyboard. Handy for learning the
// game before writing an agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/nsf/termbox-go"

	"github.com/louisdewar/pacman-tournament/client"
	"github.com/louisdewar/pacman-tournament/config"
	"github.com/louisdewar/pacman-tournament/logging"
	"github.com/louisdewar/pacman-tournament/protocol"
)

func main() {
	cfg := config.Load()

	var (
		addr     string
		username string
		code     string
		logFile  string
	)
	flag.StringVar(&addr, "addr", cfg.Addr, "game server address, host:port")
	flag.StringVar(&username, "username", cfg.Username, "account username")
	flag.StringVar(&code, "code", cfg.Code, "account code")
	flag.StringVar(&logFile, "log", cfg.LogFile, "log file path")
	flag.Parse()

	// Logs go to a file: termbox owns the terminal from here on.
	if err := logging.Init(logFile); err != nil {
		panic(err)
	}
	defer logging.Sync()
	log := logging.Log

	if err := termbox.Init(); err != nil {
		log.Fatalf("termbox: %v", err)
	}
	defer termbox.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := &inputState{}
	go pollKeys(input, cancel)

	c, err := client.Dial(ctx, addr, client.Options{
		Version:  client.V3,
		Username: username,
		Code:     code,
		Logger:   log,
	})
	if err != nil {
		termbox.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ui := &boardUI{input: input}
	result, err := c.Run(ctx, ui)

	termbox.Close()
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Quit")
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("You died, your final score was", result.FinalScore)
}

// inputState holds the most recent keypress; the latest one before a tick
// wins and is consumed by it.
type inputState struct {
	mu      sync.Mutex
	pending protocol.Action
}

func (s *inputState) set(a protocol.Action) {
	s.mu.Lock()
	s.pending = a
	s.mu.Unlock()
}

// take returns the pending action, defaulting to Stay, and clears it.
func (s *inputState) take() protocol.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.pending
	s.pending = ""
	if a == "" {
		return protocol.Stay
	}
	return a
}

// pollKeys maps keys to actions: arrows or F/L/R to move and turn, E to
// eat, S to stay, Esc to quit.
func pollKeys(input *inputState, quit func()) {
	for {
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}
		if ev.Key == termbox.KeyEsc {
			quit()
			return
		}
		switch ev.Key {
		case termbox.KeyArrowUp:
			input.set(protocol.Forward)
			continue
		case termbox.KeyArrowLeft:
			input.set(protocol.TurnLeft)
			continue
		case termbox.KeyArrowRight:
			input.set(protocol.TurnRight)
			continue
		}
		switch ev.Ch {
		case 'f', 'F':
			input.set(protocol.Forward)
		case 'l', 'L':
			input.set(protocol.TurnLeft)
		case 'r', 'R':
			input.set(protocol.TurnRight)
		case 'e', 'E':
			input.set(protocol.Eat)
		case 's', 'S':
			input.set(protocol.Stay)
		}
	}
}

// boardUI implements client.Agent: each tick it redraws the view and plays
// whatever the human pressed since the last tick.
type boardUI struct {
	input      *inputState
	lastAction protocol.Action
}

func (ui *boardUI) ChooseAction(view protocol.View, tick uint32) protocol.Action {
	action := ui.input.take()
	ui.draw(view, tick)
	ui.lastAction = action
	return action
}

const cellWidth = 4

func tileColor(base protocol.BaseTile) termbox.Attribute {
	switch base {
	case protocol.Land:
		return termbox.ColorGreen
	case protocol.Water:
		return termbox.ColorBlue
	default:
		return termbox.ColorDarkGray
	}
}

func (ui *boardUI) draw(view protocol.View, tick uint32) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for y := 0; y < protocol.ViewHeight; y++ {
		for x := 0; x < protocol.ViewWidth; x++ {
			tile := view[x][y]
			bg := tileColor(tile.Base)
			ch := ' '
			fg := termbox.ColorWhite
			switch {
			case tile.Mob != nil:
				ch = 'M'
				fg = termbox.ColorRed
			case tile.Player != nil && tile.Player.IsCurrentPlayer:
				ch = '@'
				fg = termbox.ColorYellow
			case tile.Player != nil:
				ch = 'P'
				fg = termbox.ColorMagenta
			}
			for i := 0; i < cellWidth; i++ {
				c := ' '
				if i == cellWidth/2 {
					c = ch
				}
				termbox.SetCell(x*cellWidth+i, y, rune(c), fg, bg)
			}
		}
	}

	statusY := protocol.ViewHeight + 1
	drawString(0, statusY, fmt.Sprintf("Tick %d | last action: %s", tick, actionLabel(ui.lastAction)))
	drawString(0, statusY+1, "Keys: arrows/F move+turn, E eat, S stay, Esc quit")
	termbox.Flush()
}

func actionLabel(a protocol.Action) string {
	switch a {
	case protocol.Forward:
		return "forward"
	case protocol.TurnLeft:
		return "turn left"
	case protocol.TurnRight:
		return "turn right"
	case protocol.Eat:
		return "eat"
	case protocol.Stay:
		return "stay"
	}
	return "-"
}

func drawString(x, y int, text string) {
	for i, c := range text {
		termbox.SetCell(x+i, y, c, termbox.ColorDefault, termbox.ColorDefault)
	}
}
