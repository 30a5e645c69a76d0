// Package config loads client settings from the environment (optionally a
// .env file) and from a tournament creds file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the bundled binaries need to reach a server.
type Config struct {
	// Addr is the competitor endpoint, host:port.
	Addr string
	// SpectatorURL is the spectator WebSocket endpoint, ws://host:port.
	SpectatorURL string
	Username     string
	Code         string
	// CredsFile/CredsIndex select a username+code pair from a creds file
	// instead of Username/Code.
	CredsFile  string
	CredsIndex int
	// DebugAddr, when set, serves /metrics and /healthz on this address.
	DebugAddr string
	// LogFile is where the rolling log goes.
	LogFile string
}

const (
	defaultAddr         = "localhost:2010"
	defaultSpectatorURL = "ws://localhost:3002"
	defaultLogFile      = "shim.log"
)

// Load reads PACMAN_* environment variables, after loading a .env file if
// one is present in the working directory. Missing variables fall back to
// the defaults the original server shipped with.
func Load() Config {
	// A missing .env is fine: plain environment variables still apply.
	_ = godotenv.Load()

	cfg := Config{
		Addr:         getenv("PACMAN_ADDR", defaultAddr),
		SpectatorURL: getenv("PACMAN_SPECTATOR_URL", defaultSpectatorURL),
		Username:     os.Getenv("PACMAN_USERNAME"),
		Code:         os.Getenv("PACMAN_CODE"),
		CredsFile:    os.Getenv("PACMAN_CREDS_FILE"),
		DebugAddr:    os.Getenv("PACMAN_DEBUG_ADDR"),
		LogFile:      getenv("PACMAN_LOG_FILE", defaultLogFile),
	}
	if v := os.Getenv("PACMAN_CREDS_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CredsIndex = n
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Creds is one username+code pair from a creds file.
type Creds struct {
	Username string
	Code     string
}

// ReadCreds parses a creds file: one "username code" pair per line, blank
// lines ignored, and returns the pair at the 1-based index.
func ReadCreds(path string, index int) (Creds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Creds{}, fmt.Errorf("read creds file: %w", err)
	}

	var pairs []Creds
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return Creds{}, fmt.Errorf("creds file %s line %d: want \"username code\", got %q", path, i+1, line)
		}
		pairs = append(pairs, Creds{Username: fields[0], Code: fields[1]})
	}

	if index < 1 || index > len(pairs) {
		return Creds{}, fmt.Errorf("creds index %d out of range, file has %d entries", index, len(pairs))
	}
	return pairs[index-1], nil
}

// Resolve returns the credentials to authenticate with: the creds file entry
// when CredsFile is set, otherwise Username/Code.
func (c Config) Resolve() (Creds, error) {
	if c.CredsFile != "" {
		index := c.CredsIndex
		if index == 0 {
			index = 1
		}
		return ReadCreds(c.CredsFile, index)
	}
	return Creds{Username: c.Username, Code: c.Code}, nil
}
