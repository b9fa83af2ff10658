package tournament

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/config"
	"laptudirm.com/x/ataxx/pkg/ataxx/engine"
)

func scriptEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "engine.sh")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

const handshakeOnlyUAI = `
while read -r line; do
  case "$line" in
    uai) echo uaiok ;;
    uainewgame) ;;
    isready) echo readyok ;;
    quit) exit 0 ;;
  esac
done
`

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	gameLength := 0

	cfg := &config.Config{
		Event:       "Test Event",
		Concurrency: 1,
		Engines: []engine.Config{
			{ID: 1, Name: "alpha", Path: scriptEngine(t, handshakeOnlyUAI), Protocol: "uai"},
			{ID: 2, Name: "beta", Path: scriptEngine(t, handshakeOnlyUAI), Protocol: "uai"},
		},
	}
	cfg.Schedule.Games = 2
	cfg.Schedule.Openings = 1
	cfg.Schedule.Repeat = true
	cfg.TimeControl.Mode = "movetime"
	cfg.TimeControl.Movetime = "50ms"
	cfg.Adjudication.GameLength = &gameLength

	return cfg
}

func TestCoordinatorRunsExactlyTotalGamesAndAggregatesDraws(t *testing.T) {
	cfg := newTestConfig(t)

	var mu sync.Mutex
	var started, finished int
	inc := func(p *int) {
		mu.Lock()
		defer mu.Unlock()
		*p++
	}

	co, err := New(cfg, Callbacks{
		OnGameStarted:  func(int, string, string, string) { inc(&started) },
		OnGameFinished: func(int, board.Result, string, string) { inc(&finished) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := co.Run(ctx, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if started != 2 || finished != 2 {
		t.Errorf("started=%d finished=%d, want 2/2", started, finished)
	}

	a := co.Results.Totals(1)
	b := co.Results.Totals(2)
	if a.Draws != 2 || b.Draws != 2 {
		t.Errorf("totals = alpha:%+v beta:%+v, want 2 draws each (gamelength=0 forces an immediate draw)", a, b)
	}
}

func TestCoordinatorStopPreventsFurtherGames(t *testing.T) {
	cfg := newTestConfig(t)
	co, err := New(cfg, Callbacks{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	co.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := co.Run(ctx, 100); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if co.Results.Totals(1).Played() != 0 {
		t.Errorf("expected no games to run after Stop, played %d", co.Results.Totals(1).Played())
	}
}
