package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptEngine writes a tiny shell "engine" that echoes canned UAI replies
// and returns its path. It is skipped on platforms without /bin/sh.
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

func TestSessionHandshakeAndBestmove(t *testing.T) {
	path := scriptEngine(t, `
while read -r line; do
  case "$line" in
    uai) echo uaiok ;;
    isready) echo readyok ;;
    "position "*) ;;
    "go "*) echo "bestmove d4" ;;
    quit) exit 0 ;;
  esac
done
`)

	var sent, recv []string
	session, err := Start(Config{Name: "test", Path: path, Protocol: "uai"},
		func(l string) { sent = append(sent, l) },
		func(l string) { recv = append(recv, l) },
	)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer session.Quit()

	if err := session.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := session.IsReady(); err != nil {
		t.Fatalf("IsReady: %v", err)
	}
	if err := session.Position(board_start, nil); err != nil {
		t.Fatalf("Position: %v", err)
	}

	move, err := session.Go("movetime 1000", 2*time.Second)
	if err != nil {
		t.Fatalf("Go: %v", err)
	}
	if move != "d4" {
		t.Errorf("Go() = %q, want d4", move)
	}

	if len(sent) == 0 || len(recv) == 0 {
		t.Errorf("expected on_send/on_recv observers to be invoked")
	}
}

// An engine that never replies at all is eventually killed once budget
// plus KillGrace elapses, and Go surfaces that as an error once the closed
// pipe reaches the read loop.
func TestSessionGoErrorsWhenEngineNeverReplies(t *testing.T) {
	path := scriptEngine(t, `
while read -r line; do
  case "$line" in
    uai) echo uaiok ;;
    "go "*) sleep 5 ;;
  esac
done
`)

	session, err := Start(Config{Name: "hang", Path: path, Protocol: "uai"}, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer session.Close()

	if err := session.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, err = session.Go("movetime 50", 100*time.Millisecond)
	if err == nil {
		t.Fatalf("Go should have errored once the engine was killed for never replying")
	}
}

// A reply that arrives after budget has elapsed, but before the kill
// grace period is up, is still delivered rather than discarded as a
// timeout: the watchdog only closes stdin, it doesn't give up on reading.
func TestSessionGoReturnsLateReplyInsteadOfDiscardingIt(t *testing.T) {
	path := scriptEngine(t, `
while read -r line; do
  case "$line" in
    uai) echo uaiok ;;
    "go "*) sleep 0.2; echo "bestmove d4" ;;
  esac
done
`)

	session, err := Start(Config{Name: "slow", Path: path, Protocol: "uai"}, nil, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer session.Close()

	if err := session.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	move, err := session.Go("movetime 50", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Go: %v", err)
	}
	if move != "d4" {
		t.Errorf("Go() = %q, want d4", move)
	}
}

const board_start = "x5o/7/7/7/7/7/o5x x 0 1"
