package pgn

import (
	"strings"
	"testing"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/engine"
	"laptudirm.com/x/ataxx/pkg/ataxx/match"
)

func TestBuildIllegalMoveHeaders(t *testing.T) {
	settings := match.Settings{
		Engine1: engine.Config{ID: 1, Name: "alpha"},
		Engine2: engine.Config{ID: 2, Name: "beta"},
		FEN:     board.StartFEN,
	}
	pos, err := board.NewPosition(board.StartFEN)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	outcome := match.Outcome{
		Result:       board.WhiteWin,
		Reason:       match.IllegalMove,
		IllegalToken: "xyz",
		EndPos:       pos,
	}

	doc := Build("Test Match", settings, outcome)

	want := map[string]string{
		"Black":       "alpha",
		"White":       "beta",
		"FEN":         board.StartFEN,
		"Result":      "0-1",
		"Winner":      "beta",
		"Loser":       "alpha",
		"Adjudicated": "Illegal move xyz",
		"PlyCount":    "0",
	}
	got := make(map[string]string)
	for _, h := range doc.Headers {
		got[h.Key] = h.Value
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("header %s = %q, want %q", k, got[k], v)
		}
	}
	if len(doc.Moves) != 0 {
		t.Errorf("Moves = %v, want empty", doc.Moves)
	}
}

func TestDocumentStringContainsMoveNumbersAndResult(t *testing.T) {
	doc := &Document{
		Headers: []Header{{"Result", "1-0"}},
		Moves:   []string{"b6", "f2", "c3"},
	}
	s := doc.String()
	if !strings.Contains(s, "1. b6 f2 2. c3") {
		t.Errorf("String() = %q, missing expected movetext", s)
	}
	if !strings.HasSuffix(strings.TrimSpace(s), "1-0") {
		t.Errorf("String() = %q, missing trailing result", s)
	}
}
