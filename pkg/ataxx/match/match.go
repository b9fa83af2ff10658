// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package match runs a single Ataxx game to a terminal result between two
// already-initialized Engine Sessions, consulting the Adjudicator before
// every move request and updating the Clock after every move.
package match

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/ataxx/pkg/ataxx/adjudicate"
	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/clock"
	"laptudirm.com/x/ataxx/pkg/ataxx/engine"
)

// ResultReason records why a GameOutcome's Result was reached.
type ResultReason int

const (
	ReasonNone ResultReason = iota
	Normal
	OutOfTime
	MaterialImbalance
	EasyFill
	Gamelength
	IllegalMove
	EngineCrash
)

func (r ResultReason) String() string {
	switch r {
	case Normal:
		return "Normal"
	case OutOfTime:
		return "Out of time"
	case MaterialImbalance:
		return "Material imbalance"
	case EasyFill:
		return "Easy fill"
	case Gamelength:
		return "Max game length reached"
	case IllegalMove:
		return "Illegal move"
	case EngineCrash:
		return "Engine crash"
	default:
		return "None"
	}
}

// Settings is the configuration for one game: which engines play, the
// opening FEN, the adjudication thresholds, and the time control.
type Settings struct {
	Engine1, Engine2 engine.Config // Engine1 plays Black, Engine2 plays White.
	FEN              string

	Adjudication adjudicate.Settings
	Clock        clock.Settings
}

// Validate checks the invariants spec.md requires of GameSettings.
func (s Settings) Validate() error {
	if s.Engine1.ID == s.Engine2.ID {
		return fmt.Errorf("match: engine1.id == engine2.id (%d)", s.Engine1.ID)
	}
	if s.FEN == "" {
		return fmt.Errorf("match: fen must not be empty")
	}
	return nil
}

// HistoryEntry is one played move and how long its engine took to produce
// it.
type HistoryEntry struct {
	Move      board.Move
	ElapsedMS int64
}

// Outcome is the terminal record of a finished game, constructed empty by
// Run, filled as the game progresses, and returned exactly once.
type Outcome struct {
	Result board.Result
	Reason ResultReason

	StartPos *board.Position
	EndPos   *board.Position

	History   []HistoryEntry
	PlyCount  int
	FinalDiff int // black piece count - white piece count, at EndPos

	// IllegalToken is set only when Reason == IllegalMove: the raw token
	// the offending engine sent.
	IllegalToken string
}

// Callbacks observes one game's progress. Send/receive line observers are
// not part of it: they are the onSend/onRecv arguments of engine.Start.
// Run only fires OnMove, once per ply played. A nil OnMove is treated as a
// no-op. The tournament Coordinator passes nil line observers to
// engine.Start and an empty Callbacks to Run, so neither kind of observer
// fires during a tournament. Implementations must be safe to call
// from any goroutine, since many games may run concurrently.
type Callbacks struct {
	OnMove func(move board.Move, elapsedMS int64)
}

func (c Callbacks) move(m board.Move, elapsedMS int64) {
	if c.OnMove != nil {
		c.OnMove(m, elapsedMS)
	}
}

// sideIndex maps a color to its fixed engine index: Engine1 is always
// Black, Engine2 is always White, for the lifetime of one game.
func sideIndex(c board.Color) int {
	if c == board.Black {
		return 0
	}
	return 1
}

// Run plays one game between sessions[0] (Black) and sessions[1] (White)
// under settings, and returns the finished Outcome. Callers own the
// sessions before and after the call; Run neither creates nor destroys
// them.
func Run(settings Settings, sessions [2]*engine.Session, callbacks Callbacks) Outcome {
	var outcome Outcome

	pos, err := board.NewPosition(settings.FEN)
	if err != nil {
		// Configuration errors are caught by Settings.Validate before a
		// game ever starts; a bad FEN reaching here is a programming
		// error in the caller, not a playable failure mode.
		panic(fmt.Sprintf("match: invalid fen %q: %v", settings.FEN, err))
	}
	outcome.StartPos = pos.Clone()

	clk := clock.New(settings.Clock)
	ply := 0
	movesSinceStart := make([]string, 0, 64)

	for i, session := range sessions {
		name := settings.Engine1.Name
		if i == 1 {
			name = settings.Engine2.Name
		}
		if err := session.NewGame(); err != nil {
			outcome.Reason = EngineCrash
			outcome.Result = board.WinFor(colorOf(i).Opp())
			logrus.Warnf("match: %s failed newgame: %v", name, err)
			outcome.EndPos = pos
			return outcome
		}
		if err := session.IsReady(); err != nil {
			outcome.Reason = EngineCrash
			outcome.Result = board.WinFor(colorOf(i).Opp())
			logrus.Warnf("match: %s failed isready: %v", name, err)
			outcome.EndPos = pos
			return outcome
		}
	}

loop:
	for {
		if pos.IsGameOver() {
			break
		}

		if reason, result := adjudicate.Check(pos, ply, settings.Adjudication); reason != adjudicate.None {
			outcome.Reason = fromAdjudicateReason(reason)
			outcome.Result = result
			break
		}

		turn := pos.Turn()
		idx := sideIndex(turn)
		session := sessions[idx]
		name := engineName(settings, idx)

		if err := session.Position(settings.FEN, movesSinceStart); err != nil {
			outcome.Reason = EngineCrash
			outcome.Result = board.WinFor(turn.Opp())
			logrus.Warnf("match: %s failed position: %v", name, err)
			break
		}
		if err := session.IsReady(); err != nil {
			outcome.Reason = EngineCrash
			outcome.Result = board.WinFor(turn.Opp())
			logrus.Warnf("match: %s failed isready: %v", name, err)
			break
		}

		// session.Go's budget only drives a liveness watchdog (stdin close,
		// then Process.Kill after engine.KillGrace): a reply that arrives
		// late still comes back here and is checked for legality below,
		// exactly as original_source/src/core/play.cpp does with its
		// unbounded engine->go() wait. A non-nil err here means the engine
		// never replied at all before being killed, i.e. it crashed.
		budget := clk.Budget(turn, settings.Adjudication.TimeoutBuffer)

		t0 := time.Now()
		movestr, err := session.Go(clk.Params(turn), budget)
		elapsed := time.Since(t0)

		if err != nil {
			outcome.Reason = EngineCrash
			outcome.Result = board.WinFor(turn.Opp())
			logrus.Warnf("match: %s crashed: %v", name, err)
			break
		}

		move, perr := board.ParseMove(movestr)
		if perr != nil || !pos.IsLegalMove(move) {
			outcome.Reason = IllegalMove
			outcome.Result = board.WinFor(turn.Opp())
			outcome.IllegalToken = movestr
			fmt.Printf("Illegal move %q played by %s\n\n", movestr, name)
			break
		}

		ply++
		outcome.History = append(outcome.History, HistoryEntry{move, elapsed.Milliseconds()})
		movesSinceStart = append(movesSinceStart, move.String())
		callbacks.move(move, elapsed.Milliseconds())

		if clk.Update(turn, elapsed, settings.Adjudication.TimeoutBuffer) {
			outcome.Reason = OutOfTime
			outcome.Result = board.WinFor(turn.Opp())
			break loop
		}

		pos.MakeMove(move)
	}

	if outcome.Result == board.None {
		result, _ := pos.Result()
		outcome.Result = result
		outcome.Reason = Normal
	}

	outcome.PlyCount = ply
	outcome.EndPos = pos
	outcome.FinalDiff = pos.PieceCount(board.Black) - pos.PieceCount(board.White)

	return outcome
}

func colorOf(idx int) board.Color {
	if idx == 0 {
		return board.Black
	}
	return board.White
}

func engineName(settings Settings, idx int) string {
	if idx == 0 {
		return settings.Engine1.Name
	}
	return settings.Engine2.Name
}

func fromAdjudicateReason(r adjudicate.Reason) ResultReason {
	switch r {
	case adjudicate.MaterialImbalance:
		return MaterialImbalance
	case adjudicate.EasyFill:
		return EasyFill
	case adjudicate.Gamelength:
		return Gamelength
	default:
		return Normal
	}
}
