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

// Package clock tracks per-side search time under the tournament's active
// time-control mode and enforces the out-of-time rule described for the
// Game Driver.
package clock

import (
	"fmt"
	"time"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
)

// Mode selects which SearchSettings variant is active.
type Mode int

const (
	// Movetime is a fixed per-move budget.
	Movetime Mode = iota
	// Time is a Fischer clock with per-side base time and increment.
	Time
	// Depth is an informational, untimed search-depth limit.
	Depth
	// Nodes is an informational, untimed node-count limit.
	Nodes
	// Infinite disables all timing enforcement.
	Infinite
)

// Settings is the tagged-union time control configured for a game.
type Settings struct {
	Mode Mode

	MoveTime time.Duration

	BTime, WTime time.Duration
	BInc, WInc   time.Duration

	PlyDepth int
	NodeCap  int
}

// ParseMovetime builds a fixed-movetime Settings.
func ParseMovetime(d time.Duration) Settings { return Settings{Mode: Movetime, MoveTime: d} }

// Clock is the mutable per-game timing state derived from Settings. It is
// updated once per ply by the Game Driver and never shared between games.
type Clock struct {
	settings  Settings
	remaining [2]time.Duration
}

// New returns a Clock initialized to the configured base times.
func New(settings Settings) *Clock {
	c := &Clock{settings: settings}
	c.remaining[board.Black] = settings.BTime
	c.remaining[board.White] = settings.WTime
	return c
}

// Remaining returns the given side's remaining time, meaningful only in
// Time mode.
func (c *Clock) Remaining(side board.Color) time.Duration {
	return c.remaining[side]
}

// Params formats the UAI "go" parameters for the side about to move.
func (c *Clock) Params(turn board.Color) string {
	switch c.settings.Mode {
	case Movetime:
		return fmt.Sprintf("movetime %d", c.settings.MoveTime.Milliseconds())
	case Time:
		return fmt.Sprintf(
			"wtime %d btime %d winc %d binc %d",
			c.remaining[board.White].Milliseconds(),
			c.remaining[board.Black].Milliseconds(),
			c.settings.WInc.Milliseconds(),
			c.settings.BInc.Milliseconds(),
		)
	case Depth:
		return fmt.Sprintf("depth %d", c.settings.PlyDepth)
	case Nodes:
		return fmt.Sprintf("nodes %d", c.settings.NodeCap)
	default:
		return "infinite"
	}
}

// Budget returns the wall-clock duration the Engine Session should wait for
// a reply before treating the engine as unresponsive. A zero budget means
// wait indefinitely (Depth/Nodes/Infinite carry no timing enforcement).
func (c *Clock) Budget(turn board.Color, timeoutBuffer time.Duration) time.Duration {
	switch c.settings.Mode {
	case Movetime:
		return c.settings.MoveTime + timeoutBuffer
	case Time:
		return c.remaining[turn]
	default:
		return 0
	}
}

// Update applies the elapsed search time for the side that just moved and
// reports whether that side has lost on time. In Time mode, elapsed is
// subtracted before the loss check, and the side's increment is applied
// only if it is still live; increments are never applied before a side's
// first move because Update is only called after a move is made.
func (c *Clock) Update(turn board.Color, elapsed, timeoutBuffer time.Duration) (outOfTime bool) {
	switch c.settings.Mode {
	case Movetime:
		return elapsed > c.settings.MoveTime+timeoutBuffer

	case Time:
		c.remaining[turn] -= elapsed
		if c.remaining[turn] <= 0 {
			return true
		}
		if turn == board.Black {
			c.remaining[turn] += c.settings.BInc
		} else {
			c.remaining[turn] += c.settings.WInc
		}
		return false

	default:
		return false
	}
}
