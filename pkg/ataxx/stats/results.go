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

// Package stats aggregates finished-game results into per-engine totals and
// a pairwise cross-table, and reports Elo/LLR derived from those totals.
package stats

import (
	"fmt"
	"strings"
	"sync"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
)

// Totals is one engine's aggregate record across every game it played,
// regardless of opponent or colour.
type Totals struct {
	Wins, Draws, Losses int
}

func (t Totals) Played() int { return t.Wins + t.Draws + t.Losses }

// pairKey normalizes an unordered engine pair, lowest id first.
type pairKey struct{ lo, hi int }

func makePairKey(a, b int) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// Crosstable is one pair's head-to-head record, from the lower-id engine's
// perspective.
type Crosstable struct {
	Wins, Draws, Losses int
}

// Results is the mutable, concurrency-safe aggregate the Match Coordinator
// folds every finished GameOutcome into. Reading it after N Record calls
// always reflects the multiset-sum of those N outcomes, independent of the
// order those calls arrived in — the linearizability the coordinator
// depends on when many games finish concurrently.
type Results struct {
	mu    sync.Mutex
	total map[int]*Totals
	cross map[pairKey]*Crosstable
}

// New returns an empty Results aggregate.
func New() *Results {
	return &Results{
		total: make(map[int]*Totals),
		cross: make(map[pairKey]*Crosstable),
	}
}

// Record folds one finished game's result into the aggregate. black and
// white are the engine ids that played Black and White respectively.
func (r *Results) Record(black, white int, result board.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bt := r.totalsFor(black)
	wt := r.totalsFor(white)
	ct := r.crosstableFor(black, white)

	switch result {
	case board.BlackWin:
		bt.Wins++
		wt.Losses++
		r.recordCross(ct, black, white, true)
	case board.WhiteWin:
		bt.Losses++
		wt.Wins++
		r.recordCross(ct, black, white, false)
	case board.Draw:
		bt.Draws++
		wt.Draws++
		ct.Draws++
	}
}

func (r *Results) recordCross(ct *Crosstable, black, white int, blackWon bool) {
	key := makePairKey(black, white)
	loWon := (key.lo == black) == blackWon
	if loWon {
		ct.Wins++
	} else {
		ct.Losses++
	}
}

func (r *Results) totalsFor(id int) *Totals {
	t, ok := r.total[id]
	if !ok {
		t = &Totals{}
		r.total[id] = t
	}
	return t
}

func (r *Results) crosstableFor(a, b int) *Crosstable {
	key := makePairKey(a, b)
	c, ok := r.cross[key]
	if !ok {
		c = &Crosstable{}
		r.cross[key] = c
	}
	return c
}

// Totals returns a copy of the given engine's aggregate record.
func (r *Results) Totals(id int) Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.total[id]; ok {
		return *t
	}
	return Totals{}
}

// Crosstable returns a's head-to-head record against b, from a's
// perspective, regardless of which of the two ids is lower.
func (r *Results) Crosstable(a, b int) Crosstable {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := makePairKey(a, b)
	c, ok := r.cross[key]
	if !ok {
		return Crosstable{}
	}
	if key.lo == a {
		return *c
	}
	return Crosstable{Wins: c.Losses, Draws: c.Draws, Losses: c.Wins}
}

// Engines returns every engine id that has recorded at least one game, in
// ascending order.
func (r *Results) Engines() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.total))
	for id := range r.total {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// DefaultElo0 and DefaultElo1 are the null/alternative elo hypotheses
// Report's SPRT line tests against when a Results is built with New,
// chosen to match the "did this change lose elo / gain elo" bracket
// fishtest-style engine testing uses by default.
const (
	DefaultElo0 = 0.0
	DefaultElo1 = 5.0

	// DefaultAlpha and DefaultBeta are the SPRT's type-1/type-2 error
	// rates: 5% chance of accepting elo1 when elo0 holds, and vice versa.
	DefaultAlpha = 0.05
	DefaultBeta  = 0.05
)

// Report renders a Bayeselo-style standings table: one line per engine
// with its W/D/L record, an Elo estimate with its 95% confidence
// interval, and an SPRT log-likelihood ratio against DefaultElo0/
// DefaultElo1, all derived from Elo and LLR.
func (r *Results) Report() string {
	lower, upper := StoppingBounds(DefaultAlpha, DefaultBeta)

	var b strings.Builder
	for _, id := range r.Engines() {
		t := r.Totals(id)
		muMin, elo, muMax := Elo(t.Wins, t.Draws, t.Losses)
		llr := LLR(t.Wins, t.Draws, t.Losses, DefaultElo0, DefaultElo1)
		fmt.Fprintf(&b, "engine %d: +%d -%d =%d  (%d games, elo %+.1f [%+.1f, %+.1f], llr %.2f (%.2f, %.2f) [%.1f, %.1f])\n",
			id, t.Wins, t.Losses, t.Draws, t.Played(), elo, muMin, muMax,
			llr, lower, upper, DefaultElo0, DefaultElo1)
	}
	return b.String()
}
