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

// Package pgn serializes a finished match.Outcome into a PGN document:
// a header block followed by the movetext and, when adjudicated, the
// reason the game ended early.
package pgn

import (
	"fmt"
	"strconv"
	"strings"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/match"
)

// Header is one "[Key \"Value\"]" tag pair, kept as a slice rather than a
// map so tag order is preserved exactly as built.
type Header struct{ Key, Value string }

// Document is a single PGN game record.
type Document struct {
	Headers []Header
	Moves   []string
}

func (d *Document) add(key, value string) {
	d.Headers = append(d.Headers, Header{key, value})
}

// defaultBlackTag/defaultWhiteTag are the colour header tags Build writes
// the two engine names under.
const (
	defaultBlackTag = "Black"
	defaultWhiteTag = "White"
)

// Build constructs the PGN document for one finished game. Tags are written
// in the order Event, Black, White, FEN, Result, Winner/Loser, Adjudicated,
// PlyCount, Final FEN, Material. The Adjudicated tag is omitted for a
// Normal result and for an engine crash.
func Build(event string, settings match.Settings, outcome match.Outcome) *Document {
	blackTag, whiteTag := defaultBlackTag, defaultWhiteTag

	doc := &Document{}
	doc.add("Event", event)
	doc.add(blackTag, settings.Engine1.Name)
	doc.add(whiteTag, settings.Engine2.Name)
	doc.add("FEN", settings.FEN)

	for _, h := range outcome.History {
		doc.Moves = append(doc.Moves, h.Move.String())
	}

	doc.add("Result", outcome.Result.String())
	switch outcome.Result {
	case board.BlackWin:
		doc.add("Winner", settings.Engine1.Name)
		doc.add("Loser", settings.Engine2.Name)
	case board.WhiteWin:
		doc.add("Winner", settings.Engine2.Name)
		doc.add("Loser", settings.Engine1.Name)
	}

	if reason := adjudicationText(outcome); reason != "" {
		doc.add("Adjudicated", reason)
	}

	diff := outcome.FinalDiff
	sign := ""
	if diff >= 0 {
		sign = "+"
	}
	doc.add("PlyCount", strconv.Itoa(outcome.PlyCount))
	if outcome.EndPos != nil {
		doc.add("Final FEN", outcome.EndPos.FEN())
	}
	doc.add("Material", sign+strconv.Itoa(diff))

	return doc
}

func adjudicationText(outcome match.Outcome) string {
	switch outcome.Reason {
	case match.OutOfTime:
		return "Out of time"
	case match.MaterialImbalance:
		return "Material imbalance"
	case match.EasyFill:
		return "Easy fill"
	case match.Gamelength:
		return "Max game length reached"
	case match.IllegalMove:
		return "Illegal move " + outcome.IllegalToken
	default:
		return ""
	}
}

// String renders the document in standard PGN text form: the header block,
// a blank line, then movetext wrapped with move numbers and the result.
func (d *Document) String() string {
	var b strings.Builder

	for _, h := range d.Headers {
		fmt.Fprintf(&b, "[%s %q]\n", h.Key, h.Value)
	}
	b.WriteByte('\n')

	var result string
	for _, h := range d.Headers {
		if h.Key == "Result" {
			result = h.Value
		}
	}

	for i, m := range d.Moves {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. ", i/2+1)
		}
		b.WriteString(m)
		b.WriteByte(' ')
	}
	b.WriteString(result)
	b.WriteByte('\n')

	return b.String()
}
