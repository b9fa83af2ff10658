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

// Package adjudicate implements the pure, stateless predicates the Game
// Driver consults before every move request to end a game early without
// waiting for a natural terminal position.
package adjudicate

import (
	"time"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
)

// Material bounds an early win by piece-count lead.
type Material struct {
	Pieces int // minimum |black - white| piece-count lead
	Plies  int // minimum plies played before this rule may trigger
}

// Settings are the optional adjudication thresholds configured for a
// tournament. A nil Material or GameLength disables that rule.
type Settings struct {
	Material      *Material
	GameLength    *int
	EasyFill      bool
	TimeoutBuffer time.Duration
}

// Reason identifies which rule, if any, ended a game before a natural
// terminal position.
type Reason int

const (
	None Reason = iota
	MaterialImbalance
	EasyFill
	Gamelength
)

// CanAdjudicateMaterial reports whether the material-imbalance rule fires:
// the piece-count lead is at least Pieces and at least Plies half-moves
// have been played.
func CanAdjudicateMaterial(pos *board.Position, plyCount int, m Material) bool {
	if plyCount < m.Plies {
		return false
	}
	diff := pos.PieceCount(board.Black) - pos.PieceCount(board.White)
	if diff < 0 {
		diff = -diff
	}
	return diff >= m.Pieces
}

// MaterialWinner returns the side with strictly more pieces on the board.
// Only meaningful when CanAdjudicateMaterial has triggered, at which point
// the two counts cannot be equal.
func MaterialWinner(pos *board.Position) board.Color {
	if pos.PieceCount(board.Black) > pos.PieceCount(board.White) {
		return board.Black
	}
	return board.White
}

// CanAdjudicateEasyFill reports whether the side to move must pass and the
// opponent can fill every remaining empty square without needing a jump,
// i.e. the outcome is a foregone conclusion.
func CanAdjudicateEasyFill(pos *board.Position) bool {
	if pos.HasLegalMoves() {
		return false
	}

	opponent := pos.Turn().Opp()
	reachable := pos.Pieces(opponent).Singles()
	empty := pos.Empty()

	return empty.Data&^reachable.Data == 0 && !empty.Empty()
}

// EasyFillWinner returns the non-moving side, the winner of an easy-fill
// adjudication.
func EasyFillWinner(pos *board.Position) board.Color {
	return pos.Turn().Opp()
}

// CanAdjudicateGamelength reports whether the configured maximum ply count
// has been reached. The result of such an adjudication is always a draw.
func CanAdjudicateGamelength(plyCount, maxPlies int) bool {
	return plyCount >= maxPlies
}

// Check applies the three rules in their fixed precedence — material,
// then easy-fill, then game length — and returns the first one that fires,
// along with the board.Result it implies. It returns Reason None if no
// rule fires.
func Check(pos *board.Position, plyCount int, settings Settings) (Reason, board.Result) {
	if settings.Material != nil && CanAdjudicateMaterial(pos, plyCount, *settings.Material) {
		return MaterialImbalance, board.WinFor(MaterialWinner(pos))
	}

	if settings.EasyFill && CanAdjudicateEasyFill(pos) {
		return EasyFill, board.WinFor(EasyFillWinner(pos))
	}

	if settings.GameLength != nil && CanAdjudicateGamelength(plyCount, *settings.GameLength) {
		return Gamelength, board.Draw
	}

	return None, board.None
}
