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

package engine

import "fmt"

// Protocol supplies the concrete command and token strings for one of the
// capability-equivalent text protocols an Ataxx engine may speak. Session
// plumbing (process, line reading, timeouts) is identical across protocols;
// only the tokens differ.
type Protocol interface {
	// Handshake is the identity-request line sent on init.
	Handshake() string
	// HandshakeOK is the expected acknowledgement line.
	HandshakeOK() string

	// NewGame is the new-game notification line.
	NewGame() string

	// Ready is the readiness probe line.
	Ready() string
	// ReadyOK is the expected readiness-token line.
	ReadyOK() string

	// SetOption formats an option-set command.
	SetOption(name, value string) string

	// Position formats a position command from a FEN and a move list
	// applied since that FEN.
	Position(fen string, moves []string) string

	// Go formats a search command from UAI-style go parameters.
	Go(params string) string

	// BestMovePrefix is the prefix of the inbound line carrying the
	// engine's chosen move, e.g. "bestmove ".
	BestMovePrefix() string

	Stop() string
	Quit() string
}

// uai implements the Universal Ataxx Interface, the protocol named in the
// specification.
type uai struct{}

func (uai) Handshake() string             { return "uai" }
func (uai) HandshakeOK() string           { return "uaiok" }
func (uai) NewGame() string                { return "uainewgame" }
func (uai) Ready() string                  { return "isready" }
func (uai) ReadyOK() string                { return "readyok" }
func (uai) SetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}
func (uai) Position(fen string, moves []string) string {
	s := fmt.Sprintf("position fen %s moves", fen)
	for _, m := range moves {
		s += " " + m
	}
	return s
}
func (uai) Go(params string) string   { return "go " + params }
func (uai) BestMovePrefix() string    { return "bestmove " }
func (uai) Stop() string              { return "stop" }
func (uai) Quit() string              { return "quit" }

// ugi implements the Universal Game Interface, a sibling protocol that uses
// "ugi"/"ugiok" in place of "uai"/"uaiok" and is otherwise identical.
type ugi struct{}

func (ugi) Handshake() string             { return "ugi" }
func (ugi) HandshakeOK() string           { return "ugiok" }
func (ugi) NewGame() string                { return "uginewgame" }
func (ugi) Ready() string                  { return "isready" }
func (ugi) ReadyOK() string                { return "readyok" }
func (ugi) SetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}
func (ugi) Position(fen string, moves []string) string {
	s := fmt.Sprintf("position fen %s moves", fen)
	for _, m := range moves {
		s += " " + m
	}
	return s
}
func (ugi) Go(params string) string { return "go " + params }
func (ugi) BestMovePrefix() string  { return "bestmove " }
func (ugi) Stop() string            { return "stop" }
func (ugi) Quit() string            { return "quit" }

// gtp implements a Katago-like GTP dialect: same request/response shape as
// UAI but with GTP's historical token names.
type gtp struct{}

func (gtp) Handshake() string             { return "gtp" }
func (gtp) HandshakeOK() string           { return "gtpok" }
func (gtp) NewGame() string                { return "clear_board" }
func (gtp) Ready() string                  { return "isready" }
func (gtp) ReadyOK() string                { return "readyok" }
func (gtp) SetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}
func (gtp) Position(fen string, moves []string) string {
	s := fmt.Sprintf("position fen %s moves", fen)
	for _, m := range moves {
		s += " " + m
	}
	return s
}
func (gtp) Go(params string) string { return "genmove " + params }
func (gtp) BestMovePrefix() string  { return "= " }
func (gtp) Stop() string            { return "stop" }
func (gtp) Quit() string            { return "quit" }

// ProtocolByName resolves the configured protocol name to a Protocol. It
// defaults to UAI, the protocol this repository targets.
func ProtocolByName(name string) Protocol {
	switch name {
	case "ugi":
		return ugi{}
	case "gtp", "katago":
		return gtp{}
	default:
		return uai{}
	}
}
