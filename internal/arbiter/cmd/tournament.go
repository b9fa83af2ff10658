// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/config"
	"laptudirm.com/x/ataxx/pkg/ataxx/tournament"
)

// SPIN is the braille dot spinner used throughout arbiter's CLI for
// long-running operations.
const SPIN = 11

func Tournament() *cobra.Command {
	root := &cobra.Command{
		Use:   "tournament",
		Short: "Run and configure Ataxx engine tournaments",
		Args:  cobra.NoArgs,
	}

	root.AddCommand(tournamentRun())
	root.AddCommand(tournamentSampleConfig())

	return root
}

func tournamentRun() *cobra.Command {
	return &cobra.Command{
		Use:   "run config-file",
		Short: "Play out the tournament described by config-file",
		Args:  cobra.ExactArgs(1),

		Long: heredoc.Doc(`run loads the given YAML tournament configuration, pairs
			up its engines according to the configured schedule, and plays
			every pairing to completion using the Game Driver.

			Progress is reported to stdout as games finish; standings with
			each engine's Elo estimate are printed once the tournament ends
			or is interrupted with Ctrl-C.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[SPIN], 100*time.Millisecond)
			sp.Prefix = "arbiter: "

			total := len(cfg.Engines) * (len(cfg.Engines) - 1) / 2 * cfg.Schedule.Games
			played := 0
			var mu sync.Mutex // OnGameFinished fires from several workers

			co, err := tournament.New(cfg, tournament.Callbacks{
				OnEngineStart: func(path string) {
					logrus.Tracef("started engine %s", path)
				},
				OnGameFinished: func(id int, result board.Result, n1, n2 string) {
					mu.Lock()
					defer mu.Unlock()
					played++
					sp.Stop()
					fmt.Printf("[%d/%d] %s vs %s: %s\n", played, total, n1, n2, result)
					sp.Start()
				},
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			go func() {
				<-sig
				logrus.Warn("interrupted, finishing in-flight games...")
				co.Stop()
			}()

			sp.Start()
			err = co.Run(ctx, total)
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Println("\nStandings:")
			fmt.Print(co.Report())
			return nil
		},
	}
}

func tournamentSampleConfig() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print a sample tournament configuration file",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(heredoc.Doc(`
				event: Sample Cup
				concurrency: 4
				engines:
				  - id: 1
				    name: alpha
				    path: ./engines/alpha
				    protocol: uai
				  - id: 2
				    name: beta
				    path: ./engines/beta
				    protocol: uai
				schedule:
				  games: 4
				  openings: 2
				  repeat: true
				openings:
				  file: ./openings.epd
				time-control:
				  mode: movetime
				  movetime: 100ms
				adjudication:
				  material:
				    pieces: 6
				    plies: 20
				  easyfill: true
				  gamelength: 200
				  timeout-buffer: 50ms
				pgn-out: ./games.pgn
				epd-out: ./games.epd
			`))
			return nil
		},
	}
}
