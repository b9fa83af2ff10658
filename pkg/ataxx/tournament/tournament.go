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

// Package tournament coordinates a fixed-size pool of workers that draw
// games from a Schedule Generator, run them on the Game Driver, and fold
// the outcomes into a shared Results aggregate.
package tournament

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"laptudirm.com/x/ataxx/pkg/ataxx/adjudicate"
	"laptudirm.com/x/ataxx/pkg/ataxx/board"
	"laptudirm.com/x/ataxx/pkg/ataxx/clock"
	"laptudirm.com/x/ataxx/pkg/ataxx/config"
	"laptudirm.com/x/ataxx/pkg/ataxx/engine"
	"laptudirm.com/x/ataxx/pkg/ataxx/match"
	"laptudirm.com/x/ataxx/pkg/ataxx/pgn"
	"laptudirm.com/x/ataxx/pkg/ataxx/stats"
	"laptudirm.com/x/ataxx/pkg/ataxx/tournament/openings"
	"laptudirm.com/x/ataxx/pkg/ataxx/tournament/schedule"
)

// Callbacks observes a tournament's progress. Every field is optional;
// a nil field is a no-op. Implementations must be goroutine-safe: with
// Concurrency > 1, several of these fire concurrently from different
// worker goroutines.
type Callbacks struct {
	OnEngineStart   func(path string)
	OnGameStarted   func(id int, fen, name1, name2 string)
	OnGameFinished  func(id int, result board.Result, name1, name2 string)
	OnResultsUpdate func(*stats.Results)
}

func (c Callbacks) engineStart(path string) {
	if c.OnEngineStart != nil {
		c.OnEngineStart(path)
	}
}

func (c Callbacks) gameStarted(id int, fen, n1, n2 string) {
	if c.OnGameStarted != nil {
		c.OnGameStarted(id, fen, n1, n2)
	}
}

func (c Callbacks) gameFinished(id int, result board.Result, n1, n2 string) {
	if c.OnGameFinished != nil {
		c.OnGameFinished(id, result, n1, n2)
	}
}

func (c Callbacks) resultsUpdate(r *stats.Results) {
	if c.OnResultsUpdate != nil {
		c.OnResultsUpdate(r)
	}
}

// Coordinator runs a tournament to completion: the totalGames passed to Run,
// spread across Concurrency workers, against the configuration's schedule,
// adjudication, and time-control settings.
type Coordinator struct {
	cfg         *config.Config
	sched       *schedule.Generator
	book        *openings.Book
	adjSettings adjudicate.Settings
	clkSettings clock.Settings

	Callbacks Callbacks

	Results *stats.Results

	stopped chan struct{}
	once    sync.Once
}

// New builds a Coordinator from a loaded tournament configuration.
func New(cfg *config.Config, callbacks Callbacks) (*Coordinator, error) {
	adj, err := cfg.AdjudicationSettings()
	if err != nil {
		return nil, err
	}
	clk, err := cfg.ClockSettings()
	if err != nil {
		return nil, err
	}

	book := openings.Default()
	if cfg.Openings.File != "" {
		book, err = openings.Load(cfg.Openings.File)
		if err != nil {
			return nil, err
		}
	}

	return &Coordinator{
		cfg:         cfg,
		sched:       schedule.New(len(cfg.Engines), cfg.Schedule.Games, cfg.Schedule.Openings, cfg.Schedule.Repeat),
		book:        book,
		adjSettings: adj,
		clkSettings: clk,
		Callbacks:   callbacks,
		Results:     stats.New(),
		stopped:     make(chan struct{}),
	}, nil
}

// Stop requests cooperative cancellation: workers finish the game in
// progress and then exit without drawing another from the schedule.
// Safe to call more than once and from any goroutine.
func (co *Coordinator) Stop() {
	co.once.Do(func() { close(co.stopped) })
}

// Report renders the standings table for every engine that has played at
// least one game so far.
func (co *Coordinator) Report() string {
	return co.Results.Report()
}

func (co *Coordinator) stopRequested() bool {
	select {
	case <-co.stopped:
		return true
	default:
		return false
	}
}

// Run plays totalGames games spread over cfg.Concurrency workers and
// returns once they have all finished, Stop is called, or ctx is
// cancelled, whichever happens first.
func (co *Coordinator) Run(ctx context.Context, totalGames int) error {
	g, ctx := errgroup.WithContext(ctx)

	games := make(chan schedule.GameInfo)
	var mu sync.Mutex // guards the schedule cursor across workers

	g.Go(func() error {
		defer close(games)
		for n := 0; n < totalGames; n++ {
			if co.stopRequested() {
				return nil
			}

			mu.Lock()
			info := co.sched.Next()
			mu.Unlock()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case games <- info:
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < co.cfg.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return co.worker(ctx, games)
		})
	}

	return g.Wait()
}

func (co *Coordinator) worker(ctx context.Context, games <-chan schedule.GameInfo) error {
	for info := range games {
		if co.stopRequested() {
			return nil
		}
		if err := co.playOne(info); err != nil {
			logrus.Warnf("tournament: game %d: %v", info.GameID, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (co *Coordinator) playOne(info schedule.GameInfo) error {
	e1 := co.cfg.Engines[info.Player1]
	e2 := co.cfg.Engines[info.Player2]
	fen := co.book.At(info.Opening)

	settings := match.Settings{
		Engine1:      e1,
		Engine2:      e2,
		FEN:          fen,
		Adjudication: co.adjSettings,
		Clock:        co.clkSettings,
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid game settings: %w", err)
	}

	sessions, err := co.startSessions(e1, e2)
	if err != nil {
		return fmt.Errorf("starting engines: %w", err)
	}
	defer sessions[0].Quit()
	defer sessions[1].Quit()

	co.Callbacks.gameStarted(info.GameID, fen, e1.Name, e2.Name)

	outcome := match.Run(settings, sessions, match.Callbacks{})

	co.Callbacks.gameFinished(info.GameID, outcome.Result, e1.Name, e2.Name)

	co.Results.Record(e1.ID, e2.ID, outcome.Result)
	co.Callbacks.resultsUpdate(co.Results)

	if co.cfg.PGNOut != "" {
		if err := appendFile(co.cfg.PGNOut, pgn.Build(co.cfg.Event, settings, outcome).String()); err != nil {
			logrus.Warnf("tournament: writing pgn: %v", err)
		}
	}
	if co.cfg.EPDOut != "" && outcome.EndPos != nil {
		line := fmt.Sprintf("%s c0 \"%s\"; c1 \"%s\";\n", outcome.EndPos.FEN(), outcome.Result, e1.Name+" vs "+e2.Name)
		if err := appendFile(co.cfg.EPDOut, line); err != nil {
			logrus.Warnf("tournament: writing epd: %v", err)
		}
	}

	return nil
}

func (co *Coordinator) startSessions(e1, e2 engine.Config) ([2]*engine.Session, error) {
	var sessions [2]*engine.Session

	for i, cfg := range [2]engine.Config{e1, e2} {
		session, err := engine.Start(cfg, nil, nil)
		if err != nil {
			return sessions, err
		}
		co.Callbacks.engineStart(cfg.Path)

		if err := session.Init(); err != nil {
			session.Close()
			return sessions, err
		}
		for name, value := range cfg.Options {
			if err := session.SetOption(name, value); err != nil {
				session.Close()
				return sessions, err
			}
		}

		sessions[i] = session
	}

	return sessions, nil
}

func appendFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}
