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

// Package config loads the YAML file that fully enumerates a tournament:
// its engines, schedule, time control, and adjudication thresholds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v2"

	"laptudirm.com/x/ataxx/pkg/ataxx/adjudicate"
	"laptudirm.com/x/ataxx/pkg/ataxx/clock"
	"laptudirm.com/x/ataxx/pkg/ataxx/engine"
)

// OutputDirectory is where relative pgn-out/epd-out paths are resolved
// against, matching the teacher's xdg.Home-rooted arbiter directory.
var OutputDirectory = filepath.Join(xdg.DataHome, "arbiter")

// Config is the root of a tournament configuration file.
type Config struct {
	Event string `yaml:"event"` // Event tag written to every PGN.

	Engines []engine.Config `yaml:"engines"`

	// Number of games run concurrently.
	Concurrency int `yaml:"concurrency"`

	Schedule struct {
		Games    int  `yaml:"games"`    // games played per pairing
		Openings int  `yaml:"openings"` // size of the opening pool to draw from
		Repeat   bool `yaml:"repeat"`   // colour-swap each opening
	} `yaml:"schedule"`

	Openings struct {
		File string `yaml:"file"` // EPD/FEN-per-line opening book; unset uses the start position
	} `yaml:"openings"`

	// TimeControl durations are plain strings in Go duration syntax ("100ms",
	// "1s") rather than yaml.v2-native numbers, matching how this
	// configuration is meant to be hand-written.
	TimeControl struct {
		// Mode is one of "movetime", "time", "depth", "nodes", "infinite".
		Mode string `yaml:"mode"`

		Movetime string `yaml:"movetime"`

		BTime string `yaml:"btime"`
		WTime string `yaml:"wtime"`
		BInc  string `yaml:"binc"`
		WInc  string `yaml:"winc"`

		Depth int `yaml:"depth"`
		Nodes int `yaml:"nodes"`
	} `yaml:"time-control"`

	Adjudication struct {
		Material *struct {
			Pieces int `yaml:"pieces"`
			Plies  int `yaml:"plies"`
		} `yaml:"material"`
		EasyFill      bool   `yaml:"easyfill"`
		GameLength    *int   `yaml:"gamelength"`
		TimeoutBuffer string `yaml:"timeout-buffer"`
	} `yaml:"adjudication"`

	PGNOut string `yaml:"pgn-out"` // file to append finished-game PGNs to
	EPDOut string `yaml:"epd-out"` // file to append finished-game EPDs to
}

// Load reads and parses a tournament configuration file and validates the
// invariants the rest of the package relies on.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the invariants a tournament run depends on: at least two
// distinctly-ided engines, a positive concurrency, and a sane schedule.
func (c *Config) Validate() error {
	if len(c.Engines) < 2 {
		return fmt.Errorf("at least 2 engines are required, got %d", len(c.Engines))
	}

	seen := make(map[int]bool, len(c.Engines))
	for _, e := range c.Engines {
		if seen[e.ID] {
			return fmt.Errorf("duplicate engine id %d", e.ID)
		}
		seen[e.ID] = true
		if e.Path == "" {
			return fmt.Errorf("engine %q: path is required", e.Name)
		}
	}

	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Schedule.Games <= 0 {
		c.Schedule.Games = 2
	}
	if c.Schedule.Openings <= 0 {
		c.Schedule.Openings = 1
	}

	if c.PGNOut != "" && !filepath.IsAbs(c.PGNOut) {
		c.PGNOut = filepath.Join(OutputDirectory, c.PGNOut)
	}
	if c.EPDOut != "" && !filepath.IsAbs(c.EPDOut) {
		c.EPDOut = filepath.Join(OutputDirectory, c.EPDOut)
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// ClockSettings resolves the time-control section into a clock.Settings.
func (c *Config) ClockSettings() (clock.Settings, error) {
	var s clock.Settings

	switch c.TimeControl.Mode {
	case "", "movetime":
		s.Mode = clock.Movetime
		d, err := parseDuration(c.TimeControl.Movetime)
		if err != nil {
			return clock.Settings{}, fmt.Errorf("movetime: %w", err)
		}
		s.MoveTime = d

	case "time":
		s.Mode = clock.Time
		var err error
		if s.BTime, err = parseDuration(c.TimeControl.BTime); err != nil {
			return clock.Settings{}, fmt.Errorf("btime: %w", err)
		}
		if s.WTime, err = parseDuration(c.TimeControl.WTime); err != nil {
			return clock.Settings{}, fmt.Errorf("wtime: %w", err)
		}
		if s.BInc, err = parseDuration(c.TimeControl.BInc); err != nil {
			return clock.Settings{}, fmt.Errorf("binc: %w", err)
		}
		if s.WInc, err = parseDuration(c.TimeControl.WInc); err != nil {
			return clock.Settings{}, fmt.Errorf("winc: %w", err)
		}

	case "depth":
		s.Mode = clock.Depth
		s.PlyDepth = c.TimeControl.Depth

	case "nodes":
		s.Mode = clock.Nodes
		s.NodeCap = c.TimeControl.Nodes

	case "infinite":
		s.Mode = clock.Infinite

	default:
		return clock.Settings{}, fmt.Errorf("unknown time control mode %q", c.TimeControl.Mode)
	}

	return s, nil
}

// AdjudicationSettings resolves the adjudication section into an
// adjudicate.Settings.
func (c *Config) AdjudicationSettings() (adjudicate.Settings, error) {
	var s adjudicate.Settings

	if m := c.Adjudication.Material; m != nil {
		s.Material = &adjudicate.Material{Pieces: m.Pieces, Plies: m.Plies}
	}
	s.EasyFill = c.Adjudication.EasyFill
	s.GameLength = c.Adjudication.GameLength

	buffer, err := parseDuration(c.Adjudication.TimeoutBuffer)
	if err != nil {
		return adjudicate.Settings{}, fmt.Errorf("timeout-buffer: %w", err)
	}
	s.TimeoutBuffer = buffer

	return s, nil
}
