// Copyright (c) 2024-2025 The shs developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// ctbench exercises the SHA-256 implementation with pairs of input classes
// and applies a statistical timing-leak detector to each pair.  A release is
// expected to run it with the default scenario suite and fail on a nonzero
// exit status.
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	cryptorand "github.com/decred/dcrd/crypto/rand"
	flags "github.com/jessevdk/go-flags"

	"github.com/shs-go/shs/ctbench"
)

type config struct {
	Iterations int     `short:"n" long:"iterations" description:"Measurement rounds per scenario (one left and one right invocation each)" default:"20000"`
	Seed       uint64  `short:"s" long:"seed" description:"Seed for the deterministic input generator; 0 draws a random seed" default:"3735928559"`
	Threshold  float64 `short:"t" long:"threshold" description:"|t| statistic above which a scenario is judged probably leaky" default:"4.5"`
	Output     string  `short:"o" long:"output" description:"Write a Markdown report to the given file in addition to stdout"`
	Scenario   string  `long:"scenario" description:"Run only the named scenario (may be comma separated)"`
	List       bool    `short:"l" long:"list" description:"List the available scenarios and exit"`
	LogFile    string  `long:"logfile" description:"Write logs to the given file with rotation"`
	DebugLevel string  `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// seedBytes expands a 64-bit seed into the 256-bit seed the input generator
// requires.
func seedBytes(seed uint64) [32]byte {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	return buf
}

// selectScenarios resolves the scenario filter to the suite subset to run.
// An empty filter selects the full suite.
func selectScenarios(filter string) ([]*scenario, error) {
	if filter == "" {
		selected := make([]*scenario, len(scenarios))
		for i := range scenarios {
			selected[i] = &scenarios[i]
		}
		return selected, nil
	}

	var selected []*scenario
	for _, name := range strings.Split(filter, ",") {
		name = strings.TrimSpace(name)
		s := findScenario(name)
		if s == nil {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

func realMain() error {
	var cfg config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if cfg.List {
		for i := range scenarios {
			s := &scenarios[i]
			kind := "gating"
			if !s.gating {
				kind = "informational"
			}
			fmt.Printf("%-32s %-13s %s\n", s.name, kind, s.description)
		}
		return nil
	}

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	if !setLogLevels(cfg.DebugLevel) {
		return fmt.Errorf("invalid debug level %q", cfg.DebugLevel)
	}

	if cfg.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = cryptorand.Uint64()
		mainLog.Infof("Drew random seed %#x", seed)
	}

	selected, err := selectScenarios(cfg.Scenario)
	if err != nil {
		return err
	}

	mainLog.Infof("Running %d scenario(s) with %d iterations each (seed %#x, "+
		"threshold %.1f)", len(selected), cfg.Iterations, seed, cfg.Threshold)

	results := make([]ctbench.ScenarioResult, 0, len(selected))
	failed := false
	for _, s := range selected {
		// Each scenario gets its own generator so results do not depend on
		// which other scenarios ran before it.
		rng := rand.New(rand.NewChaCha8(seedBytes(seed)))
		runner := ctbench.NewRunner(cfg.Threshold)
		s.run(runner, rng, cfg.Iterations)
		result := runner.Result()
		results = append(results, ctbench.ScenarioResult{Name: s.name, Result: result})

		status := "PASS"
		if result.Verdict != ctbench.VerdictNoEvidence {
			if s.gating {
				status = "FAIL"
				failed = true
			} else {
				status = "INFO"
			}
		}
		mainLog.Infof("%s %s: max |t|=%.2f p=%.4g (%v)", status, s.name,
			result.MaxT, result.PValue, result.Verdict)
	}

	if err := ctbench.WriteMarkdownReport(os.Stdout,
		"SHA-256 constant-time report", results); err != nil {
		return err
	}
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		err = ctbench.WriteMarkdownReport(f,
			"SHA-256 constant-time report", results)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		mainLog.Infof("Wrote report to %s", cfg.Output)
	}

	if failed {
		return errors.New("one or more gating scenarios showed evidence of " +
			"secret-dependent timing")
	}
	return nil
}

func main() {
	if err := realMain(); err != nil {
		fatalf("%s\n", err)
	}
}
