package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/quizsnake/autopilot"
	"github.com/pthm-cable/quizsnake/config"
	"github.com/pthm-cable/quizsnake/game"
	"github.com/pthm-cable/quizsnake/telemetry"
)

// FitnessEvaluator plays headless games and scores a parameter vector.
type FitnessEvaluator struct {
	params   *ParamVector
	cfg      *config.Config
	seeds    []int64
	games    int
	maxTicks int

	mu          sync.Mutex
	lastSummary telemetry.Summary
}

// NewFitnessEvaluator creates a new evaluator. The config is shared read-only
// by every run.
func NewFitnessEvaluator(params *ParamVector, cfg *config.Config, seeds []int64, games, maxTicks int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		cfg:      cfg,
		seeds:    seeds,
		games:    games,
		maxTicks: maxTicks,
	}
}

// LastSummary returns the pooled summary from the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() telemetry.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the negated mean score over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	params := fe.params.ToParams(x)

	results := make([][]telemetry.SessionStats, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(i int, seed int64) {
			defer wg.Done()
			results[i] = fe.runSeed(params, seed)
		}(i, seed)
	}
	wg.Wait()

	var all []telemetry.SessionStats
	for _, r := range results {
		all = append(all, r...)
	}
	summary := telemetry.Summarize(all, fe.cfg.Telemetry.SummaryQuantiles)

	fe.mu.Lock()
	fe.lastSummary = summary
	fe.mu.Unlock()

	return -summary.MeanScore
}

// runSeed plays up to fe.games games with one seed.
func (fe *FitnessEvaluator) runSeed(params autopilot.Params, seed int64) []telemetry.SessionStats {
	logger := slog.New(slog.DiscardHandler)
	s, err := game.NewSession(game.Options{Config: fe.cfg, Seed: seed, Logger: logger})
	if err != nil {
		slog.Error("failed to create session", "seed", seed, "error", err)
		return nil
	}
	rec := telemetry.NewRecorder(nil, logger, false)
	rec.Attach(s)
	pilot := autopilot.NewWithParams(params)

	now := time.Unix(0, 0)
	for steps := 0; steps < fe.maxTicks; steps++ {
		if s.State() == game.GameOver {
			if len(rec.Sessions()) >= fe.games {
				break
			}
			s.RequestRestart()
		}
		pilot.Steer(s)
		s.Tick(now)
		now = now.Add(fe.cfg.Snake.TickInterval)
	}
	rec.Finish()
	return rec.Sessions()
}
