package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/quizsnake/autopilot"
	"github.com/pthm-cable/quizsnake/config"
	"github.com/pthm-cable/quizsnake/game"
	"github.com/pthm-cable/quizsnake/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	games := flag.Int("games", 10, "Number of games to play")
	maxTicks := flag.Int("max-ticks", 100000, "Stop after N movement steps across all games (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Log per-game and perf stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if err := run(cfg, rngSeed, *games, *maxTicks, *outputDir, *logStats, logger); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seed int64, games, maxTicks int, outputDir string, logStats bool, logger *slog.Logger) error {
	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	session, err := game.NewSession(game.Options{Config: cfg, Seed: seed, Logger: logger})
	if err != nil {
		return err
	}
	recorder := telemetry.NewRecorder(out, logger, logStats)
	recorder.Attach(session)
	pilot := autopilot.New()
	perf := telemetry.NewPerfCollector(1000)

	slog.Info("starting headless run",
		"seed", seed,
		"games", games,
		"max_ticks", maxTicks,
		"grid_width", cfg.Grid.Width,
		"grid_height", cfg.Grid.Height,
	)

	// Simulated clock: one move interval per callback.
	now := time.Unix(0, 0)
	steps := 0
	for {
		if session.State() == game.GameOver {
			if len(recorder.Sessions()) >= games {
				break
			}
			session.RequestRestart()
		}
		if maxTicks > 0 && steps >= maxTicks {
			slog.Info("max ticks reached", "ticks", steps)
			break
		}

		perf.StartTick()
		perf.StartPhase(telemetry.PhaseAutopilot)
		pilot.Steer(session)
		perf.StartPhase(telemetry.PhaseSession)
		session.Tick(now)
		perf.EndTick()

		now = now.Add(cfg.Snake.TickInterval)
		steps++
	}
	recorder.Finish()

	summary := telemetry.Summarize(recorder.Sessions(), cfg.Telemetry.SummaryQuantiles)
	summary.LogStats()
	if logStats {
		perf.Stats().LogStats()
	}
	if err := out.WriteSummary(summary); err != nil {
		return err
	}
	return recorder.Err()
}
