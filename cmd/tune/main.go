package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/quizsnake/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 4, "Number of seeds per evaluation")
	games := flag.Int("games", 5, "Games per seed")
	maxTicks := flag.Int("max-ticks", 20000, "Step cap per seed")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}
	if err := run(*configPath, *outputDir, *seeds, *games, *maxTicks, *maxEvals, *population); err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, seeds, games, maxTicks, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()

	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, cfg, evalSeeds, games, maxTicks)

	logFile, err := os.Create(filepath.Join(outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "mean_score", "accuracy"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			clamped := params.Clamp(raw)
			fitness := evaluator.Evaluate(raw)
			summary := evaluator.LastSummary()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.3f", summary.MeanScore),
				fmt.Sprintf("%.4f", summary.Accuracy),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			if err := writeLogRow(logWriter, row); err != nil {
				slog.Warn("writing log row", "eval", evalCount, "error", err)
			}

			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", maxEvals,
				"mean_score", summary.MeanScore,
				"best_mean_score", -bestFitness,
				"elapsed", time.Since(startTime).Round(time.Second).String(),
			)
			return fitness
		},
	}

	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds run in parallel
	}

	slog.Info("starting CMA-ES tuning",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", maxEvals,
		"seeds", seeds,
		"games", games,
	)

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	best := params.ToParams(bestParams)
	data, err := yaml.Marshal(best)
	if err != nil {
		return fmt.Errorf("marshaling best params: %w", err)
	}
	bestPath := filepath.Join(outputDir, "best_params.yaml")
	if err := os.WriteFile(bestPath, data, 0644); err != nil {
		return fmt.Errorf("writing best params: %w", err)
	}

	slog.Info("tuning complete",
		"evals", evalCount,
		"best_mean_score", -bestFitness,
		"wrong_food_cost", best.WrongFoodCost,
		"space_margin", best.SpaceMargin,
		"path", bestPath,
	)
	return nil
}

// writeLogRow writes one row and flushes it.
func writeLogRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
