package telemetry

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SessionStats holds the outcome of a single game.
type SessionStats struct {
	SessionID string `csv:"session_id"`
	Game      int    `csv:"game"`
	Completed bool   `csv:"completed"` // false if the run stopped mid-game

	Ticks       int64   `csv:"ticks"`
	Correct     int     `csv:"correct"`
	Wrong       int     `csv:"wrong"`
	Accuracy    float64 `csv:"accuracy"`
	Score       int     `csv:"score"`
	FinalLength int     `csv:"final_length"`
	CrashX      int     `csv:"crash_x"`
	CrashY      int     `csv:"crash_y"`
}

// Eaten returns the number of items eaten.
func (s SessionStats) Eaten() int {
	return s.Correct + s.Wrong
}

// LogValue implements slog.LogValuer for structured logging.
func (s SessionStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session_id", s.SessionID),
		slog.Int("game", s.Game),
		slog.Bool("completed", s.Completed),
		slog.Int64("ticks", s.Ticks),
		slog.Int("correct", s.Correct),
		slog.Int("wrong", s.Wrong),
		slog.Float64("accuracy", s.Accuracy),
		slog.Int("score", s.Score),
		slog.Int("final_length", s.FinalLength),
	)
}

// LogStats logs the game outcome using slog.
func (s SessionStats) LogStats() {
	slog.Info("session", "stats", s)
}

// QuantileValue is the score at quantile P.
type QuantileValue struct {
	P     float64 `yaml:"p"`
	Score float64 `yaml:"score"`
}

// Summary aggregates a run of games.
type Summary struct {
	Games      int             `yaml:"games"`
	Ticks      int64           `yaml:"ticks"`
	Correct    int             `yaml:"correct"`
	Wrong      int             `yaml:"wrong"`
	Accuracy   float64         `yaml:"accuracy"`
	MeanScore  float64         `yaml:"mean_score"`
	StdScore   float64         `yaml:"std_score"`
	MaxScore   int             `yaml:"max_score"`
	MeanLength float64         `yaml:"mean_length"`
	Quantiles  []QuantileValue `yaml:"quantiles"`
}

// Summarize aggregates games. Quantiles use the empirical distribution of
// scores; each p must lie in [0, 1].
func Summarize(games []SessionStats, quantiles []float64) Summary {
	sum := Summary{Games: len(games)}
	if len(games) == 0 {
		return sum
	}

	scores := make([]float64, len(games))
	lengths := make([]float64, len(games))
	for i, g := range games {
		scores[i] = float64(g.Score)
		lengths[i] = float64(g.FinalLength)
		sum.Ticks += g.Ticks
		sum.Correct += g.Correct
		sum.Wrong += g.Wrong
		if g.Score > sum.MaxScore {
			sum.MaxScore = g.Score
		}
	}
	sum.Accuracy = accuracy(sum.Correct, sum.Wrong)

	sum.MeanScore = stat.Mean(scores, nil)
	if len(scores) > 1 {
		sum.StdScore = stat.StdDev(scores, nil)
	}
	sum.MeanLength = stat.Mean(lengths, nil)

	sort.Float64s(scores)
	for _, p := range quantiles {
		sum.Quantiles = append(sum.Quantiles, QuantileValue{
			P:     p,
			Score: stat.Quantile(p, stat.Empirical, scores, nil),
		})
	}
	return sum
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("games", s.Games),
		slog.Int64("ticks", s.Ticks),
		slog.Int("correct", s.Correct),
		slog.Int("wrong", s.Wrong),
		slog.Float64("accuracy", s.Accuracy),
		slog.Float64("mean_score", s.MeanScore),
		slog.Float64("std_score", s.StdScore),
		slog.Int("max_score", s.MaxScore),
		slog.Float64("mean_length", s.MeanLength),
	}
	for _, q := range s.Quantiles {
		attrs = append(attrs, slog.Float64(fmt.Sprintf("score_p%02.0f", q.P*100), q.Score))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary using slog.
func (s Summary) LogStats() {
	slog.Info("summary", "stats", s)
}

func accuracy(correct, wrong int) float64 {
	if correct+wrong == 0 {
		return 0
	}
	return float64(correct) / float64(correct+wrong)
}
