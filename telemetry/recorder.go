package telemetry

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pthm-cable/quizsnake/game"
)

// Recorder observes a session and turns its events into per-game stats.
// Output is optional; a nil OutputManager only accumulates in memory.
type Recorder struct {
	out      *OutputManager
	logger   *slog.Logger
	logStats bool

	current  SessionStats
	started  bool // current has seen at least one step
	finished []SessionStats
	err      error
}

// NewRecorder creates a recorder. If logStats is set, each finished game is
// logged at Info.
func NewRecorder(out *OutputManager, logger *slog.Logger, logStats bool) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{out: out, logger: logger, logStats: logStats}
	r.current = r.newGame(1)
	return r
}

// Attach subscribes the recorder to s.
func (r *Recorder) Attach(s *game.Session) {
	s.Observe(r.Record)
}

// Record consumes one session event.
func (r *Recorder) Record(ev game.Event) {
	if err := r.out.WriteEvent(NewEventRecord(r.current.SessionID, r.current.Game, ev)); err != nil {
		r.fail(err)
	}

	switch ev.Kind {
	case game.EventMoved:
		r.started = true
		r.current.Ticks = ev.Tick
		r.current.Score = ev.Snapshot.Score
		r.current.FinalLength = len(ev.Snapshot.Snake)
	case game.EventAteCorrect:
		r.current.Correct++
		r.current.Score = ev.Snapshot.Score
	case game.EventAteWrong:
		r.current.Wrong++
	case game.EventGameOver:
		r.current.Completed = true
		r.current.Ticks = ev.Tick
		r.current.Score = ev.Snapshot.Score
		r.current.FinalLength = len(ev.Snapshot.Snake)
		r.current.CrashX, r.current.CrashY = ev.CrashPoint.X, ev.CrashPoint.Y
		r.finish()
	}
}

// Finish closes out a game still in progress, marking it incomplete.
func (r *Recorder) Finish() {
	if r.started {
		r.finish()
	}
}

// Sessions returns the finished games in order.
func (r *Recorder) Sessions() []SessionStats {
	out := make([]SessionStats, len(r.finished))
	copy(out, r.finished)
	return out
}

// Err returns the first output error, if any.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) finish() {
	r.current.Accuracy = accuracy(r.current.Correct, r.current.Wrong)
	r.finished = append(r.finished, r.current)

	if r.logStats {
		r.current.LogStats()
	}
	if err := r.out.WriteSession(r.current); err != nil {
		r.fail(err)
	}

	r.current = r.newGame(r.current.Game + 1)
	r.started = false
}

func (r *Recorder) newGame(n int) SessionStats {
	return SessionStats{SessionID: uuid.NewString(), Game: n}
}

func (r *Recorder) fail(err error) {
	r.logger.Error("failed to write telemetry", "error", err)
	if r.err == nil {
		r.err = err
	}
}
