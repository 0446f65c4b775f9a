// Package telemetry records what happens in headless runs: per-event CSV
// rows, per-game statistics and a cross-game summary.
package telemetry

import "github.com/pthm-cable/quizsnake/game"

// EventRecord is one row of events.csv.
type EventRecord struct {
	SessionID string `csv:"session_id"`
	Game      int    `csv:"game"`
	Tick      int64  `csv:"tick"`
	Kind      string `csv:"kind"`
	HeadX     int    `csv:"head_x"`
	HeadY     int    `csv:"head_y"`
	Length    int    `csv:"length"`
	Score     int    `csv:"score"`
	Question  string `csv:"question"`
	Glyph     string `csv:"glyph"` // eaten item, if any
	Points    int    `csv:"points"`
}

// NewEventRecord flattens a session event for CSV output.
func NewEventRecord(sessionID string, gameNum int, ev game.Event) EventRecord {
	rec := EventRecord{
		SessionID: sessionID,
		Game:      gameNum,
		Tick:      ev.Tick,
		Kind:      ev.Kind.String(),
		Length:    len(ev.Snapshot.Snake),
		Score:     ev.Snapshot.Score,
		Points:    ev.Points,
	}
	if len(ev.Snapshot.Snake) > 0 {
		rec.HeadX, rec.HeadY = ev.Snapshot.Snake[0].X, ev.Snapshot.Snake[0].Y
	}
	if ev.Snapshot.Question.Active {
		rec.Question = ev.Snapshot.Question.Target.Glyph
	}
	switch ev.Kind {
	case game.EventAteCorrect, game.EventAteWrong:
		rec.Glyph = ev.Item.Symbol.Glyph
	case game.EventGameOver:
		rec.HeadX, rec.HeadY = ev.CrashPoint.X, ev.CrashPoint.Y
	}
	return rec
}
