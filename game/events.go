package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/quizsnake/components"
)

// EventKind identifies what an Event reports.
type EventKind uint8

const (
	EventMoved EventKind = iota
	EventAteCorrect
	EventAteWrong
	EventGameOver
	EventRestarted
)

var eventNames = [...]string{
	EventMoved:      "moved",
	EventAteCorrect: "ate_correct",
	EventAteWrong:   "ate_wrong",
	EventGameOver:   "game_over",
	EventRestarted:  "restarted",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Snapshot is a detached view of the session.
type Snapshot struct {
	State     State
	Snake     []components.Coord // head first
	Direction components.Direction
	Food      []components.FoodItem
	Question  components.Question
	Score     int
}

// Event is a state change produced by the session.
type Event struct {
	Kind     EventKind
	Tick     int64
	Snapshot Snapshot

	// Item is the eaten food for AteCorrect and AteWrong.
	Item components.FoodItem
	// Points awarded, set for AteCorrect.
	Points int
	// CrashPoint is the cell the head tried to enter, set for GameOver.
	CrashPoint components.Coord
}

// LogValue implements slog.LogValuer.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.Int64("tick", e.Tick),
		slog.Int("score", e.Snapshot.Score),
		slog.Int("length", len(e.Snapshot.Snake)),
	}
	switch e.Kind {
	case EventAteCorrect, EventAteWrong:
		attrs = append(attrs, slog.String("glyph", e.Item.Symbol.Glyph))
	case EventGameOver:
		attrs = append(attrs, slog.Int("crash_x", e.CrashPoint.X), slog.Int("crash_y", e.CrashPoint.Y))
	}
	return slog.GroupValue(attrs...)
}

func (s *Session) newEvent(kind EventKind) Event {
	return Event{Kind: kind, Tick: s.tick, Snapshot: s.Snapshot()}
}

func (s *Session) notify(ev Event) {
	for _, fn := range s.observers {
		fn(ev)
	}
}
