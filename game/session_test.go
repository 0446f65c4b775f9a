package game

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/quizsnake/components"
	"github.com/pthm-cable/quizsnake/config"
	"github.com/pthm-cable/quizsnake/systems"
)

var testCatalog = []components.Symbol{
	{Glyph: "ㄅ", Label: "b"},
	{Glyph: "ㄆ", Label: "p"},
	{Glyph: "ㄇ", Label: "m"},
}

func testConfig(t *testing.T, width, height int) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.Width = width
	cfg.Grid.Height = height
	cfg.Catalog = testCatalog
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, rng systems.Rand) *Session {
	t.Helper()
	s, err := NewSession(Options{
		Config: cfg,
		Rand:   rng,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// clock hands out one move interval per call.
type clock struct {
	now  time.Time
	step time.Duration
}

func newClock(cfg *config.Config) *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), step: cfg.Snake.TickInterval}
}

func (c *clock) tick(s *Session) []Event {
	evs := s.Tick(c.now)
	c.now = c.now.Add(c.step)
	return evs
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func coords(pts ...int) []components.Coord {
	out := make([]components.Coord, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		out = append(out, components.Coord{X: pts[i], Y: pts[i+1]})
	}
	return out
}

func assertSolvable(t *testing.T, snap Snapshot) {
	t.Helper()
	if !snap.Question.Active {
		t.Fatal("no active question")
	}
	for _, it := range snap.Food {
		if it.Symbol == snap.Question.Target {
			return
		}
	}
	t.Fatalf("question %v has no matching item in %v", snap.Question.Target, snap.Food)
}

// Food parked in the bottom-right corner, away from the starting row.
func cornerFood() *systems.ScriptedRand {
	return systems.NewScriptedRand(9, 9, 0, 8, 8, 1, 7, 7, 2, 0)
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	cfg.Catalog = nil

	_, err := NewSession(Options{Config: cfg})
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestNewSessionDefaults(t *testing.T) {
	s, err := NewSession(Options{Seed: 5, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.State != NotStarted {
		t.Errorf("state = %v, want not_started", snap.State)
	}
	if want := coords(7, 10, 6, 10, 5, 10); !reflect.DeepEqual(snap.Snake, want) {
		t.Errorf("snake = %v, want %v", snap.Snake, want)
	}
	if len(snap.Food) != 3 {
		t.Errorf("food = %v, want 3 items", snap.Food)
	}
	assertSolvable(t, snap)
}

func TestNewSessionSharedConfig(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	cfg.Derived = config.DerivedConfig{}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s, err := NewSession(Options{Config: cfg, Seed: seed, Logger: slog.New(slog.DiscardHandler)})
				if err != nil {
					t.Error(err)
					return
				}
				if got := s.Snapshot().Snake[0]; got != (components.Coord{X: 2, Y: 5}) {
					t.Errorf("head = %v, want (2,5)", got)
					return
				}
			}
		}(int64(g))
	}
	wg.Wait()

	if cfg.Derived != (config.DerivedConfig{}) {
		t.Errorf("NewSession modified the caller's config: %+v", cfg.Derived)
	}
}

func TestNotStartedDoesNotMove(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	before := s.Snapshot()
	for i := 0; i < 3; i++ {
		if evs := c.tick(s); len(evs) != 0 {
			t.Fatalf("tick %d before start produced %v", i, kinds(evs))
		}
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("state changed before the first press")
	}
	if s.RequestRestart() {
		t.Error("restart accepted before play")
	}
}

func TestScenarioAMoveWithoutFood(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	if want := coords(2, 5, 1, 5, 0, 5); !reflect.DeepEqual(s.Snapshot().Snake, want) {
		t.Fatalf("initial snake = %v, want %v", s.Snapshot().Snake, want)
	}

	s.PressDirection(components.Right)
	if s.State() != Playing {
		t.Fatalf("state = %v, want playing", s.State())
	}

	evs := c.tick(s)
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventMoved}) {
		t.Fatalf("events = %v, want [moved]", got)
	}
	if want := coords(3, 5, 2, 5, 1, 5); !reflect.DeepEqual(evs[0].Snapshot.Snake, want) {
		t.Errorf("snake = %v, want %v", evs[0].Snapshot.Snake, want)
	}
	if s.State() != Playing {
		t.Errorf("state = %v, want playing", s.State())
	}
}

func TestScenarioBEatCorrect(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	rng := systems.NewScriptedRand(
		3, 5, 0, // ㄅ right in front of the head
		8, 8, 1,
		7, 7, 2,
		0, // question: ㄅ
	)
	s := newTestSession(t, cfg, rng)
	c := newClock(cfg)

	if q := s.Snapshot().Question.Target; q != testCatalog[0] {
		t.Fatalf("question = %v, want %v", q, testCatalog[0])
	}

	// Replacement at (0,0) is forced to ㄅ; the new question picks ㄇ.
	rng.Push(0, 0, 1)

	s.PressDirection(components.Right)
	evs := c.tick(s)
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventMoved, EventAteCorrect}) {
		t.Fatalf("events = %v, want [moved ate_correct]", got)
	}

	ate := evs[1]
	if ate.Points != cfg.Food.Points {
		t.Errorf("points = %d, want %d", ate.Points, cfg.Food.Points)
	}
	if ate.Item.Position != (components.Coord{X: 3, Y: 5}) {
		t.Errorf("eaten at %v, want (3,5)", ate.Item.Position)
	}
	if s.Score() != cfg.Food.Points {
		t.Errorf("score = %d, want %d", s.Score(), cfg.Food.Points)
	}

	snap := s.Snapshot()
	if want := coords(3, 5, 2, 5, 1, 5, 0, 5); !reflect.DeepEqual(snap.Snake, want) {
		t.Errorf("snake = %v, want %v", snap.Snake, want)
	}
	if len(snap.Food) != cfg.Food.Count {
		t.Errorf("food count = %d, want %d", len(snap.Food), cfg.Food.Count)
	}
	if snap.Question.Target != testCatalog[2] {
		t.Errorf("new question = %v, want %v", snap.Question.Target, testCatalog[2])
	}
	assertSolvable(t, snap)
}

func TestEatWrongGrowsWithoutScore(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	rng := systems.NewScriptedRand(
		3, 5, 1, // ㄆ in front of the head
		8, 8, 0,
		7, 7, 2,
		1, // question: ㄅ
	)
	s := newTestSession(t, cfg, rng)
	c := newClock(cfg)
	rng.Push(0, 0, 2, 0)

	s.PressDirection(components.Right)
	evs := c.tick(s)
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventMoved, EventAteWrong}) {
		t.Fatalf("events = %v, want [moved ate_wrong]", got)
	}
	if evs[1].Item.Symbol != testCatalog[1] {
		t.Errorf("eaten symbol = %v, want %v", evs[1].Item.Symbol, testCatalog[1])
	}
	if s.Score() != 0 {
		t.Errorf("score = %d, want 0", s.Score())
	}
	snap := s.Snapshot()
	if len(snap.Snake) != 4 {
		t.Errorf("length = %d, want 4", len(snap.Snake))
	}
	assertSolvable(t, snap)
}

func TestZeroPointsSuppressesFeedback(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	cfg.Food.Points = 0
	rng := systems.NewScriptedRand(3, 5, 0, 8, 8, 1, 7, 7, 2, 0)
	s := newTestSession(t, cfg, rng)
	c := newClock(cfg)

	s.PressDirection(components.Right)
	evs := c.tick(s)
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventMoved}) {
		t.Fatalf("events = %v, want [moved]", got)
	}
	if n := len(s.Snapshot().Snake); n != 4 {
		t.Errorf("length = %d, want 4", n)
	}
}

// runIntoRightWall drives the default layout on a 10x10 board into x = 10.
func runIntoRightWall(t *testing.T, s *Session, c *clock) Event {
	t.Helper()
	s.PressDirection(components.Right)
	for i := 0; i < 7; i++ {
		if got := kinds(c.tick(s)); !reflect.DeepEqual(got, []EventKind{EventMoved}) {
			t.Fatalf("step %d events = %v, want [moved]", i, got)
		}
	}
	evs := c.tick(s)
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventGameOver}) {
		t.Fatalf("crash events = %v, want [game_over]", got)
	}
	return evs[0]
}

func TestScenarioCOutOfBounds(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	over := runIntoRightWall(t, s, c)
	if over.CrashPoint != (components.Coord{X: 10, Y: 5}) {
		t.Errorf("crash point = %v, want (10,5)", over.CrashPoint)
	}
	if want := coords(9, 5, 8, 5, 7, 5); !reflect.DeepEqual(over.Snapshot.Snake, want) {
		t.Errorf("final snake = %v, want %v", over.Snapshot.Snake, want)
	}
	if s.State() != GameOver {
		t.Fatalf("state = %v, want game_over", s.State())
	}

	before := s.Snapshot()
	s.PressDirection(components.Up)
	for i := 0; i < 5; i++ {
		if evs := c.tick(s); len(evs) != 0 {
			t.Fatalf("tick after game over produced %v", kinds(evs))
		}
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("state changed after game over")
	}
}

func TestScenarioDSelfCollision(t *testing.T) {
	cfg := testConfig(t, 20, 10)
	cfg.Snake.InitialLength = 5
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	s := newTestSession(t, cfg, systems.NewScriptedRand(19, 0, 0, 18, 0, 1, 17, 0, 2, 0))
	c := newClock(cfg)

	if want := coords(5, 5, 4, 5, 3, 5, 2, 5, 1, 5); !reflect.DeepEqual(s.Snapshot().Snake, want) {
		t.Fatalf("initial snake = %v, want %v", s.Snapshot().Snake, want)
	}

	s.PressDirection(components.Up)
	c.tick(s) // (5,4)
	s.PressDirection(components.Left)
	c.tick(s) // (4,4)
	s.PressDirection(components.Down)
	evs := c.tick(s) // (4,5) is still body

	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventGameOver}) {
		t.Fatalf("events = %v, want [game_over]", got)
	}
	if evs[0].CrashPoint != (components.Coord{X: 4, Y: 5}) {
		t.Errorf("crash point = %v, want (4,5)", evs[0].CrashPoint)
	}
	if s.State() != GameOver {
		t.Errorf("state = %v, want game_over", s.State())
	}
}

func TestScenarioERestartWhilePlaying(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	s.PressDirection(components.Right)
	c.tick(s)
	before := s.Snapshot()

	if s.RequestRestart() {
		t.Fatal("restart accepted while playing")
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Error("restart while playing changed state")
	}
	if s.Games() != 1 {
		t.Errorf("games = %d, want 1", s.Games())
	}
}

func TestScenarioFRestartFromGameOver(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	rng := systems.NewScriptedRand(3, 5, 0, 8, 8, 1, 7, 7, 2, 0, 0, 0, 1)
	s := newTestSession(t, cfg, rng)
	c := newClock(cfg)

	s.PressDirection(components.Right)
	c.tick(s) // eats ㄅ
	if s.Score() == 0 {
		t.Fatal("expected a score before the crash")
	}
	for s.State() == Playing {
		c.tick(s)
	}

	if !s.RequestRestart() {
		t.Fatal("restart rejected after game over")
	}
	snap := s.Snapshot()
	if snap.State != Playing {
		t.Errorf("state = %v, want playing", snap.State)
	}
	if snap.Score != 0 {
		t.Errorf("score = %d, want 0", snap.Score)
	}
	if want := coords(2, 5, 1, 5, 0, 5); !reflect.DeepEqual(snap.Snake, want) {
		t.Errorf("snake = %v, want %v", snap.Snake, want)
	}
	if snap.Direction != components.Right {
		t.Errorf("direction = %v, want right", snap.Direction)
	}
	if len(snap.Food) != cfg.Food.Count {
		t.Errorf("food = %d items, want %d", len(snap.Food), cfg.Food.Count)
	}
	assertSolvable(t, snap)
	if s.Games() != 2 {
		t.Errorf("games = %d, want 2", s.Games())
	}

	// Restart does not wait for a press.
	evs := c.tick(s)
	if len(evs) < 2 || evs[0].Kind != EventRestarted || evs[1].Kind != EventMoved {
		t.Fatalf("events after restart = %v, want [restarted moved ...]", kinds(evs))
	}
	if evs[1].Tick != 1 {
		t.Errorf("first step tick = %d, want 1", evs[1].Tick)
	}
}

func TestOppositeDirectionRejected(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	s.PressDirection(components.Left) // starts play, reversal dropped
	c.tick(s)
	s.PressDirection(components.Left)
	c.tick(s)

	if s.Direction() != components.Right {
		t.Errorf("direction = %v, want right", s.Direction())
	}
	if head := s.Snapshot().Snake[0]; head != (components.Coord{X: 4, Y: 5}) {
		t.Errorf("head = %v, want (4,5)", head)
	}
}

func TestOneDirectionChangePerStep(t *testing.T) {
	tests := []struct {
		name    string
		presses []components.Direction
		want    components.Direction
	}{
		{"second change dropped", []components.Direction{components.Up, components.Down}, components.Up},
		{"second change after reversal attempt", []components.Direction{components.Left, components.Up}, components.Up},
		{"repeat of pending does not lock", []components.Direction{components.Right, components.Down}, components.Down},
		{"up then left", []components.Direction{components.Up, components.Left}, components.Up},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, 10, 10)
			s := newTestSession(t, cfg, cornerFood())
			c := newClock(cfg)

			s.PressDirection(components.Right)
			c.tick(s)
			for _, d := range tt.presses {
				s.PressDirection(d)
			}
			c.tick(s)
			if s.Direction() != tt.want {
				t.Errorf("direction = %v, want %v", s.Direction(), tt.want)
			}
		})
	}
}

func TestInputLockReleasedEachStep(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	s.PressDirection(components.Up)
	c.tick(s)
	s.PressDirection(components.Down) // reversal of up
	s.PressDirection(components.Right)
	c.tick(s)

	if s.Direction() != components.Right {
		t.Errorf("direction = %v, want right", s.Direction())
	}
	if head := s.Snapshot().Snake[0]; head != (components.Coord{X: 3, Y: 4}) {
		t.Errorf("head = %v, want (3,4)", head)
	}
}

func TestEarlyTickIsIdempotent(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.PressDirection(components.Right)
	if evs := s.Tick(start); len(evs) != 1 {
		t.Fatalf("first tick = %v, want one event", kinds(evs))
	}

	early := start.Add(cfg.Snake.TickInterval / 2)
	before := s.Snapshot()
	for i := 0; i < 2; i++ {
		if evs := s.Tick(early); len(evs) != 0 {
			t.Fatalf("early tick %d produced %v", i, kinds(evs))
		}
		if !reflect.DeepEqual(s.Snapshot(), before) {
			t.Fatalf("early tick %d changed state", i)
		}
	}

	// At most one step per call, however late.
	evs := s.Tick(start.Add(10 * cfg.Snake.TickInterval))
	if got := kinds(evs); !reflect.DeepEqual(got, []EventKind{EventMoved}) {
		t.Errorf("late tick = %v, want [moved]", got)
	}
	if s.Steps() != 2 {
		t.Errorf("steps = %d, want 2", s.Steps())
	}
}

func TestObserversSeeEveryEvent(t *testing.T) {
	cfg := testConfig(t, 10, 10)
	s := newTestSession(t, cfg, cornerFood())
	c := newClock(cfg)

	var observed []Event
	s.Observe(func(ev Event) { observed = append(observed, ev) })

	var returned []Event
	s.PressDirection(components.Right)
	for s.State() == Playing {
		returned = append(returned, c.tick(s)...)
	}

	s.RequestRestart()
	if last := observed[len(observed)-1]; last.Kind != EventRestarted {
		t.Fatalf("last observed = %v, want restarted", last.Kind)
	}
	returned = append(returned, c.tick(s)...)

	if !reflect.DeepEqual(observed, returned) {
		t.Errorf("observed %v, returned %v", kinds(observed), kinds(returned))
	}
}

func TestRandomPlayInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		cfg := testConfig(t, 12, 8)
		s := newTestSession(t, cfg, systems.NewRNG(seed))
		driver := systems.NewRNG(seed + 1000)
		c := newClock(cfg)
		dirs := components.Directions()

		for i := 0; i < 500; i++ {
			if s.State() == GameOver {
				s.RequestRestart()
			}
			s.PressDirection(dirs[driver.RandInt(0, len(dirs)-1)])

			before := len(s.Snapshot().Snake)
			evs := c.tick(s)
			snap := s.Snapshot()

			ate := false
			for _, ev := range evs {
				if ev.Kind == EventAteCorrect || ev.Kind == EventAteWrong {
					ate = true
				}
			}
			grew := len(snap.Snake) - before
			if grew < 0 || grew > 1 {
				t.Fatalf("seed %d step %d: length changed by %d", seed, i, grew)
			}
			if (grew == 1) != ate {
				t.Fatalf("seed %d step %d: grew=%d ate=%v", seed, i, grew, ate)
			}

			seen := make(map[components.Coord]bool, len(snap.Snake))
			for _, seg := range snap.Snake {
				if seen[seg] {
					t.Fatalf("seed %d step %d: segment %v repeated in %v", seed, i, seg, snap.Snake)
				}
				seen[seg] = true
			}
			assertSolvable(t, snap)
		}
	}
}
