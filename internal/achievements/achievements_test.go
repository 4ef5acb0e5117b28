package achievements

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Definition{
		{ID: "first-win", Name: "First Victory", Description: "Win your first game", Requirements: map[string]float64{"wins": 1}},
		{ID: "winning-streak", Name: "Winning Streak", Description: "Win 5 games in a row", Requirements: map[string]float64{"winStreak": 5}},
		{ID: "collector", Name: "Collector", Requirements: map[string]float64{"coins": 10}},
	})
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	return c
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
	}{
		{"missing id", []Definition{{Requirements: map[string]float64{"wins": 1}}}},
		{"duplicate id", []Definition{
			{ID: "a", Requirements: map[string]float64{"wins": 1}},
			{ID: "a", Requirements: map[string]float64{"wins": 2}},
		}},
		{"no requirements", []Definition{{ID: "a"}}},
		{"zero threshold", []Definition{{ID: "a", Requirements: map[string]float64{"wins": 0}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.defs)
			if !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("NewCatalog() error = %v, expected ErrInvalidDefinition", err)
			}
		})
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	reqs := map[string]float64{"wins": 1}
	c, err := NewCatalog([]Definition{{ID: "first-win", Requirements: reqs}})
	if err != nil {
		t.Fatal(err)
	}

	reqs["wins"] = 100
	d, _ := c.Get("first-win")
	d.Requirements["wins"] = 50

	again, _ := c.Get("first-win")
	if again.Requirements["wins"] != 1 {
		t.Errorf("catalog threshold changed to %v", again.Requirements["wins"])
	}
}

func TestUpdateProgressCompletesOnce(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(testCatalog(t), quietLogger(&buf))

	u, ok := tr.UpdateProgress("first-win", map[string]float64{"wins": 1})
	if !ok {
		t.Fatal("first-win should unlock on the first win")
	}
	if u.Definition.Name != "First Victory" || u.Progress != 1 {
		t.Errorf("Unlocked = %+v", u)
	}

	for i := 0; i < 3; i++ {
		if _, ok := tr.UpdateProgress("first-win", map[string]float64{"wins": 1}); ok {
			t.Fatal("unlock reported more than once")
		}
	}

	p, _ := tr.Progress("first-win")
	if !p.Completed {
		t.Error("completed latch was cleared")
	}
	if p.Progress != 4 {
		t.Errorf("progress = %v, expected 4 (keeps accumulating)", p.Progress)
	}
	if tr.State("first-win") != Completed {
		t.Errorf("State() = %v, expected Completed", tr.State("first-win"))
	}
}

func TestUpdateProgressAccumulates(t *testing.T) {
	tr := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))

	if _, ok := tr.UpdateProgress("winning-streak", map[string]float64{"winStreak": 3}); ok {
		t.Fatal("streak of 3 should not unlock")
	}
	p, _ := tr.Progress("winning-streak")
	if p.Progress != 3 {
		t.Errorf("progress = %v, expected 3", p.Progress)
	}
	if tr.State("winning-streak") != InProgress {
		t.Errorf("State() = %v, expected InProgress", tr.State("winning-streak"))
	}

	if _, ok := tr.UpdateProgress("winning-streak", map[string]float64{"winStreak": 2}); !ok {
		t.Error("3 + 2 should unlock the streak achievement")
	}
}

func TestUpdateProgressAdditivity(t *testing.T) {
	split := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))
	split.UpdateProgress("collector", map[string]float64{"coins": 4})
	split.UpdateProgress("collector", map[string]float64{"coins": 6})

	combined := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))
	combined.UpdateProgress("collector", map[string]float64{"coins": 10})

	a, _ := split.Progress("collector")
	b, _ := combined.Progress("collector")
	if a != b {
		t.Errorf("split %+v != combined %+v", a, b)
	}
	if !a.Completed {
		t.Error("10 coins should complete collector")
	}
}

func TestUpdateProgressIgnoresUnrelatedAndNegative(t *testing.T) {
	tr := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))

	tr.UpdateProgress("collector", map[string]float64{"wins": 5, "coins": -3})
	p, _ := tr.Progress("collector")
	if p.Progress != 0 {
		t.Errorf("progress = %v, expected 0", p.Progress)
	}
	if tr.State("collector") != NotStarted {
		t.Errorf("State() = %v, expected NotStarted", tr.State("collector"))
	}
}

func TestUpdateProgressUnknownID(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(testCatalog(t), quietLogger(&buf))

	if _, ok := tr.UpdateProgress("no-such-thing", map[string]float64{"wins": 1}); ok {
		t.Error("unknown id should not unlock anything")
	}
	if !strings.Contains(buf.String(), "achievement not found") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}

func TestMultiMetricSharesOneCounter(t *testing.T) {
	c, err := NewCatalog([]Definition{
		{ID: "all-rounder", Requirements: map[string]float64{"coins": 3, "wins": 2}},
	})
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTracker(c, quietLogger(&bytes.Buffer{}))

	// Both metrics feed the same scalar, so 3 coins alone satisfies both thresholds.
	if _, ok := tr.UpdateProgress("all-rounder", map[string]float64{"coins": 3}); !ok {
		t.Error("single scalar of 3 should satisfy thresholds 3 and 2")
	}
}

func TestObserve(t *testing.T) {
	tr := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))

	got := tr.Observe(map[string]float64{"wins": 1, "winStreak": 1})
	if len(got) != 1 || got[0].Definition.ID != "first-win" {
		t.Fatalf("Observe() = %+v, expected only first-win", got)
	}

	p, _ := tr.Progress("collector")
	if p.Progress != 0 {
		t.Error("Observe should not touch achievements without matching metrics")
	}
	p, _ = tr.Progress("winning-streak")
	if p.Progress != 1 {
		t.Errorf("winning-streak progress = %v, expected 1", p.Progress)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	tr := NewTracker(testCatalog(t), quietLogger(&bytes.Buffer{}))
	tr.UpdateProgress("first-win", map[string]float64{"wins": 1})
	tr.UpdateProgress("collector", map[string]float64{"coins": 7})
	saved := tr.Snapshot()

	if len(saved) != 3 || saved[0].AchievementID != "first-win" {
		t.Fatalf("Snapshot() = %+v", saved)
	}

	var buf bytes.Buffer
	restored := NewTracker(testCatalog(t), quietLogger(&buf))
	restored.Restore(append(saved, Progress{AchievementID: "retired", Progress: 9}))

	if restored.State("first-win") != Completed {
		t.Error("restored latch lost")
	}
	if _, ok := restored.UpdateProgress("first-win", map[string]float64{"wins": 1}); ok {
		t.Error("restored completed achievement unlocked again")
	}
	if _, ok := restored.UpdateProgress("collector", map[string]float64{"coins": 3}); !ok {
		t.Error("7 restored + 3 should unlock collector")
	}
	if !strings.Contains(buf.String(), "retired") {
		t.Error("unknown saved record should be logged")
	}
}
