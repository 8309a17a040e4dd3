package clock

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func envOf(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

var wallTime = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func wall() time.Time { return wallTime }

func TestFromEnv_FrozenTime(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		EnvNow:       "2025-12-12T08:00:00Z",
		EnvTermStart: "2025-08-01",
		EnvTermEnd:   "2025-12-20",
	}), wall, discardLogger())
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := time.Date(2025, 12, 12, 8, 0, 0, 0, time.UTC)
	if !c.UtcNow().Equal(want) {
		t.Errorf("UtcNow = %v, want %v", c.UtcNow(), want)
	}
	if got := c.LocalNow().Hour(); got != 16 {
		t.Errorf("LocalNow hour = %d, want 16", got)
	}
}

func TestFromEnv_OverrideWithoutOffsetIsUTC(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		EnvNow:       "2025-09-01 10:30:00",
		EnvTermStart: "2025-08-01",
		EnvTermEnd:   "2025-12-20",
	}), wall, discardLogger())
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if want := time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC); !c.UtcNow().Equal(want) {
		t.Errorf("UtcNow = %v, want %v", c.UtcNow(), want)
	}
}

func TestFromEnv_BadOverrideFallsBackToWall(t *testing.T) {
	for _, raw := range []string{"", "not a date"} {
		c, err := FromEnv(envOf(map[string]string{
			EnvNow:       raw,
			EnvTermStart: "2025-08-01",
			EnvTermEnd:   "2025-12-20",
		}), wall, discardLogger())
		if err != nil {
			t.Fatalf("FromEnv(%q): %v", raw, err)
		}
		if !c.UtcNow().Equal(wallTime) {
			t.Errorf("override %q: UtcNow = %v, want wall time", raw, c.UtcNow())
		}
	}
}

func TestFromEnv_MissingTermIsConfigError(t *testing.T) {
	cases := map[string]map[string]string{
		"no start":  {EnvTermEnd: "2025-12-20"},
		"no end":    {EnvTermStart: "2025-08-01"},
		"bad start": {EnvTermStart: "August", EnvTermEnd: "2025-12-20"},
		"bad end":   {EnvTermStart: "2025-08-01", EnvTermEnd: "13/45/2025"},
		"reversed":  {EnvTermStart: "2025-12-21", EnvTermEnd: "2025-12-20"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env), wall, discardLogger())
			if !errors.Is(err, apperr.ErrConfig) {
				t.Fatalf("err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestNew_TermEndIsEndOfDay(t *testing.T) {
	end := time.Date(2025, 12, 20, 0, 0, 0, 0, Location)
	c, err := New(wallTime, time.Date(2025, 8, 1, 0, 0, 0, 0, Location), end)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	te := c.TermEnd()
	if te.Day() != 20 || te.Hour() != 23 || te.Minute() != 59 || te.Second() != 59 {
		t.Errorf("TermEnd = %v, want 2025-12-20 23:59:59.999999999", te)
	}
	if !te.Add(time.Nanosecond).Equal(time.Date(2025, 12, 21, 0, 0, 0, 0, Location)) {
		t.Errorf("TermEnd not the last instant of the day: %v", te)
	}
}

func TestNew_SameDayTermIsValid(t *testing.T) {
	d := time.Date(2025, 8, 1, 0, 0, 0, 0, Location)
	if _, err := New(wallTime, d, d); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestTermOver(t *testing.T) {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, Location)
	end := time.Date(2025, 12, 20, 0, 0, 0, 0, Location)

	inside, _ := New(time.Date(2025, 12, 20, 15, 0, 0, 0, time.UTC), start, end) // 23:00 local
	if inside.TermOver() {
		t.Error("term should still be running at 23:00 local on the end date")
	}
	after, _ := New(time.Date(2025, 12, 20, 16, 0, 0, 0, time.UTC), start, end) // 00:00 next day local
	if !after.TermOver() {
		t.Error("term should be over at local midnight after the end date")
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 2, 1, 16, 30, 0, 0, time.UTC) // 2025-02-02 00:30 local
	b := time.Date(2025, 2, 2, 9, 0, 0, 0, Location)
	if !SameDate(a, b) {
		t.Errorf("expected %v and %v to share a local date", a, b)
	}
}
