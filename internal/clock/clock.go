// Package clock provides the frozen build time and the academic term window.
//
// A Clock is constructed once per process and never mutated. Every component
// that needs "now" receives the same *Clock.
package clock

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
)

// Environment variables read by FromEnv.
const (
	EnvNow       = "STATIC_GEN_TIME"
	EnvTermStart = "TERM_START"
	EnvTermEnd   = "TERM_END"
)

// Location is the fixed UTC+8 zone used for every local-date computation.
var Location = time.FixedZone("Philippine Time", 8*60*60)

// Layouts are the accepted textual forms for timestamps without an offset.
var Layouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Clock is an immutable snapshot of build time and term boundaries.
type Clock struct {
	utcNow    time.Time
	termStart time.Time
	termEnd   time.Time
}

// New builds a Clock from explicit values. termEnd is extended to the last
// instant of its calendar day in Location.
func New(now, termStart, termEnd time.Time) (*Clock, error) {
	start := termStart.In(Location)
	end := EndOfDay(termEnd.In(Location))
	if start.After(end) {
		return nil, fmt.Errorf("clock: term start %s is after term end %s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), apperr.ErrConfig)
	}
	return &Clock{
		utcNow:    now.UTC(),
		termStart: start,
		termEnd:   end,
	}, nil
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// FromEnv resolves the frozen time and term window from the environment.
//
// A missing or unparsable STATIC_GEN_TIME falls back to wall() with a
// warning. A missing or unparsable TERM_START or TERM_END is an
// apperr.ErrConfig error and must stop the build.
func FromEnv(lookup LookupFunc, wall func() time.Time, logger *slog.Logger) (*Clock, error) {
	raw, _ := lookup(EnvNow)
	logger.Info("clock: resolving frozen time", slog.String("env", EnvNow), slog.String("raw", raw))

	now, err := ParseUTC(raw)
	if err != nil {
		now = wall().UTC()
		logger.Warn("clock: could not use frozen time, falling back to wall clock",
			slog.String("reason", err.Error()),
			slog.Time("now", now))
	} else {
		logger.Info("clock: time frozen", slog.Time("now", now))
	}

	start, err := requireLocal(lookup, EnvTermStart)
	if err != nil {
		return nil, err
	}
	end, err := requireLocal(lookup, EnvTermEnd)
	if err != nil {
		return nil, err
	}

	c, err := New(now, start, end)
	if err != nil {
		return nil, err
	}
	logger.Info("clock: term window resolved",
		slog.Time("term_start", c.termStart),
		slog.Time("term_end", c.termEnd),
		slog.Time("local_now", c.LocalNow()))
	return c, nil
}

func requireLocal(lookup LookupFunc, key string) (time.Time, error) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("clock: %s is required: %w", key, apperr.ErrConfig)
	}
	t, err := ParseLocal(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock: %s: %v: %w", key, err, apperr.ErrConfig)
	}
	return t, nil
}

// ParseUTC parses s, interpreting values without an offset as UTC.
func ParseUTC(s string) (time.Time, error) {
	t, err := parseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseLocal parses s, interpreting values without an offset in Location.
func ParseLocal(s string) (time.Time, error) {
	t, err := parseIn(s, Location)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(Location), nil
}

func parseIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UtcNow returns the frozen build instant in UTC.
func (c *Clock) UtcNow() time.Time { return c.utcNow }

// LocalNow returns the frozen build instant in Location.
func (c *Clock) LocalNow() time.Time { return c.utcNow.In(Location) }

// Today returns local midnight of the build date.
func (c *Clock) Today() time.Time { return StartOfDay(c.LocalNow()) }

// TermStart returns the inclusive start of the term.
func (c *Clock) TermStart() time.Time { return c.termStart }

// TermEnd returns the inclusive end of the term (last instant of its day).
func (c *Clock) TermEnd() time.Time { return c.termEnd }

// Location returns the zone used for local dates.
func (c *Clock) Location() *time.Location { return Location }

// TermOver reports whether the build happens after the term ended.
func (c *Clock) TermOver() bool { return c.LocalNow().After(c.termEnd) }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDate reports whether a and b fall on the same calendar date in Location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.In(Location).Date()
	by, bm, bd := b.In(Location).Date()
	return ay == by && am == bm && ad == bd
}
