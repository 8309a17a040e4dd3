// Package holidays builds the public holiday calendar for the build years.
//
// Holidays come from a live source when it answers and from a deterministic
// local computation when it does not. Lunar and sighting-based holidays only
// ever come from the live source.
package holidays

import (
	"sort"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
)

// Source names recorded in Provenance.
const (
	SourceLive     = "nager"
	SourceFallback = "fallback"
)

// Holiday is a named calendar date. Date is local midnight in clock.Location.
type Holiday struct {
	Date       time.Time   `json:"date"`
	Name       string      `json:"name"`
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Provenance records where a holiday came from. Nothing in the core depends
// on it.
type Provenance struct {
	Source      string   `json:"source"`
	CountryCode string   `json:"country_code,omitempty"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Types       []string `json:"types,omitempty"`
}

// Calendar is a read-only, date-sorted list of holidays.
type Calendar struct {
	holidays []Holiday
}

// NewCalendar copies hs and sorts it ascending by date. Entries sharing a
// date keep their input order.
func NewCalendar(hs []Holiday) *Calendar {
	out := make([]Holiday, len(hs))
	copy(out, hs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return &Calendar{holidays: out}
}

// All returns every holiday in the calendar.
func (c *Calendar) All() []Holiday {
	out := make([]Holiday, len(c.holidays))
	copy(out, c.holidays)
	return out
}

// Len returns the number of holidays.
func (c *Calendar) Len() int { return len(c.holidays) }

// QueryRange returns holidays whose date lies within [start, end], compared
// by local calendar date on both ends.
func (c *Calendar) QueryRange(start, end time.Time) []Holiday {
	from := clock.StartOfDay(start.In(clock.Location))
	to := clock.StartOfDay(end.In(clock.Location))

	out := []Holiday{}
	for _, h := range c.holidays {
		if h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// On returns the holidays falling on t's local date.
func (c *Calendar) On(t time.Time) []Holiday {
	return c.QueryRange(t, t)
}

func localDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, clock.Location)
}
