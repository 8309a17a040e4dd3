// Package deadline derives the due status of course materials relative to
// the build clock.
package deadline

import (
	"fmt"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/models"
)

// Status is the three-state deadline status plus None for opted-out items.
type Status int

const (
	None Status = iota
	Future
	DueToday
	Expired
)

var statusNames = [...]string{
	None:     "none",
	Future:   "future",
	DueToday: "due-today",
	Expired:  "expired",
}

func (s Status) String() string {
	if s < None || s > Expired {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText renders the status name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Evaluator computes deadline status against a frozen clock. It holds no
// state besides the clock and is safe for concurrent use.
type Evaluator struct {
	clock *clock.Clock
}

// NewEvaluator creates an Evaluator bound to c.
func NewEvaluator(c *clock.Clock) *Evaluator {
	return &Evaluator{clock: c}
}

// EffectiveDate returns the explicit deadline, or one calendar month after
// publication when none is set.
func (e *Evaluator) EffectiveDate(r models.ContentRecord) time.Time {
	if r.Deadline != nil {
		return r.Deadline.In(clock.Location)
	}
	return AddMonths(r.PublishedAt.In(clock.Location), 1)
}

// Status returns the deadline status of r at the clock's local now.
func (e *Evaluator) Status(r models.ContentRecord) Status {
	if r.NoDeadline {
		return None
	}

	effective := e.EffectiveDate(r)
	now := e.clock.LocalNow()

	switch {
	case clock.EndOfDay(effective).Before(now):
		return Expired
	case clock.SameDate(effective, now):
		return DueToday
	default:
		return Future
	}
}

// AddMonths adds n calendar months to t, clamping the day to the last day of
// the target month (Jan 31 + 1 month is Feb 28 or 29, not early March).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
