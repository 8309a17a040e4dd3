package calendar

import (
	"time"

	"github.com/coursekit/coursekit/internal/clock"
)

// Month is one page of the calendar view.
type Month struct {
	Index  int       `json:"index"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	Events []Event   `json:"events"`
}

// Months groups events into consecutive months covering [start, end]. Every
// month in the range is present, even without events. Index counts from 0.
func Months(events []Event, start, end time.Time) []Month {
	from := firstOfMonth(start)
	to := firstOfMonth(end)

	out := []Month{}
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		out = append(out, Month{
			Index:  len(out),
			Label:  m.Format("January 2006"),
			Start:  m,
			Events: []Event{},
		})
	}
	if len(out) == 0 {
		return out
	}

	for _, e := range events {
		d := e.Date.In(clock.Location)
		i := (d.Year()-from.Year())*12 + int(d.Month()-from.Month())
		if i < 0 || i >= len(out) {
			continue
		}
		out[i].Events = append(out[i].Events, e)
	}
	return out
}

func firstOfMonth(t time.Time) time.Time {
	t = t.In(clock.Location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, clock.Location)
}
