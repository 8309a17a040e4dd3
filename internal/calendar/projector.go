// Package calendar merges holidays, material releases, deadlines and custom
// entries into one date-ordered event list for rendering.
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/deadline"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/models"
)

// Event is one calendar cell entry. CSSClass carries the type class followed
// by one tag class per tag; client-side filtering keys off the tag classes.
type Event struct {
	Title    string           `json:"title"`
	Tooltip  string           `json:"tooltip,omitempty"`
	Date     time.Time        `json:"date"`
	Type     models.EventType `json:"type"`
	CSSClass string           `json:"css_class"`
	URL      string           `json:"url,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
}

// typeOrder breaks ties between events on the same date.
var typeOrder = map[models.EventType]int{
	models.EventHoliday:  0,
	models.EventDefense:  1,
	models.EventDeadline: 2,
	models.EventProgress: 3,
	models.EventRelease:  4,
}

// Input is everything the projector merges.
type Input struct {
	Holidays *holidays.Calendar
	// Posts must already be filtered for visibility.
	Posts   []models.ContentRecord
	Entries []models.CalendarEntry
}

// Projector builds event lists. It is stateless apart from the evaluator.
type Projector struct {
	eval *deadline.Evaluator
}

// NewProjector creates a Projector that derives deadlines with eval.
func NewProjector(eval *deadline.Evaluator) *Projector {
	return &Projector{eval: eval}
}

// Project returns the events whose local date lies within [start, end],
// sorted by date, then type, then title.
func (p *Projector) Project(in Input, start, end time.Time) []Event {
	from := clock.StartOfDay(start.In(clock.Location))
	to := clock.StartOfDay(end.In(clock.Location))
	inRange := func(t time.Time) bool {
		d := clock.StartOfDay(t.In(clock.Location))
		return !d.Before(from) && !d.After(to)
	}

	out := []Event{}
	if in.Holidays != nil {
		for _, h := range in.Holidays.QueryRange(from, to) {
			out = append(out, newEvent(models.EventHoliday, h.Name, h.Name, h.Date, "", "", nil))
		}
	}

	for _, r := range in.Posts {
		url := PostURL(r)
		if inRange(r.PublishedAt) {
			out = append(out, newEvent(models.EventRelease, r.Title, r.Lead, r.PublishedAt, url, "", r.Tags))
		}
		if r.NoDeadline {
			continue
		}
		if due := p.eval.EffectiveDate(r); inRange(due) {
			out = append(out, newEvent(models.EventDeadline, r.Title, "Due: "+r.Title, due, url, "", r.Tags))
		}
	}

	for _, e := range in.Entries {
		if !inRange(e.Date) {
			continue
		}
		typ := e.EventType
		if !typ.Valid() {
			typ = models.EventHoliday
		}
		out = append(out, newEvent(typ, e.Title, e.Tooltip, e.Date, e.URL, e.CSSClass, e.Tags))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if typeOrder[a.Type] != typeOrder[b.Type] {
			return typeOrder[a.Type] < typeOrder[b.Type]
		}
		return a.Title < b.Title
	})
	return out
}

// PostURL is the site-relative link of a material.
func PostURL(r models.ContentRecord) string {
	return "materials/" + r.Slug
}

func newEvent(typ models.EventType, title, tooltip string, at time.Time, url, css string, tags []string) Event {
	return Event{
		Title:    title,
		Tooltip:  tooltip,
		Date:     clock.StartOfDay(at.In(clock.Location)),
		Type:     typ,
		CSSClass: cssClass(typ, css, tags),
		URL:      url,
		Tags:     tags,
	}
}

// cssClass returns the base class (custom or "event-<type>") followed by a
// "tag-<tag>" class per tag with whitespace replaced by '-'.
func cssClass(typ models.EventType, custom string, tags []string) string {
	base := strings.TrimSpace(custom)
	if base == "" {
		base = "event-" + string(typ)
	}
	classes := []string{base}
	for _, t := range tags {
		if c := TagClass(t); c != "" {
			classes = append(classes, c)
		}
	}
	return strings.Join(classes, " ")
}

// TagClass returns the CSS class for tag, or "" for a blank tag.
func TagClass(tag string) string {
	fields := strings.Fields(tag)
	if len(fields) == 0 {
		return ""
	}
	return "tag-" + strings.Join(fields, "-")
}
