// Package site assembles the immutable view of one build: visible
// materials, their deadline status, holidays and the calendar.
package site

import (
	"fmt"
	"sort"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/calendar"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/deadline"
	"github.com/coursekit/coursekit/internal/feed"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/visibility"
)

// Options carries the site-wide settings.
type Options struct {
	Title      string
	BaseURL    string
	HiddenTags []string
}

// Site is a read-only snapshot. It is never mutated after New returns, so a
// *Site can be shared between goroutines and swapped atomically on rebuild.
type Site struct {
	opts      Options
	clock     *clock.Clock
	filter    *visibility.Filter
	eval      *deadline.Evaluator
	projector *calendar.Projector
	holidays  *holidays.Calendar

	records  []models.ContentRecord
	visible  []models.ContentRecord
	tags     []string
	projects []models.Project
	bookings []models.Booking
	entries  []models.CalendarEntry
	skipped  int
}

// New builds a Site from loaded content and a holiday calendar. A nil bundle
// or calendar is treated as empty.
func New(c *clock.Clock, b *content.Bundle, hol *holidays.Calendar, opts Options) *Site {
	if b == nil {
		b = &content.Bundle{}
	}
	if hol == nil {
		hol = holidays.NewCalendar(nil)
	}
	filter := visibility.New(c, opts.HiddenTags)
	eval := deadline.NewEvaluator(c)

	s := &Site{
		opts:      opts,
		clock:     c,
		filter:    filter,
		eval:      eval,
		projector: calendar.NewProjector(eval),
		holidays:  hol,
		records:   b.Records,
		visible:   filter.VisiblePosts(b.Records),
		tags:      filter.AllTags(b.Records),
		entries:   b.Events,
		skipped:   b.Skipped,
	}

	s.projects = []models.Project{}
	for _, p := range b.Projects {
		if !filter.IsHidden(p.Tags) {
			s.projects = append(s.projects, p)
		}
	}
	sort.SliceStable(s.projects, func(i, j int) bool {
		return s.projects[i].Published.After(s.projects[j].Published)
	})

	s.bookings = []models.Booking{}
	for _, bk := range b.Bookings {
		if !filter.IsHidden(bk.Tags) {
			s.bookings = append(s.bookings, bk)
		}
	}
	sort.SliceStable(s.bookings, func(i, j int) bool {
		return s.bookings[i].Name < s.bookings[j].Name
	})
	return s
}

// Clock returns the build clock.
func (s *Site) Clock() *clock.Clock { return s.clock }

// Options returns the site settings.
func (s *Site) Options() Options { return s.opts }

// Skipped returns how many content files were rejected by the loader.
func (s *Site) Skipped() int { return s.skipped }

// VisiblePosts returns the visible materials, newest first.
func (s *Site) VisiblePosts() []models.ContentRecord {
	out := make([]models.ContentRecord, len(s.visible))
	copy(out, s.visible)
	return out
}

// AllTags returns the sorted tags of the visible materials.
func (s *Site) AllTags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Post returns the visible material with the given slug.
func (s *Site) Post(slug string) (models.ContentRecord, error) {
	for _, r := range s.visible {
		if r.Slug == slug {
			return r, nil
		}
	}
	return models.ContentRecord{}, fmt.Errorf("site: post %q: %w", slug, apperr.ErrNotFound)
}

// Status returns the deadline status of r.
func (s *Site) Status(r models.ContentRecord) deadline.Status { return s.eval.Status(r) }

// EffectiveDate returns the deadline used for r.
func (s *Site) EffectiveDate(r models.ContentRecord) time.Time { return s.eval.EffectiveDate(r) }

// Projects returns the showcased projects, newest first.
func (s *Site) Projects() []models.Project {
	out := make([]models.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Bookings returns the consultation links sorted by name.
func (s *Site) Bookings() []models.Booking {
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// Holidays returns the holiday calendar.
func (s *Site) Holidays() *holidays.Calendar { return s.holidays }

// Events projects the calendar for [start, end].
func (s *Site) Events(start, end time.Time) []calendar.Event {
	return s.projector.Project(calendar.Input{
		Holidays: s.holidays,
		Posts:    s.visible,
		Entries:  s.entries,
	}, start, end)
}

// TermEvents projects the calendar over the whole term.
func (s *Site) TermEvents() []calendar.Event {
	return s.Events(s.clock.TermStart(), s.clock.TermEnd())
}

// Feed returns the notification feed items.
func (s *Site) Feed() []feed.Item { return feed.Build(s.clock, s.records) }
