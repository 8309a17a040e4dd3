package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coursekit/coursekit/internal/calendar"
	"github.com/coursekit/coursekit/internal/deadline"
	"github.com/coursekit/coursekit/internal/feed"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/storage"
)

// Artifact file names written by WriteArtifacts.
const (
	SiteFile     = "site.json"
	FeedFile     = "feed.json"
	CalendarFile = "calendar.ics"
)

// PostView is a material decorated with its computed deadline.
type PostView struct {
	models.ContentRecord
	URL               string          `json:"url"`
	Status            deadline.Status `json:"status"`
	EffectiveDeadline time.Time       `json:"effective_deadline"`
}

// Snapshot is the JSON document handed to the renderer.
type Snapshot struct {
	Title       string             `json:"title"`
	BaseURL     string             `json:"base_url,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
	TermStart   time.Time          `json:"term_start"`
	TermEnd     time.Time          `json:"term_end"`
	TermOver    bool               `json:"term_over"`
	Posts       []PostView         `json:"posts"`
	Tags        []string           `json:"tags"`
	Projects    []models.Project   `json:"projects"`
	Bookings    []models.Booking   `json:"bookings"`
	Holidays    []holidays.Holiday `json:"holidays"`
	Months      []calendar.Month   `json:"months"`
}

// View decorates r with its URL and deadline.
func (s *Site) View(r models.ContentRecord) PostView {
	return PostView{
		ContentRecord:     r,
		URL:               calendar.PostURL(r),
		Status:            s.Status(r),
		EffectiveDeadline: s.EffectiveDate(r),
	}
}

// Snapshot renders the whole site state.
func (s *Site) Snapshot() Snapshot {
	posts := make([]PostView, 0, len(s.visible))
	for _, r := range s.visible {
		posts = append(posts, s.View(r))
	}
	start, end := s.clock.TermStart(), s.clock.TermEnd()
	return Snapshot{
		Title:       s.opts.Title,
		BaseURL:     s.opts.BaseURL,
		GeneratedAt: s.clock.UtcNow(),
		TermStart:   start,
		TermEnd:     end,
		TermOver:    s.clock.TermOver(),
		Posts:       posts,
		Tags:        s.AllTags(),
		Projects:    s.Projects(),
		Bookings:    s.Bookings(),
		Holidays:    s.holidays.All(),
		Months:      calendar.Months(s.TermEvents(), start, end),
	}
}

// ICS renders the term calendar as iCalendar.
func (s *Site) ICS() ([]byte, error) {
	var buf bytes.Buffer
	err := calendar.WriteICS(&buf, s.TermEvents(), calendar.ICSOptions{
		Name:      s.opts.Title,
		ProductID: "-//coursekit//calendar//EN",
		BaseURL:   s.opts.BaseURL,
		Stamp:     s.clock.UtcNow(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArtifacts writes site.json, feed.json and calendar.ics to w. Each
// file is written atomically by the storage layer.
func (s *Site) WriteArtifacts(w storage.Writer) error {
	snap, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("site: marshal snapshot: %w", err)
	}
	items, err := feed.Marshal(s.Feed())
	if err != nil {
		return err
	}
	cal, err := s.ICS()
	if err != nil {
		return err
	}

	for _, a := range []struct {
		name string
		data []byte
	}{
		{SiteFile, append(snap, '\n')},
		{FeedFile, items},
		{CalendarFile, cal},
	} {
		if err := w.Write(a.name, a.data); err != nil {
			return fmt.Errorf("site: write %s: %w", a.name, err)
		}
	}
	return nil
}
