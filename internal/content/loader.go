// Package content turns frontmatter-tagged Markdown files into the typed
// records the site core consumes.
package content

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/checksum"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/parser"
	"github.com/coursekit/coursekit/internal/storage"
)

// DefaultTitle is used for materials without a title.
const DefaultTitle = "Untitled"

// Layout names the content sub-directories.
type Layout struct {
	Materials string `yaml:"materials"`
	Projects  string `yaml:"projects"`
	Bookings  string `yaml:"bookings"`
	Events    string `yaml:"events"`
}

// DefaultLayout returns the conventional directory names.
func DefaultLayout() Layout {
	return Layout{
		Materials: "materials",
		Projects:  "projects",
		Bookings:  "bookings",
		Events:    "events",
	}
}

// Bundle is everything loaded from one content tree.
type Bundle struct {
	Records  []models.ContentRecord
	Projects []models.Project
	Bookings []models.Booking
	Events   []models.CalendarEntry
	Skipped  int
}

// Loader reads a content tree.
type Loader struct {
	store  storage.Reader
	layout Layout
	logger *slog.Logger
}

// NewLoader creates a Loader over store.
func NewLoader(store storage.Reader, layout Layout, logger *slog.Logger) *Loader {
	return &Loader{store: store, layout: layout, logger: logger}
}

// Load parses every content file. Files that fail to parse or validate are
// skipped with a warning; only storage failures are returned.
func (l *Loader) Load() (*Bundle, error) {
	b := &Bundle{
		Records:  []models.ContentRecord{},
		Projects: []models.Project{},
		Bookings: []models.Booking{},
		Events:   []models.CalendarEntry{},
	}

	err := l.each(l.layout.Materials, b, func(p string, data []byte, res *parser.Result) error {
		r, err := courseRecord(p, data, res)
		if err == nil {
			b.Records = append(b.Records, r)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = l.each(l.layout.Projects, b, func(p string, _ []byte, res *parser.Result) error {
		pr, err := project(p, res)
		if err == nil {
			b.Projects = append(b.Projects, pr)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = l.each(l.layout.Bookings, b, func(p string, _ []byte, res *parser.Result) error {
		bk, err := booking(p, res)
		if err == nil {
			b.Bookings = append(b.Bookings, bk)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = l.each(l.layout.Events, b, func(p string, _ []byte, res *parser.Result) error {
		ev, err := calendarEntry(p, res)
		if err == nil {
			b.Events = append(b.Events, ev)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("content: loaded",
		slog.Int("materials", len(b.Records)),
		slog.Int("projects", len(b.Projects)),
		slog.Int("bookings", len(b.Bookings)),
		slog.Int("events", len(b.Events)),
		slog.Int("skipped", b.Skipped))
	return b, nil
}

// Kind reports which content directory rel belongs to, or "" if none.
func (l *Loader) Kind(rel string) string {
	for kind, dir := range map[string]string{
		"material": l.layout.Materials,
		"project":  l.layout.Projects,
		"booking":  l.layout.Bookings,
		"event":    l.layout.Events,
	} {
		if dir != "" && strings.HasPrefix(rel, dir+"/") {
			return kind
		}
	}
	return ""
}

func (l *Loader) each(dir string, b *Bundle, fn func(p string, data []byte, res *parser.Result) error) error {
	if dir == "" {
		return nil
	}
	metas, err := l.store.List(dir)
	if err != nil {
		return fmt.Errorf("content: list %s: %w", dir, err)
	}
	for _, m := range metas {
		data, err := l.store.Read(m.Path)
		if err != nil {
			return fmt.Errorf("content: read %s: %w", m.Path, err)
		}
		res, err := parser.Parse(data)
		if err == nil {
			err = fn(m.Path, data, res)
		}
		if err != nil {
			b.Skipped++
			l.logger.Warn("content: skipped file", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}
	return nil
}

// ParseRecord decodes a single course material file.
func ParseRecord(p string, data []byte) (models.ContentRecord, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.ContentRecord{}, err
	}
	return courseRecord(p, data, res)
}

func decode(p string, res *parser.Result, fm validation.Validatable) error {
	if !res.HasFrontmatter() {
		return fmt.Errorf("content: %s: no frontmatter: %w", p, apperr.ErrInvalidContent)
	}
	if err := res.Decode(fm); err != nil {
		return fmt.Errorf("content: %s: %v: %w", p, err, apperr.ErrInvalidContent)
	}
	if err := fm.Validate(); err != nil {
		return fmt.Errorf("content: %s: %v: %w", p, err, apperr.ErrInvalidContent)
	}
	return nil
}

func courseRecord(p string, data []byte, res *parser.Result) (models.ContentRecord, error) {
	var fm courseFrontMatter
	if err := decode(p, res, &fm); err != nil {
		return models.ContentRecord{}, err
	}

	title := res.Title
	if title == "" {
		title = DefaultTitle
	}
	authors := make([]models.Author, len(fm.Authors))
	for i, a := range fm.Authors {
		if strings.TrimSpace(a.Name) == "" {
			a.Name = models.DefaultAuthorName
		}
		authors[i] = a
	}

	return models.ContentRecord{
		Path:         p,
		Slug:         slug(p),
		Title:        title,
		Lead:         fm.Lead,
		Subtitle:     fm.Subtitle,
		Authors:      authors,
		DownloadLink: fm.DownloadLink,
		IsDraft:      fm.IsDraft,
		PublishedAt:  fm.Published.Time,
		Tags:         res.Tags,
		Deadline:     timePtr(fm.Deadline),
		NoDeadline:   fm.NoDeadline,
		Body:         res.Body,
		Checksum:     checksum.Sum(data),
	}, nil
}

func project(p string, res *parser.Result) (models.Project, error) {
	var fm projectFrontMatter
	if err := decode(p, res, &fm); err != nil {
		return models.Project{}, err
	}
	return models.Project{
		Path:       p,
		Title:      fm.Title,
		Published:  fm.Published.Time,
		URL:        fm.URL,
		Authors:    fm.Authors,
		Abstract:   fm.Abstract,
		Docs:       fm.Docs,
		Repository: fm.Repository,
		Thumbnail:  fm.Thumbnail,
		Year:       fm.Year,
		Tags:       res.Tags,
	}, nil
}

func booking(p string, res *parser.Result) (models.Booking, error) {
	var fm bookingFrontMatter
	if err := decode(p, res, &fm); err != nil {
		return models.Booking{}, err
	}
	return models.Booking{
		Path:     p,
		Name:     fm.Name,
		Calendar: fm.Calendar,
		Desc:     fm.Desc,
		Tags:     res.Tags,
	}, nil
}

func calendarEntry(p string, res *parser.Result) (models.CalendarEntry, error) {
	var fm eventFrontMatter
	if err := decode(p, res, &fm); err != nil {
		return models.CalendarEntry{}, err
	}
	return models.CalendarEntry{
		Path:      p,
		Title:     fm.Title,
		Date:      fm.Date.Time,
		Tooltip:   fm.Tooltip,
		EventType: eventType(fm.EventType),
		URL:       fm.URL,
		CSSClass:  fm.CSSClass,
		Tags:      res.Tags,
	}, nil
}

func slug(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

func timePtr(ts *parser.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
