// Package models defines the content types consumed by the site core.
package models

import (
	"fmt"
	"time"
)

// Author credits a person on a course material.
type Author struct {
	Name           string `json:"name" yaml:"name"`
	Nickname       string `json:"nickname,omitempty" yaml:"nickname"`
	GitHubUserName string `json:"github_user_name,omitempty" yaml:"gitHubUserName"`
}

// DefaultAuthorName is shown when an author entry carries no name.
const DefaultAuthorName = "Author"

// ContentRecord is a course material as handed over by ingestion.
type ContentRecord struct {
	Path         string     `json:"path"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Lead         string     `json:"lead,omitempty"`
	Subtitle     string     `json:"subtitle,omitempty"`
	Authors      []Author   `json:"authors,omitempty"`
	DownloadLink string     `json:"download_link,omitempty"`
	IsDraft      bool       `json:"is_draft"`
	PublishedAt  time.Time  `json:"published_at"`
	Tags         []string   `json:"tags"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	NoDeadline   bool       `json:"no_deadline"`
	Body         string     `json:"-"`
	Checksum     string     `json:"checksum"`
}

// Project is a student project showcased on the site.
type Project struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Published  time.Time `json:"published"`
	URL        string    `json:"url,omitempty"`
	Authors    []string  `json:"authors,omitempty"`
	Abstract   string    `json:"abstract,omitempty"`
	Docs       string    `json:"docs,omitempty"`
	Repository string    `json:"repository,omitempty"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Year       string    `json:"year,omitempty"`
	Tags       []string  `json:"tags"`
}

// Batch returns the academic year label of the project, e.g. "2025-2026".
func (p Project) Batch() string {
	return fmt.Sprintf("%d-%d", p.Published.Year(), p.Published.AddDate(1, 0, 0).Year())
}

// Booking is a consultation slot link.
type Booking struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Calendar string   `json:"calendar"`
	Desc     string   `json:"desc,omitempty"`
	Tags     []string `json:"tags"`
}

// EventType classifies calendar events; it drives styling downstream.
type EventType string

const (
	EventHoliday  EventType = "holiday"
	EventRelease  EventType = "release"
	EventDeadline EventType = "deadline"
	EventProgress EventType = "progress"
	EventDefense  EventType = "defense"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventHoliday, EventRelease, EventDeadline, EventProgress, EventDefense:
		return true
	}
	return false
}

// CalendarEntry is a user-authored calendar event (registration week,
// defense schedule and the like).
type CalendarEntry struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Tooltip   string    `json:"tooltip,omitempty"`
	EventType EventType `json:"event_type"`
	URL       string    `json:"url,omitempty"`
	CSSClass  string    `json:"css_class,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
}

// ContentMetadata is a lightweight listing entry returned by storage.
type ContentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
