package content_test

import (
	"errors"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/testutil"
)

const scannerMD = `---
title: Lexical Analysis
lead: Build a scanner for the toy language.
published: 2025-08-31
deadline: 2025-09-14T23:59:00+08:00
tags: [cmsc-124, lab]
authors:
  - name: Ada
    gitHubUserName: ada
  - nickname: anon
downloadLink: https://example.com/scanner.zip
---
# Lexical Analysis

Write a scanner.
`

func loadTree(t *testing.T, files map[string]string) *content.Bundle {
	t.Helper()
	_, store := testutil.TestContent(t, files)
	b, err := content.NewLoader(store, content.DefaultLayout(), testutil.Logger()).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestLoad_Material(t *testing.T) {
	b := loadTree(t, map[string]string{"materials/week-1/scanner.md": scannerMD})
	if len(b.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(b.Records))
	}
	r := b.Records[0]
	if r.Slug != "scanner" || r.Path != "materials/week-1/scanner.md" {
		t.Errorf("slug/path = %q/%q", r.Slug, r.Path)
	}
	if r.Title != "Lexical Analysis" {
		t.Errorf("title = %q", r.Title)
	}
	if want := time.Date(2025, 8, 31, 0, 0, 0, 0, clock.Location); !r.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", r.PublishedAt, want)
	}
	if r.Deadline == nil || r.Deadline.Day() != 14 {
		t.Errorf("deadline = %v", r.Deadline)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "cmsc-124" || r.Tags[1] != "lab" {
		t.Errorf("tags = %v", r.Tags)
	}
	if len(r.Authors) != 2 || r.Authors[0].GitHubUserName != "ada" {
		t.Fatalf("authors = %+v", r.Authors)
	}
	if r.Authors[1].Name != models.DefaultAuthorName {
		t.Errorf("unnamed author = %q, want %q", r.Authors[1].Name, models.DefaultAuthorName)
	}
	if r.Checksum == "" || r.Body == "" {
		t.Error("expected checksum and body to be populated")
	}
}

func TestLoad_CommaTagsAndDefaultTitle(t *testing.T) {
	b := loadTree(t, map[string]string{
		"materials/notes.md": "---\npublished: 2025-08-01\ntags: cmsc-124, hidden\n---\nno heading here\n",
	})
	if len(b.Records) != 1 {
		t.Fatalf("records = %d", len(b.Records))
	}
	r := b.Records[0]
	if r.Title != content.DefaultTitle {
		t.Errorf("title = %q", r.Title)
	}
	if len(r.Tags) != 2 || r.Tags[1] != "hidden" {
		t.Errorf("tags = %v", r.Tags)
	}
	if r.Deadline != nil {
		t.Errorf("deadline = %v, want nil", r.Deadline)
	}
}

func TestLoad_SkipsInvalidFiles(t *testing.T) {
	b := loadTree(t, map[string]string{
		"materials/ok.md":        "---\npublished: 2025-08-01\n---\n",
		"materials/no-date.md":   "---\ntitle: Missing date\n---\n",
		"materials/plain.md":     "# Just markdown\n",
		"materials/bad-date.md":  "---\npublished: someday\n---\n",
		"events/no-title.md":     "---\ndate: 2025-09-01\n---\n",
		"events/bad-type.md":     "---\ntitle: X\ndate: 2025-09-01\neventType: party\n---\n",
		"bookings/bad-link.md":   "---\nname: Office hours\ncalendar: not a url\n---\n",
		"projects/no-publish.md": "---\ntitle: Compiler\n---\n",
	})
	if len(b.Records) != 1 || b.Records[0].Slug != "ok" {
		t.Errorf("records = %+v", b.Records)
	}
	if len(b.Events) != 0 || len(b.Bookings) != 0 || len(b.Projects) != 0 {
		t.Errorf("expected invalid events/bookings/projects to be skipped: %+v", b)
	}
	if b.Skipped != 7 {
		t.Errorf("skipped = %d, want 7", b.Skipped)
	}
}

func TestLoad_ProjectsBookingsEvents(t *testing.T) {
	b := loadTree(t, map[string]string{
		"projects/compiler.md": "---\ntitle: Toy Compiler\npublished: 2025-03-01\nauthors: [Ada, Lin]\nrepository: https://github.com/x/y\nyear: 2025\ntags: [cmsc-124]\n---\n",
		"bookings/consult.md":  "---\nname: Consultation\ncalendar: https://cal.example.com/book\ndesc: Fridays\n---\n",
		"events/defense.md":    "---\ntitle: Final Defense\ndate: 2025-12-05\neventType: Defense\ntooltip: Room 301\n---\n",
		"events/reg.md":        "---\ntitle: Registration\ndate: 2025-08-04\n---\n",
	})
	if len(b.Projects) != 1 || b.Projects[0].Year != "2025" || len(b.Projects[0].Authors) != 2 {
		t.Errorf("projects = %+v", b.Projects)
	}
	if b.Projects[0].Batch() != "2025-2026" {
		t.Errorf("batch = %q", b.Projects[0].Batch())
	}
	if len(b.Bookings) != 1 || b.Bookings[0].Calendar != "https://cal.example.com/book" {
		t.Errorf("bookings = %+v", b.Bookings)
	}
	if len(b.Events) != 2 {
		t.Fatalf("events = %+v", b.Events)
	}
	types := map[string]models.EventType{}
	for _, e := range b.Events {
		types[e.Title] = e.EventType
	}
	if types["Final Defense"] != models.EventDefense {
		t.Errorf("defense type = %q", types["Final Defense"])
	}
	if types["Registration"] != models.EventHoliday {
		t.Errorf("default type = %q, want holiday", types["Registration"])
	}
}

func TestLoad_EmptyTree(t *testing.T) {
	b := loadTree(t, nil)
	if b.Records == nil || len(b.Records) != 0 {
		t.Errorf("records = %#v, want empty non-nil", b.Records)
	}
}

func TestParseRecord_Invalid(t *testing.T) {
	_, err := content.ParseRecord("materials/x.md", []byte("no frontmatter"))
	if !errors.Is(err, apperr.ErrInvalidContent) {
		t.Fatalf("err = %v, want ErrInvalidContent", err)
	}
}

func TestKind(t *testing.T) {
	l := content.NewLoader(nil, content.DefaultLayout(), testutil.Logger())
	cases := map[string]string{
		"materials/a.md":    "material",
		"projects/b.md":     "project",
		"bookings/c.md":     "booking",
		"events/d.md":       "event",
		"drafts/e.md":       "",
		"materialsfoo/x.md": "",
	}
	for p, want := range cases {
		if got := l.Kind(p); got != want {
			t.Errorf("Kind(%q) = %q, want %q", p, got, want)
		}
	}
}
