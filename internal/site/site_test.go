package site_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/site"
	"github.com/coursekit/coursekit/internal/testutil"
)

func local(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, clock.Location)
}

// now is 2025-09-10 12:00 local.
var now = time.Date(2025, 9, 10, 4, 0, 0, 0, time.UTC)

func testSite(t *testing.T) *site.Site {
	t.Helper()
	due := local(2025, 9, 10).Add(23 * time.Hour)
	bundle := &content.Bundle{
		Records: []models.ContentRecord{
			{Slug: "scanner", Title: "Scanner", PublishedAt: local(2025, 8, 11), Tags: []string{"lab"}},
			{Slug: "parser", Title: "Parser", PublishedAt: local(2025, 9, 1), Deadline: &due, Tags: []string{"lab", "cmsc-124"}},
			{Slug: "draft", Title: "Draft", PublishedAt: local(2025, 9, 2), IsDraft: true, Tags: []string{"draft-only"}},
			{Slug: "secret", Title: "Secret", PublishedAt: local(2025, 9, 3), Tags: []string{"Hidden"}},
			{Slug: "later", Title: "Later", PublishedAt: local(2025, 10, 1)},
		},
		Projects: []models.Project{
			{Title: "Old", Published: local(2024, 3, 1)},
			{Title: "New", Published: local(2025, 3, 1)},
			{Title: "Hidden", Published: local(2025, 4, 1), Tags: []string{"hidden"}},
		},
		Bookings: []models.Booking{{Name: "Zed"}, {Name: "Ada"}},
		Events: []models.CalendarEntry{
			{Title: "Midterms", Date: local(2025, 10, 6), EventType: models.EventProgress},
		},
	}
	hol := holidays.NewCalendar([]holidays.Holiday{{Date: local(2025, 8, 25), Name: "National Heroes Day"}})
	return site.New(testutil.Clock(t, now), bundle, hol, site.Options{
		Title:      "CMSC 124",
		BaseURL:    "https://course.example.com",
		HiddenTags: []string{"hidden"},
	})
}

func TestSite_Visibility(t *testing.T) {
	s := testSite(t)

	posts := s.VisiblePosts()
	if len(posts) != 2 || posts[0].Slug != "parser" || posts[1].Slug != "scanner" {
		t.Fatalf("visible = %+v", posts)
	}
	tags := s.AllTags()
	if strings.Join(tags, ",") != "cmsc-124,lab" {
		t.Errorf("tags = %v", tags)
	}

	if _, err := s.Post("draft"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("draft lookup err = %v, want ErrNotFound", err)
	}
	p, err := s.Post("parser")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got := s.Status(p).String(); got != "due-today" {
		t.Errorf("parser status = %s", got)
	}
}

func TestSite_ProjectsAndBookings(t *testing.T) {
	s := testSite(t)
	projects := s.Projects()
	if len(projects) != 2 || projects[0].Title != "New" {
		t.Errorf("projects = %+v", projects)
	}
	bookings := s.Bookings()
	if len(bookings) != 2 || bookings[0].Name != "Ada" {
		t.Errorf("bookings = %+v", bookings)
	}
}

func TestSite_ReturnsCopies(t *testing.T) {
	s := testSite(t)
	posts := s.VisiblePosts()
	posts[0].Title = "mutated"
	if s.VisiblePosts()[0].Title == "mutated" {
		t.Error("VisiblePosts exposed internal slice")
	}
}

func TestSite_Snapshot(t *testing.T) {
	s := testSite(t)
	snap := s.Snapshot()

	if !snap.GeneratedAt.Equal(now) {
		t.Errorf("generated_at = %v", snap.GeneratedAt)
	}
	if len(snap.Months) != 5 || snap.Months[0].Label != "August 2025" {
		t.Errorf("months = %d, first %q", len(snap.Months), snap.Months[0].Label)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Posts []struct {
			Slug   string `json:"slug"`
			Status string `json:"status"`
			URL    string `json:"url"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Posts) != 2 {
		t.Fatalf("posts = %+v", decoded.Posts)
	}
	if decoded.Posts[0].Status != "due-today" || decoded.Posts[0].URL != "materials/parser" {
		t.Errorf("post[0] = %+v", decoded.Posts[0])
	}
	// scanner: published Aug 11, default deadline Sep 11.
	if decoded.Posts[1].Status != "future" {
		t.Errorf("post[1] status = %q", decoded.Posts[1].Status)
	}
}

func TestSite_TermEvents(t *testing.T) {
	s := testSite(t)
	var titles []string
	for _, e := range s.TermEvents() {
		titles = append(titles, string(e.Type)+":"+e.Title)
	}
	got := strings.Join(titles, ",")
	want := "release:Scanner,holiday:National Heroes Day,release:Parser,deadline:Parser,deadline:Scanner,progress:Midterms"
	if got != want {
		t.Errorf("events = %s\nwant     %s", got, want)
	}
}

func TestSite_WriteArtifacts(t *testing.T) {
	s := testSite(t)
	_, store := testutil.TestContent(t, nil)

	if err := s.WriteArtifacts(store); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	for _, name := range []string{site.SiteFile, site.FeedFile, site.CalendarFile} {
		data, err := store.Read(name)
		if err != nil {
			t.Fatalf("Read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	feedData, _ := store.Read(site.FeedFile)
	var items []map[string]any
	if err := json.Unmarshal(feedData, &items); err != nil {
		t.Fatalf("feed: %v", err)
	}
	// Feed ignores hidden tags but drops drafts and scheduled posts.
	if len(items) != 3 {
		t.Errorf("feed items = %d, want 3: %v", len(items), items)
	}

	ics, _ := store.Read(site.CalendarFile)
	if n := strings.Count(string(ics), "BEGIN:VEVENT"); n != 6 {
		t.Errorf("ics events = %d, want 6", n)
	}
}

func TestSite_NilInputs(t *testing.T) {
	s := site.New(testutil.Clock(t, now), nil, nil, site.Options{})
	if len(s.VisiblePosts()) != 0 || len(s.TermEvents()) != 0 {
		t.Error("empty site should have no posts or events")
	}
}
