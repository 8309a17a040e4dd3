// Package visibility selects the course materials shown for the active term.
package visibility

import (
	"sort"
	"strings"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/models"
)

// Filter decides which records are visible. It is immutable and safe for
// concurrent use; it never modifies the records passed to it.
type Filter struct {
	clock  *clock.Clock
	hidden map[string]struct{}
}

// New creates a Filter. Records carrying any of hiddenTags (compared
// case-insensitively) are never shown.
func New(c *clock.Clock, hiddenTags []string) *Filter {
	hidden := make(map[string]struct{}, len(hiddenTags))
	for _, t := range hiddenTags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			hidden[t] = struct{}{}
		}
	}
	return &Filter{clock: c, hidden: hidden}
}

// VisiblePosts returns the published, non-draft, non-hidden records of the
// current term, most recent first. After the term ends it returns nothing.
func (f *Filter) VisiblePosts(records []models.ContentRecord) []models.ContentRecord {
	out := []models.ContentRecord{}
	if f.clock.TermOver() {
		return out
	}

	start := f.clock.TermStart()
	upper := f.clock.LocalNow()
	if end := f.clock.TermEnd(); end.Before(upper) {
		upper = end
	}

	for _, r := range records {
		if r.IsDraft || f.isHidden(r.Tags) {
			continue
		}
		if r.PublishedAt.Before(start) || r.PublishedAt.After(upper) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// AllTags returns the distinct tags of the visible records, sorted. Tags of
// drafts, hidden or scheduled records never leak into the list.
func (f *Filter) AllTags(records []models.ContentRecord) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range f.VisiblePosts(records) {
		for _, t := range r.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// IsHidden reports whether a record with tags would be suppressed globally.
func (f *Filter) IsHidden(tags []string) bool { return f.isHidden(tags) }

func (f *Filter) isHidden(tags []string) bool {
	if len(f.hidden) == 0 {
		return false
	}
	for _, t := range tags {
		if _, ok := f.hidden[strings.ToLower(strings.TrimSpace(t))]; ok {
			return true
		}
	}
	return false
}
