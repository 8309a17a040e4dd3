// Package feed builds the JSON list of published materials consumed by
// external notifiers.
package feed

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/coursekit/coursekit/internal/calendar"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/models"
)

// Item is one feed entry.
type Item struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Date  string   `json:"date"`
	Tags  []string `json:"tags"`

	published time.Time
}

// Build returns non-draft materials already published at the clock's frozen
// instant, newest first. Unlike the visibility filter it ignores the term
// window and hidden tags.
func Build(c *clock.Clock, records []models.ContentRecord) []Item {
	now := c.UtcNow()
	out := []Item{}
	for _, r := range records {
		if r.IsDraft || r.PublishedAt.After(now) {
			continue
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, Item{
			Title:     r.Title,
			URL:       calendar.PostURL(r),
			Date:      r.PublishedAt.In(clock.Location).Format(time.RFC3339),
			Tags:      tags,
			published: r.PublishedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].published.After(out[j].published)
	})
	return out
}

// Marshal renders items as an indented JSON array.
func Marshal(items []Item) ([]byte, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: marshal: %w", err)
	}
	return append(data, '\n'), nil
}
