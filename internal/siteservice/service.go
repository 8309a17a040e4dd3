// Package siteservice owns the current site snapshot of a long-running
// process and answers the read queries of the preview API and MCP tools.
package siteservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/calendar"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/index"
	"github.com/coursekit/coursekit/internal/site"
	"github.com/coursekit/coursekit/internal/sse"
	"github.com/coursekit/coursekit/internal/storage"
)

// BuildFunc produces a fresh site from the content tree.
type BuildFunc func(ctx context.Context) (*site.Site, error)

// Publisher receives one notification per successful rebuild.
type Publisher interface {
	PublishRebuild(changes []sse.Change, summary map[string]any)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends change notifications to p after every rebuild.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithIndex keeps idx in sync with the visible content.
func WithIndex(idx index.ContentIndex) Option {
	return func(s *Service) { s.idx = idx }
}

// Service holds the current *site.Site. Readers never block: the site is
// swapped atomically once a rebuild has fully succeeded.
type Service struct {
	build  BuildFunc
	store  storage.Reader
	idx    index.ContentIndex
	pub    Publisher
	logger *slog.Logger

	current atomic.Pointer[site.Site]
	mu      sync.Mutex // serialises rebuilds
}

// New creates a Service. Call Rebuild once before serving queries.
func New(build BuildFunc, store storage.Reader, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{build: build, store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rebuild builds a new site and, on success, swaps it in, re-indexes and
// notifies subscribers about changed. On failure the previous site stays.
func (s *Service) Rebuild(ctx context.Context, changed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.build(ctx)
	if err != nil {
		s.logger.Error("siteservice: rebuild failed, keeping previous site", slog.String("error", err.Error()))
		return fmt.Errorf("siteservice: rebuild: %w", err)
	}

	if s.idx != nil {
		if _, err := index.Sync(s.idx, index.Documents(next), s.logger); err != nil {
			s.logger.Warn("siteservice: index sync failed", slog.String("error", err.Error()))
		}
	}
	s.current.Store(next)

	summary := map[string]any{
		"visible_posts": len(next.VisiblePosts()),
		"generated_at":  next.Clock().UtcNow(),
	}
	s.logger.Info("siteservice: site rebuilt",
		slog.Int("visible_posts", len(next.VisiblePosts())),
		slog.Int("changed", len(changed)))

	if s.pub != nil {
		changes := make([]sse.Change, 0, len(changed))
		for _, p := range changed {
			kind := sse.KindChanged
			if _, err := s.store.Read(p); err != nil {
				kind = sse.KindRemoved
			}
			changes = append(changes, sse.Change{Kind: kind, Path: p})
		}
		s.pub.PublishRebuild(changes, summary)
	}
	return nil
}

// Site returns the current site.
func (s *Service) Site() (*site.Site, error) {
	cur := s.current.Load()
	if cur == nil {
		return nil, apperr.ErrNotReady
	}
	return cur, nil
}

// Posts returns the visible materials, optionally restricted to tag
// (case-insensitive).
func (s *Service) Posts(_ context.Context, tag string) ([]site.PostView, error) {
	cur, err := s.Site()
	if err != nil {
		return nil, err
	}
	out := []site.PostView{}
	for _, r := range cur.VisiblePosts() {
		if tag != "" && !hasTag(r.Tags, tag) {
			continue
		}
		out = append(out, cur.View(r))
	}
	return out, nil
}

// Tags returns the tags of the visible materials.
func (s *Service) Tags(_ context.Context) ([]string, error) {
	cur, err := s.Site()
	if err != nil {
		return nil, err
	}
	return cur.AllTags(), nil
}

// PostStatus returns a visible material with its deadline status.
func (s *Service) PostStatus(_ context.Context, slug string) (*site.PostView, error) {
	cur, err := s.Site()
	if err != nil {
		return nil, err
	}
	r, err := cur.Post(slug)
	if err != nil {
		return nil, err
	}
	v := cur.View(r)
	return &v, nil
}

// Holidays returns the holidays in [start, end]. Empty bounds default to the
// term window.
func (s *Service) Holidays(_ context.Context, start, end string) ([]holidays.Holiday, error) {
	cur, err := s.Site()
	if err != nil {
		return nil, err
	}
	from, to, err := parseRange(cur.Clock(), start, end)
	if err != nil {
		return nil, err
	}
	return cur.Holidays().QueryRange(from, to), nil
}

// Calendar returns the projected events in [start, end] grouped by month.
// Empty bounds default to the term window.
func (s *Service) Calendar(_ context.Context, start, end string) ([]calendar.Event, []calendar.Month, error) {
	cur, err := s.Site()
	if err != nil {
		return nil, nil, err
	}
	from, to, err := parseRange(cur.Clock(), start, end)
	if err != nil {
		return nil, nil, err
	}
	events := cur.Events(from, to)
	return events, calendar.Months(events, from, to), nil
}

// Search runs a full-text query over the visible content.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("siteservice: empty query: %w", apperr.ErrInvalidInput)
	}
	if s.idx == nil {
		return []index.SearchResult{}, nil
	}
	return s.idx.Search(query, limit)
}

func parseRange(c *clock.Clock, start, end string) (time.Time, time.Time, error) {
	from, to := c.TermStart(), c.TermEnd()
	if start != "" {
		t, err := clock.ParseLocal(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("siteservice: start: %v: %w", err, apperr.ErrInvalidInput)
		}
		from = t
	}
	if end != "" {
		t, err := clock.ParseLocal(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("siteservice: end: %v: %w", err, apperr.ErrInvalidInput)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("siteservice: end before start: %w", apperr.ErrInvalidInput)
	}
	return from, to, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
