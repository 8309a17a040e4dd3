package holidays

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single year's fetch.
const DefaultTimeout = 5 * time.Second

// DefaultYears is how many calendar years a build covers: the current one
// and the next, enough for a term that straddles New Year.
const DefaultYears = 2

// Fetch outcomes reported to a Recorder.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
)

var errEmpty = errors.New("holidays: source returned no holidays")

// Recorder observes per-year fetch outcomes.
type Recorder interface {
	RecordHolidayFetch(outcome string)
}

// Builder assembles a Calendar year by year.
type Builder struct {
	source   Source
	logger   *slog.Logger
	timeout  time.Duration
	recorder Recorder
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTimeout overrides the per-year fetch timeout.
func WithTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithRecorder reports fetch outcomes to r.
func WithRecorder(r Recorder) BuilderOption {
	return func(b *Builder) { b.recorder = r }
}

// NewBuilder creates a Builder. A nil source means offline: every year
// uses the fallback table.
func NewBuilder(source Source, logger *slog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{source: source, logger: logger, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build fetches years consecutive years starting at firstYear. Each year is
// tried once; any failure falls back to the local table for that year. It
// never fails.
func (b *Builder) Build(ctx context.Context, firstYear, years int) *Calendar {
	if years <= 0 {
		years = DefaultYears
	}
	var all []Holiday
	for year := firstYear; year < firstYear+years; year++ {
		all = append(all, b.year(ctx, year)...)
	}
	cal := NewCalendar(all)
	b.logger.Info("holidays: calendar built",
		slog.Int("first_year", firstYear),
		slog.Int("years", years),
		slog.Int("count", cal.Len()))
	return cal
}

func (b *Builder) year(ctx context.Context, year int) []Holiday {
	if b.source == nil {
		b.logger.Info("holidays: offline, using fallback", slog.Int("year", year))
		b.record(OutcomeFallback)
		return Fallback(year)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	hs, err := b.source.Fetch(fetchCtx, year)
	if err == nil && len(hs) == 0 {
		err = errEmpty
	}
	if err != nil {
		b.logger.Warn("holidays: live fetch failed, using fallback",
			slog.Int("year", year),
			slog.String("error", err.Error()))
		b.record(OutcomeFallback)
		return Fallback(year)
	}

	b.logger.Debug("holidays: live fetch ok", slog.Int("year", year), slog.Int("count", len(hs)))
	b.record(OutcomeLive)
	return hs
}

func (b *Builder) record(outcome string) {
	if b.recorder != nil {
		b.recorder.RecordHolidayFetch(outcome)
	}
}
