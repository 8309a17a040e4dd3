package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coursekit/coursekit/internal/apperr"
)

const maxPayloadSize = 1 << 20

// Source fetches the holidays of one year.
type Source interface {
	Fetch(ctx context.Context, year int) ([]Holiday, error)
}

// nagerHoliday is the wire shape of https://date.nager.at/api/v3/PublicHolidays.
type nagerHoliday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"`
	LaunchYear  *int     `json:"launchYear"`
	Types       []string `json:"types"`
}

func (n nagerHoliday) toHoliday() (Holiday, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(n.Date))
	if err != nil {
		return Holiday{}, fmt.Errorf("holidays: bad date %q: %w", n.Date, err)
	}
	name := strings.TrimSpace(n.LocalName)
	if name == "" {
		name = strings.TrimSpace(n.Name)
	}
	if name == "" {
		return Holiday{}, fmt.Errorf("holidays: entry on %s has no name", n.Date)
	}
	return Holiday{
		Date: localDate(d.Year(), d.Month(), d.Day()),
		Name: name,
		Provenance: &Provenance{
			Source:      SourceLive,
			CountryCode: n.CountryCode,
			Fixed:       n.Fixed,
			Global:      n.Global,
			Types:       n.Types,
		},
	}, nil
}

// NagerSource queries the Nager.Date public holiday API.
type NagerSource struct {
	client    *http.Client
	baseURL   string
	country   string
	userAgent string
}

// NewNagerSource creates a source for country. A nil client uses
// http.DefaultClient; the per-request deadline comes from the context.
func NewNagerSource(client *http.Client, baseURL, country, userAgent string) *NagerSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &NagerSource{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		country:   country,
		userAgent: userAgent,
	}
}

// Fetch returns the holidays for year. An empty list is reported as an
// error so the caller falls back instead of publishing a bare year.
func (s *NagerSource) Fetch(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", s.baseURL, year, s.country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("holidays: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holidays: fetch %d: %v: %w", year, err, apperr.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("holidays: fetch %d: HTTP %d: %w", year, resp.StatusCode, apperr.ErrSourceUnavailable)
	}

	var wire []nagerHoliday
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadSize)).Decode(&wire); err != nil {
		return nil, fmt.Errorf("holidays: decode %d: %v: %w", year, err, apperr.ErrSourceUnavailable)
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("holidays: fetch %d: empty list: %w", year, apperr.ErrSourceUnavailable)
	}

	out := make([]Holiday, 0, len(wire))
	for _, w := range wire {
		h, err := w.toHoliday()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, apperr.ErrSourceUnavailable)
		}
		out = append(out, h)
	}
	return out, nil
}
