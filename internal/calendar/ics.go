package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// uidSpace namespaces event UIDs so they stay stable across builds.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://coursekit/calendar"))

// ICSOptions controls the iCalendar export.
type ICSOptions struct {
	Name      string
	ProductID string
	// BaseURL is prefixed to relative event URLs.
	BaseURL string
	// Stamp is written as DTSTAMP on every event; use the frozen build time.
	Stamp time.Time
}

// WriteICS renders events as a VCALENDAR with one all-day VEVENT each.
func WriteICS(w io.Writer, events []Event, opts ICSOptions) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	if opts.ProductID != "" {
		cal.SetProductId(opts.ProductID)
	}
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, e := range events {
		ev := cal.AddEvent(EventUID(e))
		ev.SetDtStampTime(opts.Stamp.UTC())
		ev.SetAllDayStartAt(e.Date)
		ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		ev.SetSummary(e.Title)
		if e.Tooltip != "" {
			ev.SetDescription(e.Tooltip)
		}
		if u := resolveURL(opts.BaseURL, e.URL); u != "" {
			ev.SetURL(u)
		}
		ev.AddProperty(ics.ComponentPropertyCategories, string(e.Type))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("calendar: write ics: %w", err)
	}
	return nil
}

// EventUID derives a deterministic UID from the event type, date and title.
func EventUID(e Event) string {
	name := string(e.Type) + "|" + e.Date.Format("2006-01-02") + "|" + e.Title
	return uuid.NewSHA1(uidSpace, []byte(name)).String()
}

func resolveURL(base, u string) string {
	if u == "" || base == "" || strings.Contains(u, "://") {
		return u
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(u, "/")
}
