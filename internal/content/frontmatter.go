package content

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/parser"
)

var errDateRequired = errors.New("is required")

// requiredDate accepts a non-nil, non-zero *parser.Timestamp.
var requiredDate = validation.By(func(v any) error {
	ts, _ := v.(*parser.Timestamp)
	if ts == nil || ts.IsZero() {
		return errDateRequired
	}
	return nil
})

type courseFrontMatter struct {
	Title        string            `yaml:"title"`
	Lead         string            `yaml:"lead"`
	Subtitle     string            `yaml:"subtitle"`
	Published    *parser.Timestamp `yaml:"published"`
	IsDraft      bool              `yaml:"isDraft"`
	Authors      []models.Author   `yaml:"authors"`
	Deadline     *parser.Timestamp `yaml:"deadline"`
	DownloadLink string            `yaml:"downloadLink"`
	NoDeadline   bool              `yaml:"noDeadline"`
}

func (fm *courseFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Published, requiredDate),
		validation.Field(&fm.DownloadLink, is.URL),
	)
}

type projectFrontMatter struct {
	Title      string            `yaml:"title"`
	Published  *parser.Timestamp `yaml:"published"`
	URL        string            `yaml:"url"`
	Authors    []string          `yaml:"authors"`
	Abstract   string            `yaml:"abstract"`
	Docs       string            `yaml:"docs"`
	Repository string            `yaml:"repository"`
	Thumbnail  string            `yaml:"thumbnail"`
	Year       string            `yaml:"year"`
}

func (fm *projectFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Published, requiredDate),
		validation.Field(&fm.Repository, is.URL),
	)
}

type bookingFrontMatter struct {
	Name     string `yaml:"name"`
	Calendar string `yaml:"calendar"`
	Desc     string `yaml:"desc"`
}

func (fm *bookingFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Name, validation.Required),
		validation.Field(&fm.Calendar, validation.Required, is.URL),
	)
}

type eventFrontMatter struct {
	Title     string            `yaml:"title"`
	Date      *parser.Timestamp `yaml:"date"`
	Tooltip   string            `yaml:"tooltip"`
	EventType string            `yaml:"eventType"`
	URL       string            `yaml:"url"`
	CSSClass  string            `yaml:"cssClass"`
}

func (fm *eventFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Date, requiredDate),
		validation.Field(&fm.EventType, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" && !eventType(s).Valid() {
				return errors.New("must be one of holiday, release, deadline, progress, defense")
			}
			return nil
		})),
	)
}

// eventType normalises "Holiday", "DEFENSE" and similar spellings.
func eventType(s string) models.EventType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return models.EventHoliday
	}
	return models.EventType(s)
}
