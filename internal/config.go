package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/index"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Output   OutputConfig      `yaml:"output"`
	Site     SiteConfig        `yaml:"site"`
	Holidays HolidaysConfig    `yaml:"holidays"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Holidays.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig locates the content tree and its per-kind directories.
type ContentConfig struct {
	Path      string `yaml:"path"`
	Materials string `yaml:"materials"`
	Projects  string `yaml:"projects"`
	Bookings  string `yaml:"bookings"`
	Events    string `yaml:"events"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Materials, validation.Required),
	)
}

// Layout returns the loader layout. Empty directories fall back to the
// conventional names.
func (c *ContentConfig) Layout() content.Layout {
	l := content.DefaultLayout()
	if c.Materials != "" {
		l.Materials = c.Materials
	}
	if c.Projects != "" {
		l.Projects = c.Projects
	}
	if c.Bookings != "" {
		l.Bookings = c.Bookings
	}
	if c.Events != "" {
		l.Events = c.Events
	}
	return l
}

// OutputConfig holds the directory build artifacts are written to.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SiteConfig holds site-wide presentation settings.
type SiteConfig struct {
	Title      string   `yaml:"title"`
	BaseURL    string   `yaml:"base_url"`
	HiddenTags []string `yaml:"hidden_tags"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.BaseURL, is.URL),
	)
}

// HolidaysConfig controls the live holiday source.
//
// When Enabled is false every year is computed from the local fallback
// table and no network request is made.
type HolidaysConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url"`
	Country   string        `yaml:"country"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Years     int           `yaml:"years"`
}

// Validate validates the holidays configuration.
func (c *HolidaysConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.When(c.Enabled, validation.Required, is.URL)),
		validation.Field(&c.Country, validation.When(c.Enabled, validation.Required, validation.Length(2, 2))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Years, validation.Min(0), validation.Max(10)),
	)
}

// SQLiteConfig holds the search index database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:      "./content",
			Materials: "materials",
			Projects:  "projects",
			Bookings:  "bookings",
			Events:    "events",
		},
		Output: OutputConfig{
			Path: "./public",
		},
		Site: SiteConfig{
			Title: "Course Site",
		},
		Holidays: HolidaysConfig{
			Enabled:   true,
			BaseURL:   "https://date.nager.at",
			Country:   "PH",
			UserAgent: "coursekit/1.0",
			Timeout:   holidays.DefaultTimeout,
			Years:     holidays.DefaultYears,
		},
		SQLite: SQLiteConfig{
			Path: index.MemoryDSN,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
