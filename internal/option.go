package internal

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	lookup     clock.LookupFunc
	wall       func() time.Time
	httpClient *http.Client
	logOut     io.Writer
	logger     *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLookup replaces os.LookupEnv for the clock variables.
func WithLookup(lookup clock.LookupFunc) Option {
	return func(a *application) {
		a.lookup = lookup
	}
}

// WithWallClock replaces time.Now as the fallback build time.
func WithWallClock(wall func() time.Time) Option {
	return func(a *application) {
		a.wall = wall
	}
}

// WithHTTPClient sets the client used for holiday fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(a *application) {
		a.httpClient = c
	}
}

// WithLogOutput sets where the JSON log is written. Defaults to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}
