// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/coursekit/coursekit/internal/api"
	"github.com/coursekit/coursekit/internal/checksum"
	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/holidays"
	"github.com/coursekit/coursekit/internal/index"
	"github.com/coursekit/coursekit/internal/mcpserver"
	"github.com/coursekit/coursekit/internal/metrics"
	"github.com/coursekit/coursekit/internal/site"
	"github.com/coursekit/coursekit/internal/siteservice"
	"github.com/coursekit/coursekit/internal/sse"
	"github.com/coursekit/coursekit/internal/storage"
)

// buildEnv is what every rebuild in one process shares. The clock and the
// holiday calendar are resolved once.
type buildEnv struct {
	clock    *clock.Clock
	holidays *holidays.Calendar
	content  *storage.FS
	output   *storage.FS
	metrics  *metrics.Collector
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		lookup: os.LookupEnv,
		wall:   time.Now,
		logOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	app.logger = slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(app.logger)

	app.logger.Info("Configuration loaded",
		slog.String("content_path", cfg.Content.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("live_holidays", cfg.Holidays.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return app, nil
}

func (a *application) prepare(ctx context.Context, reg prometheus.Registerer) (*buildEnv, error) {
	cfg := a.config

	c, err := clock.FromEnv(a.lookup, a.wall, a.logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}

	if err := os.MkdirAll(cfg.Output.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	m := metrics.NewCollector(reg)

	var src holidays.Source
	if cfg.Holidays.Enabled {
		src = holidays.NewNagerSource(a.httpClient, cfg.Holidays.BaseURL, cfg.Holidays.Country, cfg.Holidays.UserAgent)
	}
	hol := holidays.NewBuilder(src, a.logger,
		holidays.WithTimeout(cfg.Holidays.Timeout),
		holidays.WithRecorder(m),
	).Build(ctx, c.LocalNow().Year(), cfg.Holidays.Years)

	return &buildEnv{clock: c, holidays: hol, content: store, output: out, metrics: m}, nil
}

// buildFunc loads the content tree, assembles a site and writes its
// artifacts to the output directory.
func (a *application) buildFunc(rt *buildEnv) siteservice.BuildFunc {
	cfg := a.config
	return func(_ context.Context) (*site.Site, error) {
		started := time.Now()

		b, err := content.NewLoader(rt.content, cfg.Content.Layout(), a.logger).Load()
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		s := site.New(rt.clock, b, rt.holidays, site.Options{
			Title:      cfg.Site.Title,
			BaseURL:    cfg.Site.BaseURL,
			HiddenTags: cfg.Site.HiddenTags,
		})
		if err := s.WriteArtifacts(rt.output); err != nil {
			return nil, fmt.Errorf("write artifacts: %w", err)
		}

		rt.metrics.RecordBuild(time.Since(started), len(s.VisiblePosts()), s.Skipped())
		a.logger.Info("Site built",
			slog.Int("visible_posts", len(s.VisiblePosts())),
			slog.Int("tags", len(s.AllTags())),
			slog.Int("skipped", s.Skipped()),
			slog.Bool("term_over", rt.clock.TermOver()),
			slog.Duration("took", time.Since(started)))
		return s, nil
	}
}

// Build runs one site build and writes site.json, feed.json and
// calendar.ics to the output directory.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.prepare(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	if _, err := app.buildFunc(rt)(ctx); err != nil {
		return err
	}
	app.logger.Info("Artifacts written", slog.String("output_path", rt.output.Root()))
	return nil
}

// Holidays resolves the holiday calendar and writes it to w as JSON.
func Holidays(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.prepare(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rt.holidays.All()); err != nil {
		return fmt.Errorf("encode holidays: %w", err)
	}
	return nil
}

// MCP builds the site once and serves the MCP tools over stdio. Logs must
// not go to stdout here; pass WithLogOutput(os.Stderr).
func MCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.prepare(ctx, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	db, err := index.Open(app.config.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc := siteservice.New(app.buildFunc(rt), rt.content, app.logger, siteservice.WithIndex(db))
	if err := svc.Rebuild(ctx, nil); err != nil {
		return err
	}

	app.logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc).ServeStdio()
}

// Serve builds the site, then serves the preview API and rebuilds whenever
// the content tree changes.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	reg := prometheus.NewRegistry()
	rt, err := app.prepare(ctx, reg)
	if err != nil {
		return err
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := siteservice.New(app.buildFunc(rt), rt.content, logger,
		siteservice.WithIndex(db),
		siteservice.WithPublisher(broker))

	// Initial build. A broken tree still starts the server; /health/ready
	// reports 503 until a rebuild succeeds.
	if err := svc.Rebuild(ctx, nil); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := svc.Site(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "building")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Handle("/metrics", rt.metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Generated artifacts.
	r.Get("/"+site.FeedFile, artifactHandler(rt.output, site.FeedFile, "application/feed+json"))
	r.Get("/"+site.SiteFile, artifactHandler(rt.output, site.SiteFile, "application/json"))
	r.Get("/"+site.CalendarFile, artifactHandler(rt.output, site.CalendarFile, "text/calendar; charset=utf-8"))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; every settled burst triggers a rebuild.
	g.Go(func() error {
		return index.Watch(gCtx, rt.content.Root(), index.DefaultDebounce, logger, func(paths []string) {
			_ = svc.Rebuild(gCtx, paths)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

// artifactHandler serves a generated file with a content ETag.
func artifactHandler(out storage.Reader, name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := out.Read(name)
		if err != nil {
			http.Error(w, "not built yet", http.StatusServiceUnavailable)
			return
		}
		etag := checksum.ETag(data)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}
