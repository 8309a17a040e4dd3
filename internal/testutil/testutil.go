// Package testutil provides shared test helpers for content trees, clocks
// and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/index"
	"github.com/coursekit/coursekit/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "coursekit-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content tree holding files (relative path
// to body) and returns its root and a storage.Provider over it.
func TestContent(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	for p, body := range files {
		if err := store.Write(p, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	return root, store
}

// Clock returns a clock frozen at now (UTC) with a term running from
// 2025-08-01 to 2025-12-20 local time.
func Clock(t *testing.T, now time.Time) *clock.Clock {
	t.Helper()
	c, err := clock.New(now,
		time.Date(2025, 8, 1, 0, 0, 0, 0, clock.Location),
		time.Date(2025, 12, 20, 0, 0, 0, 0, clock.Location))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
