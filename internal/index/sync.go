package index

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/coursekit/coursekit/internal/checksum"
	"github.com/coursekit/coursekit/internal/site"
)

// SyncStats summarises one Sync pass.
type SyncStats struct {
	Indexed   int
	Unchanged int
	Removed   int
}

// Documents returns the searchable documents of s: its visible materials and
// showcased projects. Drafts, hidden and scheduled materials never reach the
// index.
func Documents(s *site.Site) []Document {
	var docs []Document
	for _, r := range s.VisiblePosts() {
		docs = append(docs, Document{
			Path:        r.Path,
			Kind:        KindMaterial,
			Slug:        r.Slug,
			Title:       r.Title,
			Checksum:    r.Checksum,
			Tags:        r.Tags,
			Body:        r.Body,
			PublishedAt: r.PublishedAt,
		})
	}
	for _, p := range s.Projects() {
		body := strings.Join([]string{p.Abstract, strings.Join(p.Authors, ", "), p.Repository}, "\n")
		docs = append(docs, Document{
			Path:        p.Path,
			Kind:        KindProject,
			Slug:        strings.TrimSuffix(path.Base(p.Path), path.Ext(p.Path)),
			Title:       p.Title,
			Checksum:    checksum.Sum([]byte(p.Title + "\n" + strings.Join(p.Tags, ",") + "\n" + body)),
			Tags:        p.Tags,
			Body:        body,
			PublishedAt: p.Published,
		})
	}
	return docs
}

// Sync brings the index in line with docs:
//   - new/changed documents are upserted
//   - indexed paths missing from docs are deleted
func Sync(db ContentIndex, docs []Document, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	want := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		want[d.Path] = struct{}{}

		if cs, ok := checksums[d.Path]; ok && cs == d.Checksum {
			stats.Unchanged++
			continue
		}
		if err := db.Upsert(d); err != nil {
			return stats, fmt.Errorf("index: sync %s: %w", d.Path, err)
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", d.Path))
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := want[p]; ok {
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: index updated",
		slog.Int("indexed", stats.Indexed),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("removed", stats.Removed))
	return stats, nil
}
