package index

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/coursekit/coursekit/internal/clock"
	"github.com/coursekit/coursekit/internal/content"
	"github.com/coursekit/coursekit/internal/models"
	"github.com/coursekit/coursekit/internal/site"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSync(t *testing.T) {
	db := testDB(t)
	docs := []Document{doc("a.md", "A", "1", "alpha"), doc("b.md", "B", "2", "beta")}

	stats, err := Sync(db, docs, discard())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 2 || stats.Unchanged != 0 || stats.Removed != 0 {
		t.Errorf("first pass = %+v", stats)
	}

	docs = []Document{doc("a.md", "A", "1", "alpha"), doc("c.md", "C", "3", "gamma")}
	stats, err = Sync(db, docs, discard())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 1 || stats.Unchanged != 1 || stats.Removed != 1 {
		t.Errorf("second pass = %+v", stats)
	}
	if cs, _ := db.GetChecksum("b.md"); cs != "" {
		t.Error("b.md should have been removed")
	}
}

func TestDocuments_OnlyVisibleContent(t *testing.T) {
	c, err := clock.New(time.Date(2025, 9, 10, 4, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 1, 0, 0, 0, 0, clock.Location),
		time.Date(2025, 12, 20, 0, 0, 0, 0, clock.Location))
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 9, 1, 0, 0, 0, 0, clock.Location)
	s := site.New(c, &content.Bundle{
		Records: []models.ContentRecord{
			{Path: "materials/pub.md", Slug: "pub", Title: "Pub", PublishedAt: at, Checksum: "p"},
			{Path: "materials/draft.md", Slug: "draft", Title: "Draft", PublishedAt: at, IsDraft: true},
		},
		Projects: []models.Project{
			{Path: "projects/compiler.md", Title: "Compiler", Published: at, Abstract: "A toy compiler"},
		},
	}, nil, site.Options{})

	docs := Documents(s)
	if len(docs) != 2 {
		t.Fatalf("docs = %+v", docs)
	}
	if docs[0].Kind != KindMaterial || docs[0].Slug != "pub" {
		t.Errorf("doc[0] = %+v", docs[0])
	}
	if docs[1].Kind != KindProject || docs[1].Slug != "compiler" || docs[1].Checksum == "" {
		t.Errorf("doc[1] = %+v", docs[1])
	}
}
