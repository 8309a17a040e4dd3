package index

// ContentIndex is the search index consumed by the preview server and the
// MCP tools. Consumers depend on it rather than on *DB so tests can swap in
// fakes.
type ContentIndex interface {
	Upsert(d Document) error
	Delete(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ContentIndex at compile time.
var _ ContentIndex = (*DB)(nil)
