package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/zestyzy/CampusStudyHub/domain"
)

// Store owns the data directory holding one JSON file per collection. No
// other component writes to collection files directly.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Collection reads and writes the records of one domain. Records are kept in
// insertion order, which is preserved across save/load cycles.
type Collection[T domain.Record] struct {
	store *Store
	name  string
}

// NewCollection binds a named collection to the store.
func NewCollection[T domain.Record](s *Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Exists reports whether the collection file has been created yet.
func (c *Collection[T]) Exists() bool {
	_, err := os.Stat(c.store.path(c.name))
	return err == nil
}

// Load returns the full ordered record sequence. A missing file means first
// run and yields an empty slice; a file that cannot be decoded yields a
// CorruptError so the caller can decide whether to reset the collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	path := c.store.path(c.name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []T
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if dup := firstDuplicateID(records); dup != "" {
		return nil, &CorruptError{Path: path, Err: errors.New("duplicate identifier " + dup)}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save serializes the full sequence and replaces the prior file contents
// atomically, so an interrupted save never leaves a truncated or mixed file.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	if dup := firstDuplicateID(records); dup != "" {
		return errors.New("duplicate identifier " + dup)
	}
	data, err := sonic.ConfigDefault.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(c.store.path(c.name), data, 0o644)
}

// Upsert replaces the record with a matching identifier or appends it. The
// positions of all other records are unchanged.
func Upsert[T domain.Record](records []T, rec T) []T {
	for i, existing := range records {
		if existing.RecordID() == rec.RecordID() {
			out := append([]T(nil), records...)
			out[i] = rec
			return out
		}
	}
	return append(append([]T(nil), records...), rec)
}

// Remove drops the record with the given identifier. Unknown identifiers are
// a no-op, not an error.
func Remove[T domain.Record](records []T, id string) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if rec.RecordID() == id {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func firstDuplicateID[T domain.Record](records []T) string {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		id := rec.RecordID()
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}
