// Package store persists extracted knowledge as a single page-indexed JSON
// document. Processing is strictly sequential, so the entries always form a
// contiguous run of pages starting at 1; Append enforces that.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bookdigest/internal/common"
)

// Entry is one processed page. Skipped pages keep their entry (with
// Relevant=false and no points) so the page sequence never has holes.
type Entry struct {
	Page      int      `json:"page"`
	Relevant  bool     `json:"relevant"`
	Knowledge []string `json:"knowledge"`
}

type document struct {
	Book    string  `json:"book"`
	Entries []Entry `json:"entries"`
}

// Store is the on-disk knowledge base for one book session.
type Store struct {
	path   string
	doc    document
	logger *slog.Logger
}

// Load reads the store at path, returning an empty store if the file is
// absent. A file that exists but cannot be parsed is treated as corrupt
// state and surfaces ErrInvariant.
func Load(path, book string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		doc:    document{Book: book},
		logger: logger,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("store.load.fresh", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, common.NewAppError("STORE_READ", "read knowledge store", err)
	}
	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, common.NewAppError("STORE_CORRUPT",
			fmt.Sprintf("knowledge store %s is not valid JSON; rerun with -clean", path),
			common.ErrInvariant)
	}
	for i, e := range s.doc.Entries {
		if e.Page != i+1 {
			return nil, common.NewAppError("STORE_GAP",
				fmt.Sprintf("entry %d has page %d; rerun with -clean", i, e.Page),
				common.ErrInvariant)
		}
	}
	logger.Info("store.load.ok", "path", path, "entries", len(s.doc.Entries))
	return s, nil
}

// HighestPage returns the last processed page, 0 for an empty store.
// The next unprocessed page is always HighestPage()+1.
func (s *Store) HighestPage() int {
	return len(s.doc.Entries)
}

// Append adds the entry for the next page. Page numbers must arrive in
// order with no gaps.
func (s *Store) Append(e Entry) error {
	want := s.HighestPage() + 1
	if e.Page != want {
		return common.NewAppError("STORE_ORDER",
			fmt.Sprintf("append page %d, want %d", e.Page, want),
			common.ErrInvariant)
	}
	if e.Knowledge == nil {
		e.Knowledge = []string{}
	}
	s.doc.Entries = append(s.doc.Entries, e)
	return nil
}

// Save atomically rewrites the JSON document: write to a temp file in the
// same directory, then rename over the target. A crash mid-write leaves
// either the old document or the new one, never a truncated file.
func (s *Store) Save() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return common.NewAppError("STORE_ENCODE", "encode knowledge store", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".knowledge-*.json")
	if err != nil {
		return common.NewAppError("STORE_WRITE", "create temp store file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.NewAppError("STORE_WRITE", "write temp store file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.NewAppError("STORE_WRITE", "close temp store file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return common.NewAppError("STORE_WRITE", "rename temp store file", err)
	}

	s.logger.Debug("store.save.ok", "path", s.path, "entries", len(s.doc.Entries))
	return nil
}

// Clean deletes the backing file and resets in-memory state to empty.
func (s *Store) Clean() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return common.NewAppError("STORE_CLEAN", "remove knowledge store", err)
	}
	s.doc.Entries = nil
	return nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Book returns the book title the store belongs to.
func (s *Store) Book() string {
	return s.doc.Book
}

// Entries returns the stored entries in page order. The slice is shared;
// callers must not mutate it.
func (s *Store) Entries() []Entry {
	return s.doc.Entries
}

// EntriesSince returns entries with page > afterPage, in page order.
func (s *Store) EntriesSince(afterPage int) []Entry {
	if afterPage < 0 {
		afterPage = 0
	}
	if afterPage >= len(s.doc.Entries) {
		return nil
	}
	return s.doc.Entries[afterPage:]
}

// LastEntries returns up to n trailing entries, used as context for
// extraction prompts.
func (s *Store) LastEntries(n int) []Entry {
	if n <= 0 || len(s.doc.Entries) == 0 {
		return nil
	}
	if n > len(s.doc.Entries) {
		n = len(s.doc.Entries)
	}
	return s.doc.Entries[len(s.doc.Entries)-n:]
}

// KnowledgeCount returns the total number of knowledge points across all
// entries.
func (s *Store) KnowledgeCount() int {
	total := 0
	for _, e := range s.doc.Entries {
		total += len(e.Knowledge)
	}
	return total
}
