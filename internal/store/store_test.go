package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdigest/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.json")
	s, err := Load(path, "testbook", nil)
	require.NoError(t, err)
	return s
}

func TestLoadAbsentFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 0, s.HighestPage())
	assert.Empty(t, s.Entries())
}

func TestAppendEnforcesContiguity(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append(Entry{Page: 1, Relevant: true, Knowledge: []string{"a"}}))
	require.NoError(t, s.Append(Entry{Page: 2, Relevant: false}))

	err := s.Append(Entry{Page: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvariant)

	err = s.Append(Entry{Page: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvariant)

	assert.Equal(t, 2, s.HighestPage())
}

func TestHighestPageMatchesEntryCount(t *testing.T) {
	s := newTestStore(t)
	for p := 1; p <= 7; p++ {
		require.NoError(t, s.Append(Entry{Page: p, Relevant: true, Knowledge: []string{"k"}}))
	}
	entries := s.Entries()
	assert.Equal(t, len(entries), s.HighestPage())
	for i, e := range entries {
		assert.Equal(t, i+1, e.Page)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(Entry{Page: 1, Relevant: true, Knowledge: []string{"point one", "point two"}}))
	require.NoError(t, s.Append(Entry{Page: 2, Relevant: false}))
	require.NoError(t, s.Save())

	loaded, err := Load(s.Path(), "testbook", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.HighestPage())
	assert.Equal(t, s.Entries(), loaded.Entries())
	assert.Equal(t, "testbook", loaded.Book())

	// Skipped entries keep an empty (non-nil) knowledge list on disk.
	assert.NotNil(t, loaded.Entries()[1].Knowledge)
	assert.Empty(t, loaded.Entries()[1].Knowledge)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(Entry{Page: 1, Relevant: true, Knowledge: []string{"a"}}))
	require.NoError(t, s.Save())

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".knowledge-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, err := Load(path, "testbook", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvariant)
}

func TestLoadRejectsGappedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.json")
	doc := `{"book":"b","entries":[{"page":1,"relevant":true,"knowledge":[]},{"page":3,"relevant":true,"knowledge":[]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path, "b", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvariant)
}

func TestCleanResetsStore(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(Entry{Page: 1, Relevant: true, Knowledge: []string{"a"}}))
	require.NoError(t, s.Save())

	require.NoError(t, s.Clean())
	assert.Equal(t, 0, s.HighestPage())
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	// Clean on an already clean store is not an error.
	require.NoError(t, s.Clean())
}

func TestResumeSeesPriorEntriesUnchanged(t *testing.T) {
	s := newTestStore(t)
	for p := 1; p <= 3; p++ {
		require.NoError(t, s.Append(Entry{Page: p, Relevant: true, Knowledge: []string{"k"}}))
	}
	require.NoError(t, s.Save())
	before := append([]Entry(nil), s.Entries()...)

	resumed, err := Load(s.Path(), "testbook", nil)
	require.NoError(t, err)
	require.NoError(t, resumed.Append(Entry{Page: resumed.HighestPage() + 1, Relevant: false}))
	require.NoError(t, resumed.Save())

	assert.Equal(t, before, resumed.Entries()[:3])
	assert.Equal(t, 4, resumed.HighestPage())
}

func TestEntryWindows(t *testing.T) {
	s := newTestStore(t)
	for p := 1; p <= 5; p++ {
		require.NoError(t, s.Append(Entry{Page: p, Relevant: true, Knowledge: []string{"k1", "k2"}}))
	}

	since := s.EntriesSince(3)
	require.Len(t, since, 2)
	assert.Equal(t, 4, since[0].Page)
	assert.Nil(t, s.EntriesSince(5))

	last := s.LastEntries(2)
	require.Len(t, last, 2)
	assert.Equal(t, 4, last[0].Page)
	assert.Len(t, s.LastEntries(99), 5)
	assert.Nil(t, s.LastEntries(0))

	assert.Equal(t, 10, s.KnowledgeCount())
}
