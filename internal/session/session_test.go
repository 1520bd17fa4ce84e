package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdigest/internal/common"
)

func writeSourcePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mybook.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	src := writeSourcePDF(t)

	sess, err := Resolve(root, src, nil)
	require.NoError(t, err)

	assert.Equal(t, "mybook", sess.Title)
	assert.Equal(t, filepath.Join(root, "mybook"), sess.Dir)
	assert.Equal(t, filepath.Join(root, "mybook", "mybook.pdf"), sess.PDFPath)
	assert.Equal(t, filepath.Join(root, "mybook", "knowledge.json"), sess.StorePath)
	assert.Equal(t, filepath.Join(root, "mybook", "summaries"), sess.SummariesDir)

	// Nothing created until Prepare.
	_, statErr := os.Stat(sess.Dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveRejectsNonPDF(t *testing.T) {
	_, err := Resolve(t.TempDir(), "notes.txt", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestResolveRejectsMissingFile(t *testing.T) {
	_, err := Resolve(t.TempDir(), filepath.Join(t.TempDir(), "ghost.pdf"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPrepareCreatesTreeAndCopiesPDF(t *testing.T) {
	root := t.TempDir()
	src := writeSourcePDF(t)

	sess, err := Resolve(root, src, nil)
	require.NoError(t, err)

	stamp := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)
	require.NoError(t, sess.Prepare(stamp))

	assert.DirExists(t, sess.Dir)
	assert.DirExists(t, sess.SummariesDir)
	assert.Equal(t, filepath.Join(sess.SummariesDir, "202603140926"), sess.RunDir)
	assert.DirExists(t, sess.RunDir)

	copied, err := os.ReadFile(sess.PDFPath)
	require.NoError(t, err)
	original, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	// Preparing again reuses the existing copy without error.
	require.NoError(t, sess.Prepare(stamp.Add(time.Minute)))
}

func TestCleanRemovesEverything(t *testing.T) {
	root := t.TempDir()
	src := writeSourcePDF(t)

	sess, err := Resolve(root, src, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Prepare(time.Now()))
	require.NoError(t, os.WriteFile(sess.StorePath, []byte("{}"), 0o644))

	require.NoError(t, sess.Clean())
	_, statErr := os.Stat(sess.Dir)
	assert.True(t, os.IsNotExist(statErr))

	// A fresh Prepare after Clean starts from an empty tree.
	require.NoError(t, sess.Prepare(time.Now()))
	_, statErr = os.Stat(sess.StorePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNextSummaryPathNumbering(t *testing.T) {
	root := t.TempDir()
	src := writeSourcePDF(t)

	sess, err := Resolve(root, src, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Prepare(time.Now()))

	p1, err := sess.NextSummaryPath(false)
	require.NoError(t, err)
	assert.Equal(t, "interval_001.md", filepath.Base(p1))
	require.NoError(t, os.WriteFile(p1, []byte("x"), 0o644))

	p2, err := sess.NextSummaryPath(false)
	require.NoError(t, err)
	assert.Equal(t, "interval_002.md", filepath.Base(p2))

	f1, err := sess.NextSummaryPath(true)
	require.NoError(t, err)
	assert.Equal(t, "final_001.md", filepath.Base(f1))
}
