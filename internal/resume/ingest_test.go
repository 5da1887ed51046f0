package resume

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestPlainText(t *testing.T) {
	ingestor := NewIngestor(t.TempDir())

	ingested, err := ingestor.Ingest("resume.txt", strings.NewReader("Jane Doe\n5 years of experience"))
	require.NoError(t, err)

	assert.Equal(t, "resume.txt", ingested.Filename)
	assert.Equal(t, ".txt", ingested.FileType)
	assert.Equal(t, "Jane Doe\n5 years of experience", ingested.Text)
	assert.EqualValues(t, len(ingested.Text), ingested.FileSize)

	// The upload is kept on disk under a generated name.
	saved, err := os.ReadFile(ingested.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, ingested.Text, string(saved))
}

func TestIngestMarkdown(t *testing.T) {
	ingestor := NewIngestor(t.TempDir())

	ingested, err := ingestor.Ingest("resume.MD", strings.NewReader("# Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, ".md", ingested.FileType)
	assert.Equal(t, "# Jane Doe", ingested.Text)
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	ingestor := NewIngestor(dir)

	_, err := ingestor.Ingest("resume.exe", strings.NewReader("binary"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// Nothing should have been written for a rejected upload.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngestGeneratesDistinctStoredNames(t *testing.T) {
	ingestor := NewIngestor(t.TempDir())

	first, err := ingestor.Ingest("resume.txt", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := ingestor.Ingest("resume.txt", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first.StoredPath, second.StoredPath)
}
