package dataset

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestJSONLinesBatches(t *testing.T) {
	path := writeFile(t, "reviews.json", `{"rating": 5, "review_text": "great"}
{"rating": 2, "review_text": "meh"}
not json at all
{"rating": 4}
`)

	r, err := Open(path, 2)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, float64(5), first[0]["rating"])

	second, err := r.Next()
	require.NoError(t, err)
	require.Len(t, second, 1)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 1, r.Skipped())
}

func TestCSVBatches(t *testing.T) {
	path := writeFile(t, "reviews.csv", `Id,Score,Summary
1,5,good stuff
2,,missing score
3,4.5,decent
`)

	r, err := Open(path, 10)
	require.NoError(t, err)
	defer r.Close()

	batch, err := r.Next()
	require.NoError(t, err)
	require.Len(t, batch, 3)

	assert.Equal(t, int64(5), batch[0]["Score"])
	assert.Equal(t, "good stuff", batch[0]["Summary"])
	assert.Nil(t, batch[1]["Score"])
	assert.Equal(t, 4.5, batch[2]["Score"])

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEmptyFile(t *testing.T) {
	r, err := Open(writeFile(t, "empty.json", ""), 10)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.json"), 10)
	assert.Error(t, err)
}

func TestDefaultBatchSize(t *testing.T) {
	path := writeFile(t, "one.json", `{"a": 1}`+"\n")

	r, err := Open(path, 0)
	require.NoError(t, err)
	defer r.Close()

	batch, err := r.Next()
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}
