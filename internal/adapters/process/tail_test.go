package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailBufferKeepsMostRecentBytes(t *testing.T) {
	t.Parallel()

	tail := newTailBuffer(8)
	_, _ = tail.Write([]byte("abc"))
	assert.Equal(t, "abc", string(tail.Contents()))

	_, _ = tail.Write([]byte("defghijk"))
	assert.Equal(t, "defghijk", string(tail.Contents()))

	n, err := tail.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "23456789", string(tail.Contents()))
}

func TestTailBufferSkipsSplitRune(t *testing.T) {
	t.Parallel()

	tail := newTailBuffer(4)
	_, _ = tail.Write([]byte("aé"))
	_, _ = tail.Write([]byte("éx"))

	// "aééx" is 6 bytes; the last 4 start inside the first é.
	assert.Equal(t, "éx", string(tail.Contents()))
}

func TestReadFileTail(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stderr.log")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\n"), 0o644))

	assert.Equal(t, "line two\n", string(readFileTail(path, 9)))
	assert.Equal(t, "line one\nline two\n", string(readFileTail(path, 1024)))
	assert.Nil(t, readFileTail(filepath.Join(t.TempDir(), "missing.log"), 16))
}
