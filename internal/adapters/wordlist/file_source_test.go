package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlock/wpacrack/internal/core/domain"
)

func writeTempWordlist(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestFileSource_SkipsBlankLinesAndStripsCR(t *testing.T) {
	path := writeTempWordlist(t, "correcthorse\r\n\npassword123\n\n\nletmein\r\n")
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	var got []string
	for {
		c, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, c)
	}

	assert.Equal(t, []string{"correcthorse", "password123", "letmein"}, got)
}

func TestFileSource_EmptyFileYieldsNothing(t *testing.T) {
	path := writeTempWordlist(t, "")
	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	_, ok, err := src.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_MissingFileReturnsInputInvalid(t *testing.T) {
	_, err := Open("/nonexistent/path/does/not/exist.txt")
	assert.ErrorIs(t, err, domain.ErrInputInvalid)
}
