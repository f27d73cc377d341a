package extensions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tables := Default()

	assert.True(t, tables.Video.Contains(".mp4"))
	assert.True(t, tables.Video.Contains(".webm"))
	assert.True(t, tables.Audio.Contains(".mp3"))
	assert.True(t, tables.Audio.Contains(".flac"))
	assert.False(t, tables.Video.Contains(".mp3"))
	assert.False(t, tables.Audio.Contains(".mp4"))
	assert.False(t, tables.Video.Contains(".MP4"), "membership is exact; callers lower-case")
}

func TestNewSetNormalizes(t *testing.T) {
	set := NewSet(" MP4 ", ".Mkv", "", "   ")
	assert.Equal(t, []string{".mkv", ".mp4"}, set.List())
	assert.Equal(t, 2, set.Len())
}

func TestParse(t *testing.T) {
	set, err := Parse(strings.NewReader(".ogg\n\n.WAV\r\n"))
	require.NoError(t, err)
	assert.True(t, set.Contains(".ogg"))
	assert.True(t, set.Contains(".wav"))
	assert.Equal(t, 2, set.Len())
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	videoFile := filepath.Join(dir, "video.txt")
	require.NoError(t, os.WriteFile(videoFile, []byte(".custom\n"), 0644))

	tables, err := Load(videoFile, "")
	require.NoError(t, err)
	assert.True(t, tables.Video.Contains(".custom"))
	assert.False(t, tables.Video.Contains(".mp4"))
	assert.True(t, tables.Audio.Contains(".mp3"), "audio falls back to embedded list")

	_, err = Load(filepath.Join(dir, "missing.txt"), "")
	assert.Error(t, err)
}
