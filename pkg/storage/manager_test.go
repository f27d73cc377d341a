package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelripper/pkg/errors"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		url  string
		sub  string
		want string
	}{
		{"https://site.test/file", ".jpg", "file.jpg"},
		{"https://site.test/a/b/photo.png?size=large", ".jpg", "photo.png"},
		{"https://site.test/clip.MP4", ".mp4", "clip.MP4"},
		{"https://site.test/", ".jpg", "index.jpg"},
		{"https://site.test", ".mp3", "index.mp3"},
		{"https://site.test/.hidden", ".jpg", ".hidden.jpg"},
		{"https://site.test/my%20song", ".mp3", "my song.mp3"},
		{"https://site.test/stream", "", "stream"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.url, tt.sub))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	m := NewManager(dir)

	data := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, '\n'}
	path, n, err := m.Save(bytes.NewReader(data), "pic.png")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pic.png"), path)
	assert.Equal(t, int64(len(data)), n)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 1, m.SavedCount())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSaveCollisionKeepsBoth(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	m.now = func() time.Time { return time.Unix(1700000000, 250000000) }

	first, _, err := m.Save(strings.NewReader("first"), "a.jpg")
	require.NoError(t, err)
	second, _, err := m.Save(strings.NewReader("second"), "a.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Join(dir, "a1700000000.250000.jpg"), second)

	b, _ := os.ReadFile(first)
	assert.Equal(t, "first", string(b))
	b, _ = os.ReadFile(second)
	assert.Equal(t, "second", string(b))
}

func TestSaveCollisionWithoutExtension(t *testing.T) {
	m := NewManager(t.TempDir())
	m.now = func() time.Time { return time.Unix(5, 0) }

	_, _, err := m.Save(strings.NewReader("x"), "stream")
	require.NoError(t, err)
	path, _, err := m.Save(strings.NewReader("y"), "stream")
	require.NoError(t, err)
	assert.Equal(t, "stream5.000000", filepath.Base(path))
}

func TestSaveReadErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	_, _, err := m.Save(iotest.ErrReader(assert.AnError), "broken.jpg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNetwork))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, m.SavedCount())
}

func TestRemoveIfEmpty(t *testing.T) {
	root := t.TempDir()

	empty := NewManager(filepath.Join(root, "videos"))
	require.NoError(t, empty.Ensure())
	assert.True(t, empty.RemoveIfEmpty())
	assert.NoDirExists(t, empty.Dir())

	// Already gone is not an error
	assert.False(t, empty.RemoveIfEmpty())

	full := NewManager(filepath.Join(root, "audio"))
	_, _, err := full.Save(strings.NewReader("x"), "a.mp3")
	require.NoError(t, err)
	assert.False(t, full.RemoveIfEmpty())
	assert.DirExists(t, full.Dir())
}

func TestLock(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	assert.Equal(t, LockPath(root), lock.Path())
	assert.False(t, strings.HasPrefix(lock.Path(), root), "lock file stays out of the output tree")

	_, err = AcquireLock(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeLock))

	require.NoError(t, lock.Release())

	again, err := AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
