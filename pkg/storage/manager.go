package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pixelripper/pkg/errors"
)

// Fallback stem for URLs whose path has no basename, e.g. "https://site.test/"
const defaultStem = "index"

// Manager writes downloaded files into one destination directory
type Manager struct {
	dir   string
	now   func() time.Time
	saved int
	mu    sync.Mutex
}

// NewManager creates a manager for dir. The directory is created by Ensure
// or on the first Save.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, now: time.Now}
}

// Ensure creates the destination directory and its parents
func (m *Manager) Ensure() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return errors.Wrap(errors.ErrorTypeFilesystem, "failed to create output directory", err)
	}
	return nil
}

// FileName derives the saved name from the URL path's basename, appending
// missingExtSub when the basename has no extension.
func FileName(rawURL, missingExtSub string) string {
	var p string
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		p = rawURL
	}

	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		name = defaultStem
	}
	if !hasExtension(name) {
		name += missingExtSub
	}
	return name
}

// hasExtension follows the usual rule that a leading dot does not start
// an extension and a trailing dot is not one
func hasExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	return i > 0 && i < len(name)-1
}

// Save writes r to name inside the directory and returns the final path.
// If name is taken, the current Unix time is appended to the stem. Two
// collisions inside the clock's resolution can still clash.
func (m *Manager) Save(r io.Reader, name string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Ensure(); err != nil {
		return "", 0, err
	}

	target := filepath.Join(m.dir, name)
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(m.dir, m.timestamped(name))
	}

	// Write to a unique temp file then rename so a failed copy never leaves a partial file
	tempFile := fmt.Sprintf("%s.%s.part", target, uuid.NewString())
	out, err := os.Create(tempFile)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrorTypeFilesystem, "failed to create temporary file", err)
	}

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", n, errors.Wrap(errors.ErrorTypeNetwork, "failed to save file data", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", n, errors.Wrap(errors.ErrorTypeFilesystem, "failed to close file", closeErr)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", n, errors.Wrap(errors.ErrorTypeFilesystem, "failed to rename temporary file", err)
	}

	m.saved++
	return target, n, nil
}

func (m *Manager) timestamped(name string) string {
	ext := filepath.Ext(name)
	if !hasExtension(name) {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	now := m.now()
	stamp := strconv.FormatFloat(float64(now.UnixNano())/1e9, 'f', 6, 64)
	return stem + stamp + ext
}

// RemoveIfEmpty deletes the directory when it holds nothing. Errors are
// ignored: the directory may already be gone or have gained files.
func (m *Manager) RemoveIfEmpty() bool {
	entries, err := os.ReadDir(m.dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(m.dir) == nil
}

// Dir returns the destination directory
func (m *Manager) Dir() string {
	return m.dir
}

// SavedCount returns the number of files written by this manager
func (m *Manager) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
