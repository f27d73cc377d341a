package extensions

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed video_extensions.txt
var defaultVideo string

//go:embed audio_extensions.txt
var defaultAudio string

// Set is an immutable set of lowercase, dot-prefixed file extensions
type Set struct {
	exts map[string]struct{}
}

// NewSet builds a Set, normalizing every entry to lowercase with a leading dot.
// Blank entries are ignored.
func NewSet(exts ...string) Set {
	s := Set{exts: make(map[string]struct{}, len(exts))}
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.exts[ext] = struct{}{}
	}
	return s
}

// Contains reports exact membership; the caller lower-cases the suffix
func (s Set) Contains(ext string) bool {
	_, ok := s.exts[ext]
	return ok
}

// Len returns the number of extensions
func (s Set) Len() int {
	return len(s.exts)
}

// List returns the extensions sorted
func (s Set) List() []string {
	out := make([]string, 0, len(s.exts))
	for ext := range s.exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Tables holds the video and audio extension sets. It is built once at
// startup and shared read-only.
type Tables struct {
	Video Set
	Audio Set
}

// Parse reads one extension per line
func Parse(r io.Reader) (Set, error) {
	var exts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		exts = append(exts, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("failed to read extension list: %w", err)
	}
	return NewSet(exts...), nil
}

// Default returns the tables built from the embedded lists
func Default() *Tables {
	video, _ := Parse(strings.NewReader(defaultVideo))
	audio, _ := Parse(strings.NewReader(defaultAudio))
	return &Tables{Video: video, Audio: audio}
}

// Load builds the tables from the given files. An empty path selects the
// embedded list for that table.
func Load(videoPath, audioPath string) (*Tables, error) {
	tables := Default()

	if videoPath != "" {
		set, err := loadFile(videoPath)
		if err != nil {
			return nil, err
		}
		tables.Video = set
	}
	if audioPath != "" {
		set, err := loadFile(audioPath)
		if err != nil {
			return nil, err
		}
		tables.Audio = set
	}

	return tables, nil
}

func loadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("failed to open extension list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
