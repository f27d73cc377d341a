package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelripper/pkg/extensions"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/models"
)

type recordingObserver struct {
	stats   Stats
	dropped []string
	calls   int
}

func (r *recordingObserver) ObserveClassification(stats Stats, dropped []string) {
	r.stats = stats
	r.dropped = dropped
	r.calls++
}

func newTestClassifier(strict bool, obs Observer) *Classifier {
	return New(extensions.Default(), Options{
		Strict:   strict,
		Observer: obs,
		Logger:   logger.NewNopLogger(),
	})
}

func TestImageFilter(t *testing.T) {
	raw := models.RawLinkSet{
		ImageTagLinks: []string{
			"https://site.test/photo.png",
			"https://example.com/",
			" https://example.com// ",
			"https://site.test/FAVICON.ico",
			"https://site.test/Apple-Touch-Icon-180.png",
			"https://site.test/img/cat",
		},
	}

	links, _ := newTestClassifier(false, nil).Classify(raw)

	assert.Equal(t, []string{"https://site.test/photo.png", "https://site.test/img/cat"}, links.Images)
}

func TestIsExcludedImage(t *testing.T) {
	tests := []struct {
		url      string
		excluded bool
	}{
		{"https://site.test/a.jpg", false},
		{"https://site.com", true},
		{"https://site.com/", true},
		{"  https://site.com/  ", true},
		{"https://cdn.site.test/favicon-32x32.png", true},
		{"https://cdn.site.test/APPLE-TOUCH-ICON.png", true},
		{"https://site.com/pic.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.excluded, IsExcludedImage(tt.url))
		})
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://site.test/clip.mp4", ".mp4"},
		{"https://site.test/clip.MP4", ".mp4"},
		{"https://site.test/clip.tar.gz?x=1#frag", ".gz"},
		{"https://site.test/dir.v2/clip", ""},
		{"https://site.test/", ""},
		{"https://site.test", ""},
		{"https://site.test/.mp4", ""},
		{"https://site.test/clip.", ""},
		{"/relative/track.flac", ".flac"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Suffix(tt.url))
		})
	}
}

func TestExtensionMatchIsCaseInsensitive(t *testing.T) {
	c := newTestClassifier(false, nil)

	lower, _ := c.Classify(models.RawLinkSet{AllLinks: []string{"https://site.test/clip.mp4"}})
	upper, _ := c.Classify(models.RawLinkSet{AllLinks: []string{"https://site.test/clip.MP4"}})

	assert.Equal(t, []string{"https://site.test/clip.mp4"}, lower.Videos)
	assert.Equal(t, []string{"https://site.test/clip.MP4"}, upper.Videos)
	assert.Empty(t, upper.Audios)
}

func TestPathMarkerMatch(t *testing.T) {
	raw := models.RawLinkSet{
		AllLinks: []string{
			"https://site.test/video/stream",
			"https://site.test/audio/stream",
			"https://site.test/about?video=1",
		},
	}

	links, _ := newTestClassifier(false, nil).Classify(raw)

	assert.Equal(t, []string{"https://site.test/video/stream"}, links.Videos)
	assert.Equal(t, []string{"https://site.test/audio/stream"}, links.Audios)
}

func TestDuplicatesRetainedByDefault(t *testing.T) {
	raw := models.RawLinkSet{
		AllLinks: []string{
			"https://site.test/videos/a.mp4",
			"https://site.test/b.webm",
		},
	}

	links, stats := newTestClassifier(false, nil).Classify(raw)
	assert.Equal(t, []string{
		"https://site.test/videos/a.mp4",
		"https://site.test/b.webm",
		"https://site.test/videos/a.mp4",
	}, links.Videos)
	assert.Equal(t, 1, stats.Duplicates)

	links, stats = newTestClassifier(true, nil).Classify(raw)
	assert.Equal(t, []string{
		"https://site.test/videos/a.mp4",
		"https://site.test/b.webm",
	}, links.Videos)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestCategoriesAreDisjoint(t *testing.T) {
	raw := models.RawLinkSet{
		ImageTagLinks: []string{
			"https://site.test/video/poster.jpg",
			"https://site.test/audio/cover.png",
		},
		AllLinks: []string{
			"https://site.test/video/poster.jpg",
			"https://site.test/audio/cover.png",
			"https://site.test/video/audio-track.mp3",
			"https://site.test/audio/video-clip.mp4",
			"https://site.test/audio/podcast",
			"https://site.test/song.OGG",
			"https://site.test/index.html",
		},
	}

	for _, strict := range []bool{false, true} {
		links, _ := newTestClassifier(strict, nil).Classify(raw)

		seen := make(map[string]models.Category)
		for _, cat := range models.Categories {
			for _, u := range links.For(cat) {
				if prev, ok := seen[u]; ok {
					require.Equal(t, prev, cat, "%s classified as both %s and %s", u, prev, cat)
				}
				seen[u] = cat
			}
		}

		rawSet := toSet(append(append([]string{}, raw.ImageTagLinks...), raw.AllLinks...))
		for u := range seen {
			assert.Contains(t, rawSet, u)
		}

		assert.Equal(t, models.CategoryVideos, seen["https://site.test/video/audio-track.mp3"])
		assert.Equal(t, models.CategoryVideos, seen["https://site.test/audio/video-clip.mp4"])
		assert.Equal(t, models.CategoryAudio, seen["https://site.test/audio/podcast"])
		assert.Equal(t, models.CategoryAudio, seen["https://site.test/song.OGG"])
		assert.Equal(t, models.CategoryImages, seen["https://site.test/video/poster.jpg"])
	}
}

func TestDroppedLinksReachObserver(t *testing.T) {
	obs := &recordingObserver{}
	raw := models.RawLinkSet{
		ImageTagLinks: []string{"https://site.test/favicon.ico", "https://site.test/a.jpg"},
		AllLinks: []string{
			"https://site.test/about",
			"https://site.test/a.jpg",
			"https://site.test/about",
			"https://site.test/theme.mp3",
		},
	}

	links, stats := newTestClassifier(false, obs).Classify(raw)

	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, []string{"https://site.test/favicon.ico", "https://site.test/about"}, obs.dropped)
	assert.Equal(t, stats, obs.stats)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Images)
	assert.Equal(t, 1, stats.Audio)
	assert.Equal(t, []string{"https://site.test/theme.mp3"}, links.Audios)
}

func TestClassifyEmpty(t *testing.T) {
	links, stats := newTestClassifier(false, nil).Classify(models.RawLinkSet{})
	assert.Equal(t, 0, links.Total())
	assert.Equal(t, Stats{}, stats)
}

func TestClassifyLogsSummary(t *testing.T) {
	log := logger.NewTestLogger()
	c := New(nil, Options{Logger: log})

	c.Classify(models.RawLinkSet{AllLinks: []string{"https://site.test/a.wav"}})

	msgs := log.GetMessagesByLevel("DEBUG")
	require.Len(t, msgs, 1)
	assert.Equal(t, "Links classified", msgs[0].Message)
	assert.Equal(t, 1, msgs[0].Fields["audio"])
}
