package classifier

import (
	"net/url"
	"path"
	"strings"

	"pixelripper/pkg/extensions"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/models"
)

const (
	videoPathMarker = "video"
	audioPathMarker = "audio"
)

// Image links containing any of these (case-insensitive) are site icons, not content
var iconMarkers = []string{"apple-touch-icon", "favicon"}

// Stats summarizes one classification pass
type Stats struct {
	Images     int
	Videos     int
	Audio      int
	Dropped    int
	Duplicates int
}

// Observer is notified after every classification pass. Dropped holds the raw
// links that matched no category, in scrape order.
type Observer interface {
	ObserveClassification(stats Stats, dropped []string)
}

// Options configures a Classifier
type Options struct {
	// Strict removes repeated URLs inside a category. A link can qualify for
	// a category twice (by extension and by path marker); by default both
	// entries are kept.
	Strict   bool
	Observer Observer
	Logger   logger.Logger
}

// Classifier partitions scraped links into image, video, and audio lists
type Classifier struct {
	tables   *extensions.Tables
	strict   bool
	observer Observer
	logger   logger.Logger
}

// New creates a Classifier over the given extension tables
func New(tables *extensions.Tables, opts Options) *Classifier {
	if tables == nil {
		tables = extensions.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Classifier{
		tables:   tables,
		strict:   opts.Strict,
		observer: opts.Observer,
		logger:   log,
	}
}

// Classify never fails. Links that match no category are dropped.
func (c *Classifier) Classify(raw models.RawLinkSet) (models.ClassifiedLinks, Stats) {
	var links models.ClassifiedLinks
	var stats Stats

	links.Images = filterImages(raw.ImageTagLinks)

	claimed := toSet(links.Images)
	links.Videos = matchCategory(raw.AllLinks, claimed, c.tables.Video, videoPathMarker)

	for _, u := range links.Videos {
		claimed[u] = struct{}{}
	}
	links.Audios = matchCategory(raw.AllLinks, claimed, c.tables.Audio, audioPathMarker)

	if c.strict {
		var n int
		links.Videos, n = dedupe(links.Videos)
		stats.Duplicates += n
		links.Audios, n = dedupe(links.Audios)
		stats.Duplicates += n
		links.Images, n = dedupe(links.Images)
		stats.Duplicates += n
	} else {
		stats.Duplicates = countDuplicates(links.Images) + countDuplicates(links.Videos) + countDuplicates(links.Audios)
	}

	dropped := unclassified(raw, links)

	stats.Images = len(links.Images)
	stats.Videos = len(links.Videos)
	stats.Audio = len(links.Audios)
	stats.Dropped = len(dropped)

	c.logger.DebugWithFields("Links classified", map[string]interface{}{
		"images":     stats.Images,
		"videos":     stats.Videos,
		"audio":      stats.Audio,
		"dropped":    stats.Dropped,
		"duplicates": stats.Duplicates,
		"strict":     c.strict,
	})

	if c.observer != nil {
		c.observer.ObserveClassification(stats, dropped)
	}

	return links, stats
}

// filterImages removes bare domain links and site icons
func filterImages(candidates []string) []string {
	images := make([]string, 0, len(candidates))
	for _, u := range candidates {
		if IsExcludedImage(u) {
			continue
		}
		images = append(images, u)
	}
	return images
}

// IsExcludedImage reports whether an image-tag link is filtered out of the image list
func IsExcludedImage(u string) bool {
	if strings.HasSuffix(strings.TrimRight(strings.TrimSpace(u), "/"), ".com") {
		return true
	}
	lower := strings.ToLower(u)
	for _, marker := range iconMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// matchCategory returns the extension matches followed by the path-marker
// matches. A link satisfying both appears twice.
func matchCategory(all []string, claimed map[string]struct{}, exts extensions.Set, marker string) []string {
	var byExt, byPath []string
	for _, u := range all {
		if _, ok := claimed[u]; ok {
			continue
		}
		if exts.Contains(Suffix(u)) {
			byExt = append(byExt, u)
		}
	}
	for _, u := range all {
		if _, ok := claimed[u]; ok {
			continue
		}
		if strings.Contains(urlPath(u), marker) {
			byPath = append(byPath, u)
		}
	}
	return append(byExt, byPath...)
}

// Suffix returns the lower-cased extension of the last segment of the URL
// path, including the leading dot, or "" when there is none. Dotfiles
// such as "/.mp4" have no suffix.
func Suffix(u string) string {
	base := path.Base(urlPath(u))
	if base == "/" || base == "." {
		return ""
	}
	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i:])
}

func urlPath(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err == nil {
		return parsed.Path
	}
	// Unparseable links still get a best-effort path
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

func unclassified(raw models.RawLinkSet, links models.ClassifiedLinks) []string {
	claimed := toSet(links.Images)
	for _, u := range links.Videos {
		claimed[u] = struct{}{}
	}
	for _, u := range links.Audios {
		claimed[u] = struct{}{}
	}

	seen := make(map[string]struct{})
	var dropped []string
	for _, list := range [][]string{raw.ImageTagLinks, raw.AllLinks} {
		for _, u := range list {
			if _, ok := claimed[u]; ok {
				continue
			}
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			dropped = append(dropped, u)
		}
	}
	return dropped
}

func toSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

func dedupe(urls []string) ([]string, int) {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, len(urls) - len(out)
}

func countDuplicates(urls []string) int {
	_, n := dedupe(urls)
	return n
}
