package scraper

import (
	"context"
	"path/filepath"

	"pixelripper/pkg/fetch"
	"pixelripper/pkg/linkscraper"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/models"
	"pixelripper/pkg/storage"
)

// Session orchestrates fetch, classify and download for one page at a time
type Session struct {
	fetcher    fetch.PageFetcher
	classifier LinkClassifier
	downloader BatchDownloader
	logger     logger.Logger

	links models.ClassifiedLinks
}

// New creates a Session
func New(fetcher fetch.PageFetcher, cls LinkClassifier, dl BatchDownloader, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Session{
		fetcher:    fetcher,
		classifier: cls,
		downloader: dl,
		logger:     log.WithField("component", "session"),
	}
}

// Rip fetches pageURL and replaces the session's links with the ones
// classified from it. Relative links resolve against the URL the page was
// finally served from. On error the previous links are kept.
func (s *Session) Rip(ctx context.Context, pageURL string, headers map[string]string) error {
	log := s.logger.WithField("url", pageURL)
	log.Info("Fetching page")

	page, err := s.fetcher.Fetch(ctx, pageURL, headers)
	if err != nil {
		return err
	}
	if page.URL != pageURL {
		log.WithField("final_url", page.URL).Debug("Page was redirected")
	}

	raw, err := linkscraper.Scrape(page.Body, page.URL)
	if err != nil {
		return err
	}

	links, stats := s.classifier.Classify(raw)
	s.links = links

	log.InfoWithFields("Page classified", map[string]interface{}{
		"image_tags": len(raw.ImageTagLinks),
		"links":      len(raw.AllLinks),
		"images":     stats.Images,
		"videos":     stats.Videos,
		"audio":      stats.Audio,
		"dropped":    stats.Dropped,
	})
	return nil
}

// Links returns the links from the last successful Rip
func (s *Session) Links() models.ClassifiedLinks {
	return s.links
}

// DownloadAll downloads every category into its subfolder of root, using
// subs as the missing-extension substitute for images, videos and audio.
// The output tree is locked for the duration. The only error is failing to
// take that lock; download failures go in the report.
func (s *Session) DownloadAll(ctx context.Context, root string, headers map[string]string, subs [3]string) (models.DownloadReport, error) {
	lock, err := storage.AcquireLock(root)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.WithError(err).Warn("Failed to release output lock")
		}
	}()

	logger.LogComponentStart("downloads", map[string]interface{}{
		"root":  root,
		"total": s.links.Total(),
	})

	report := models.DownloadReport{}
	for i, category := range models.Categories {
		dest := filepath.Join(root, string(category))
		failures := s.downloader.DownloadMany(ctx, category, s.links.For(category), dest, headers, subs[i])
		if len(failures) > 0 {
			report[category] = failures
		}
	}

	logger.LogComponentStop("downloads", "complete")
	if report.HasFailures() {
		s.logger.WithField("failed", report.Count()).Warn("Some downloads failed")
	}
	return report, nil
}
