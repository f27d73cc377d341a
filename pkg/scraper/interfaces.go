package scraper

import (
	"context"

	"pixelripper/pkg/classifier"
	"pixelripper/pkg/models"
)

// LinkClassifier sorts scraped links into media categories
type LinkClassifier interface {
	Classify(raw models.RawLinkSet) (models.ClassifiedLinks, classifier.Stats)
}

// BatchDownloader saves a list of URLs into one directory
type BatchDownloader interface {
	DownloadMany(ctx context.Context, category models.Category, urls []string, destDir string, headers map[string]string, missingExtSub string) []models.DownloadFailure
}
