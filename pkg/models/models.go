package models

import (
	"fmt"
	"strconv"
)

// Category names a media bucket and the subfolder its files land in
type Category string

const (
	CategoryImages Category = "images"
	CategoryVideos Category = "videos"
	CategoryAudio  Category = "audio"
)

// Categories lists the buckets in classification and download order
var Categories = []Category{CategoryImages, CategoryVideos, CategoryAudio}

// RawLinkSet is the link scraper's output for one page
type RawLinkSet struct {
	ImageTagLinks []string `json:"image_tag_links"`
	AllLinks      []string `json:"all_links"`
}

// ClassifiedLinks holds the media URLs found on a page, one list per category
type ClassifiedLinks struct {
	Images []string `json:"images"`
	Videos []string `json:"videos"`
	Audios []string `json:"audios"`
}

// For returns the list for a category
func (c ClassifiedLinks) For(category Category) []string {
	switch category {
	case CategoryImages:
		return c.Images
	case CategoryVideos:
		return c.Videos
	case CategoryAudio:
		return c.Audios
	default:
		return nil
	}
}

// Total returns the number of URLs across all categories
func (c ClassifiedLinks) Total() int {
	return len(c.Images) + len(c.Videos) + len(c.Audios)
}

// DownloadFailure records a URL that could not be saved.
// A nil StatusCode means the request never produced a response.
type DownloadFailure struct {
	URL        string `json:"url"`
	StatusCode *int   `json:"status_code"`
}

// NewStatusFailure creates a failure for a non-200 response
func NewStatusFailure(url string, code int) DownloadFailure {
	return DownloadFailure{URL: url, StatusCode: &code}
}

// NewTransportFailure creates a failure without a status code
func NewTransportFailure(url string) DownloadFailure {
	return DownloadFailure{URL: url}
}

// Status renders the status code, or "None" for transport failures
func (f DownloadFailure) Status() string {
	if f.StatusCode == nil {
		return "None"
	}
	return strconv.Itoa(*f.StatusCode)
}

func (f DownloadFailure) String() string {
	return fmt.Sprintf("(%s, %s)", f.URL, f.Status())
}

// DownloadReport maps a category to its failures. Categories without failures are absent.
type DownloadReport map[Category][]DownloadFailure

// HasFailures reports whether any category failed
func (r DownloadReport) HasFailures() bool {
	for _, failures := range r {
		if len(failures) > 0 {
			return true
		}
	}
	return false
}

// Count returns the total number of failures
func (r DownloadReport) Count() int {
	n := 0
	for _, failures := range r {
		n += len(failures)
	}
	return n
}
