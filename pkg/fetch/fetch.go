// Package fetch retrieves the page being ripped, either with a plain HTTP
// GET or by rendering it in a scripted browser.
package fetch

import (
	"context"
	"net/http"
	"time"

	"pixelripper/pkg/config"
	"pixelripper/pkg/logger"
)

// Page is a fetched document and the URL it was finally served from
type Page struct {
	Body string
	URL  string
}

// PageFetcher retrieves a page. Implementations return an error rather
// than a partial page when anything goes wrong.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, headers map[string]string) (*Page, error)
}

// New builds the fetcher selected by the config
func New(cfg config.FetchConfig, hosts HostHeaders, log logger.Logger) (PageFetcher, error) {
	if cfg.UseBrowser {
		return NewBrowserFetcher(BrowserOptions{
			Browser:     cfg.Browser,
			Headless:    cfg.Headless,
			Timeout:     cfg.Timeout,
			InitialWait: cfg.InitialWait,
			ScrollWait:  cfg.ScrollWait,
			MaxScrolls:  cfg.MaxScrolls,
		}, hosts, log)
	}
	return NewHTTPFetcher(NewHTTPClient(cfg.Timeout), hosts, log), nil
}

// NewHTTPClient returns the client shared by page and file requests
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
