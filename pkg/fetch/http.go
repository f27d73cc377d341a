package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"pixelripper/pkg/errors"
	"pixelripper/pkg/logger"
)

// HTTPFetcher fetches pages with a single GET. Anything but 200 is an error.
type HTTPFetcher struct {
	client *http.Client
	hosts  HostHeaders
	logger logger.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. hosts may be nil.
func NewHTTPFetcher(client *http.Client, hosts HostHeaders, log logger.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &HTTPFetcher{
		client: client,
		hosts:  hosts,
		logger: log.WithField("component", "http_fetcher"),
	}
}

// Fetch implements PageFetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string, headers map[string]string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeArgument, "invalid page URL", err).WithURL(pageURL)
	}
	applyHeaders(req, RequestHeaders(pageURL, f.hosts, headers, f.logger))

	start := time.Now()
	resp, err := f.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		f.logger.ErrorWithFields("Page request failed", map[string]interface{}{
			"url":      pageURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, "page request failed", err).WithURL(pageURL)
	}
	defer resp.Body.Close()

	logger.LogRequest(f.logger, req.Method, pageURL, resp.StatusCode, duration)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.HTTPStatus(pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNetwork, "failed to read page body", err).WithURL(pageURL)
	}

	finalURL := resp.Request.URL.String()
	if finalURL != pageURL {
		f.logger.DebugWithFields("Page redirected", map[string]interface{}{
			"requested": pageURL,
			"final":     finalURL,
		})
	}

	return &Page{Body: string(body), URL: finalURL}, nil
}
