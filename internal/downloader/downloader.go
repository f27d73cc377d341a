package downloader

import (
	"context"
	"io"
	"net/http"
	"time"

	"pixelripper/pkg/errors"
	"pixelripper/pkg/fetch"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/models"
	"pixelripper/pkg/storage"
)

// Progress receives batch progress. Advance is called after each attempt,
// successful or not, with a 1-based count.
type Progress interface {
	Start(category models.Category, total int)
	Advance(current, total int)
	Finish()
}

// Observer is told about every finished attempt
type Observer interface {
	ObserveDownload(category models.Category, result Result)
}

// Result describes one download attempt
type Result struct {
	URL        string
	Path       string
	Size       int64
	StatusCode int
	Err        error
	Duration   time.Duration
}

// Failure converts a failed attempt into its report entry
func (r Result) Failure() (models.DownloadFailure, bool) {
	if r.Err == nil {
		return models.DownloadFailure{}, false
	}
	if r.StatusCode != 0 {
		return models.NewStatusFailure(r.URL, r.StatusCode), true
	}
	return models.NewTransportFailure(r.URL), true
}

// HostLimiter throttles requests per host
type HostLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Options configures a Downloader
type Options struct {
	Hosts    fetch.HostHeaders
	Limiter  HostLimiter
	Progress Progress
	Observer Observer
	Logger   logger.Logger
}

// Downloader fetches files one at a time. There is no retry: every URL
// gets exactly one GET.
type Downloader struct {
	client   *http.Client
	hosts    fetch.HostHeaders
	limiter  HostLimiter
	progress Progress
	observer Observer
	logger   logger.Logger
}

// New creates a Downloader
func New(client *http.Client, opts Options) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:   client,
		hosts:    opts.Hosts,
		limiter:  opts.Limiter,
		progress: opts.Progress,
		observer: opts.Observer,
		logger:   log.WithField("component", "downloader"),
	}
}

// DownloadOne saves rawURL into destDir and returns the written path. Caller
// headers override the random user agent and any stored host headers. The
// returned error carries the HTTP status when the server answered non-200.
func (d *Downloader) DownloadOne(ctx context.Context, rawURL, destDir string, headers map[string]string, missingExtSub string) (string, error) {
	res := d.download(ctx, storage.NewManager(destDir), rawURL, headers, missingExtSub)
	return res.Path, res.Err
}

func (d *Downloader) download(ctx context.Context, store *storage.Manager, rawURL string, headers map[string]string, missingExtSub string) (res Result) {
	start := time.Now()
	res.URL = rawURL
	defer func() { res.Duration = time.Since(start) }()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, rawURL); err != nil {
			res.Err = errors.Wrap(errors.ErrorTypeNetwork, "rate limit wait cancelled", err).WithURL(rawURL)
			return res
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Err = errors.Wrap(errors.ErrorTypeArgument, "invalid file URL", err).WithURL(rawURL)
		return res
	}
	for k, v := range fetch.RequestHeaders(rawURL, d.hosts, headers, d.logger) {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		res.Err = errors.Wrap(errors.ErrorTypeNetwork, "request failed", err).WithURL(rawURL)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		res.StatusCode = resp.StatusCode
		res.Err = errors.HTTPStatus(rawURL, resp.StatusCode)
		return res
	}

	path, n, err := store.Save(resp.Body, storage.FileName(rawURL, missingExtSub))
	res.Size = n
	if err != nil {
		res.Err = errors.Wrap(errors.TypeOf(err), "failed to save file", err).WithURL(rawURL)
		return res
	}
	res.Path = path
	return res
}

// DownloadMany downloads urls in order into destDir and returns the failures.
// A failure never stops the batch. Afterwards destDir is removed if it is
// empty, ignoring any error from the removal.
func (d *Downloader) DownloadMany(ctx context.Context, category models.Category, urls []string, destDir string, headers map[string]string, missingExtSub string) []models.DownloadFailure {
	store := storage.NewManager(destDir)
	log := d.logger.WithFields(map[string]interface{}{
		"category": string(category),
		"dir":      destDir,
	})

	if err := store.Ensure(); err != nil {
		log.WithError(err).Warn("Could not create destination directory")
	}

	if d.progress != nil {
		d.progress.Start(category, len(urls))
	}

	var failures []models.DownloadFailure
	var bytes int64
	for i, u := range urls {
		res := d.download(ctx, store, u, headers, missingExtSub)
		if failure, failed := res.Failure(); failed {
			failures = append(failures, failure)
		} else {
			bytes += res.Size
		}
		logger.LogDownload(log, string(category), u, res.Path, res.Size, res.Err)

		if d.observer != nil {
			d.observer.ObserveDownload(category, res)
		}
		if d.progress != nil {
			d.progress.Advance(i+1, len(urls))
		}
	}

	if d.progress != nil {
		d.progress.Finish()
	}

	removed := store.RemoveIfEmpty()
	log.InfoWithFields("Batch finished", map[string]interface{}{
		"total":       len(urls),
		"saved":       store.SavedCount(),
		"failed":      len(failures),
		"bytes":       bytes,
		"dir_removed": removed,
	})

	return failures
}
