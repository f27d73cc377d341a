// Package metrics counts classified links and download outcomes with
// Prometheus collectors. A run has no server to scrape, so the registry is
// written to a node_exporter textfile when the run ends.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"pixelripper/internal/downloader"
	"pixelripper/pkg/classifier"
	"pixelripper/pkg/errors"
	"pixelripper/pkg/models"
)

const namespace = "pixelripper"

// Recorder implements classifier.Observer and downloader.Observer
type Recorder struct {
	registry *prometheus.Registry

	linksTotal       *prometheus.CounterVec
	duplicatesTotal  prometheus.Counter
	downloadsTotal   *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec
	bytesTotal       *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	fileSizeBytes    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.linksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_total",
			Help:      "Links seen by the classifier, by resulting category (dropped when unclassified)",
		},
		[]string{"category"},
	)
	r.duplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_links_total",
		Help:      "Repeated links within a category",
	})
	r.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by category and result",
		},
		[]string{"category", "result"},
	)
	r.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_failures_total",
			Help:      "Failed downloads by category and error type",
		},
		[]string{"category", "error_type"},
	)
	r.bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written to disk by category",
		},
		[]string{"category"},
	)
	r.downloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Time spent on one download attempt",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)
	// 1KB to 1GB
	r.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_size_bytes",
			Help:      "Sizes of saved files",
			Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
		},
		[]string{"category"},
	)

	r.registry.MustRegister(
		r.linksTotal,
		r.duplicatesTotal,
		r.downloadsTotal,
		r.failuresTotal,
		r.bytesTotal,
		r.downloadDuration,
		r.fileSizeBytes,
	)
	return r
}

// Registry exposes the collectors, mainly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveClassification records one classifier pass
func (r *Recorder) ObserveClassification(stats classifier.Stats, dropped []string) {
	r.linksTotal.WithLabelValues(string(models.CategoryImages)).Add(float64(stats.Images))
	r.linksTotal.WithLabelValues(string(models.CategoryVideos)).Add(float64(stats.Videos))
	r.linksTotal.WithLabelValues(string(models.CategoryAudio)).Add(float64(stats.Audio))
	r.linksTotal.WithLabelValues("dropped").Add(float64(len(dropped)))
	r.duplicatesTotal.Add(float64(stats.Duplicates))
}

// ObserveDownload records one download attempt
func (r *Recorder) ObserveDownload(category models.Category, res downloader.Result) {
	c := string(category)
	r.downloadDuration.WithLabelValues(c).Observe(res.Duration.Seconds())

	if res.Err != nil {
		r.downloadsTotal.WithLabelValues(c, "failure").Inc()
		r.failuresTotal.WithLabelValues(c, string(errors.TypeOf(res.Err))).Inc()
		return
	}
	r.downloadsTotal.WithLabelValues(c, "success").Inc()
	r.bytesTotal.WithLabelValues(c).Add(float64(res.Size))
	r.fileSizeBytes.WithLabelValues(c).Observe(float64(res.Size))
}

// WriteTextfile writes every collected metric to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrap(errors.ErrorTypeFilesystem, "failed to write metrics", err)
	}
	return nil
}
