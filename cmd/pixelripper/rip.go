package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelripper/internal/downloader"
	"pixelripper/pkg/auth"
	"pixelripper/pkg/classifier"
	"pixelripper/pkg/config"
	"pixelripper/pkg/extensions"
	"pixelripper/pkg/fetch"
	"pixelripper/pkg/logger"
	"pixelripper/pkg/metrics"
	"pixelripper/pkg/ratelimit"
	"pixelripper/pkg/scraper"
	"pixelripper/pkg/ui"
)

// ripOptions are the root command's own flags
type ripOptions struct {
	selenium     bool
	noHeadless   bool
	browser      string
	outputPath   string
	extraHeaders []string
	strict       bool
	rateLimit    int
	metricsFile  string
}

func (o *ripOptions) flagMap(cmd *cobra.Command, global *globalOptions) map[string]interface{} {
	flags := global.flagMap(cmd)
	flags["selenium"] = o.selenium
	flags["no_headless"] = o.noHeadless
	if cmd.Flags().Changed("browser") {
		flags["browser"] = o.browser
	}
	flags["output_path"] = o.outputPath
	flags["strict"] = o.strict
	if cmd.Flags().Changed("rate-limit") {
		flags["rate-limit"] = o.rateLimit
	}
	flags["metrics-file"] = o.metricsFile
	return flags
}

func runRip(cmd *cobra.Command, global *globalOptions, opts *ripOptions, rawURL string) error {
	// Argument problems surface before any network activity
	headers, err := parseHeaders(opts.extraHeaders)
	if err != nil {
		return err
	}
	pageURL, err := validatePageURL(rawURL)
	if err != nil {
		return err
	}

	cfg, err := config.Load(global.configFile, opts.flagMap(cmd, global))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	root, err := outputRoot(cfg.Output.BaseDirectory, pageURL)
	if err != nil {
		return err
	}

	tables, err := extensions.Load(cfg.Classifier.VideoExtensionsFile, cfg.Classifier.AudioExtensionsFile)
	if err != nil {
		return fmt.Errorf("failed to load extension lists: %w", err)
	}

	var hosts fetch.HostHeaders
	if manager, err := auth.NewManager(cfg.Headers); err == nil {
		hosts = manager
	} else {
		log.WithError(err).Warn("Stored headers unavailable")
	}

	stderr := cmd.ErrOrStderr()
	printer := ui.NewPrinter(stderr)
	quiet := cfg.Logging.Level == "error"
	if !quiet {
		printer.Banner()
		printer.Info("Target", pageURL.String())
		printer.Info("Output", root)
	}

	recorder := metrics.New()

	fetcher, err := fetch.New(cfg.Fetch, hosts, log)
	if err != nil {
		return err
	}

	var limiter downloader.HostLimiter
	if perHost := ratelimit.NewPerHost(cfg.Download.RequestsPerMinute); perHost != nil {
		limiter = perHost
	}

	session := scraper.New(
		fetcher,
		classifier.New(tables, classifier.Options{
			Strict:   cfg.Classifier.Strict,
			Observer: recorder,
			Logger:   log,
		}),
		downloader.New(fetch.NewHTTPClient(cfg.Download.Timeout), downloader.Options{
			Hosts:    hosts,
			Limiter:  limiter,
			Progress: ui.NewProgress(stderr, quiet),
			Observer: recorder,
			Logger:   log,
		}),
		log,
	)

	ctx := cmd.Context()
	if err := session.Rip(ctx, pageURL.String(), headers); err != nil {
		return err
	}

	report, err := session.DownloadAll(ctx, root, headers, cfg.Download.MissingExtensions())
	if err != nil {
		return err
	}

	ui.PrintFailureSummary(cmd.OutOrStdout(), report)
	if !quiet {
		printer.FailureTable(report)
	}

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.WithError(err).Warn("Failed to write metrics")
		}
	}

	if !quiet {
		links := session.Links()
		printer.Success(fmt.Sprintf("Done: %d of %d files saved", links.Total()-report.Count(), links.Total()))
	}
	return nil
}
