package fetch

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"pixelripper/pkg/errors"
	"pixelripper/pkg/logger"
)

// BrowserOptions configures the scripted browser
type BrowserOptions struct {
	// chrome, chromium, edge, firefox, or webkit
	Browser  string
	Headless bool
	// Bounds navigation only. The scroll loop is bounded by MaxScrolls.
	Timeout     time.Duration
	InitialWait time.Duration
	ScrollWait  time.Duration
	MaxScrolls  int
}

// browserSession is one open browser tab
type browserSession interface {
	Navigate(ctx context.Context, pageURL string) error
	Height(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context) error
	Content(ctx context.Context) (body, location string, err error)
	Close() error
}

type launchOptions struct {
	execPath  string
	headless  bool
	userAgent string
	// request headers other than User-Agent
	headers map[string]string
}

type launchFunc func(ctx context.Context, opts launchOptions) (browserSession, error)

type engine struct {
	launch launchFunc
	// searched on PATH; empty lets the driver find its own build
	executables []string
}

var engines = map[string]engine{
	"chrome":   {launch: launchCDP},
	"chromium": {launch: launchCDP, executables: []string{"chromium", "chromium-browser"}},
	"edge":     {launch: launchCDP, executables: []string{"microsoft-edge", "microsoft-edge-stable", "msedge"}},
	"firefox":  {launch: launchPlaywright("firefox")},
	"webkit":   {launch: launchPlaywright("webkit")},
}

// Engines lists the supported browser names
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	scrollHeightJS   = `document.body ? document.body.scrollHeight : 0`
	scrollToBottomJS = `window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`
)

// BrowserFetcher renders pages in a headless (or visible) browser, scrolling
// until the page height stops changing so lazy-loaded media is present.
// Each Fetch launches its own browser and closes it before returning; the
// mutex keeps at most one open at a time.
type BrowserFetcher struct {
	opts     BrowserOptions
	launch   launchFunc
	execPath string
	hosts    HostHeaders
	logger   logger.Logger
	mu       sync.Mutex
}

// NewBrowserFetcher validates the browser selection and returns a fetcher
func NewBrowserFetcher(opts BrowserOptions, hosts HostHeaders, log logger.Logger) (*BrowserFetcher, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	eng, execPath, err := resolveBrowser(opts.Browser)
	if err != nil {
		return nil, err
	}
	if opts.MaxScrolls <= 0 {
		opts.MaxScrolls = 50
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &BrowserFetcher{
		opts:     opts,
		launch:   eng.launch,
		execPath: execPath,
		hosts:    hosts,
		logger:   log.WithField("component", "browser_fetcher"),
	}, nil
}

func resolveBrowser(name string) (engine, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	eng, ok := engines[name]
	if !ok {
		return engine{}, "", errors.New(errors.ErrorTypeArgument,
			fmt.Sprintf("unsupported browser %q (choose one of %s)", name, strings.Join(Engines(), ", ")))
	}
	for _, c := range eng.executables {
		if path, err := exec.LookPath(c); err == nil {
			return eng, path, nil
		}
	}
	if len(eng.executables) > 0 {
		return engine{}, "", errors.New(errors.ErrorTypeBrowser, fmt.Sprintf("no %s executable found on PATH", name))
	}
	return eng, "", nil
}

// Fetch implements PageFetcher. The merged headers are sent with every
// request the browser makes for the page.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string, headers map[string]string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	merged := RequestHeaders(pageURL, f.hosts, headers, f.logger)
	ua := merged["User-Agent"]
	delete(merged, "User-Agent")

	fields := map[string]interface{}{
		"url":     pageURL,
		"browser": f.opts.Browser,
	}

	session, err := f.launch(ctx, launchOptions{
		execPath:  f.execPath,
		headless:  f.opts.Headless,
		userAgent: ua,
		headers:   merged,
	})
	if err != nil {
		f.logger.WithError(err).ErrorWithFields("Browser failed to start", fields)
		return nil, errors.Wrap(errors.ErrorTypeBrowser, "failed to start browser", err).WithURL(pageURL)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			f.logger.WithError(cerr).WarnWithFields("Failed to close browser", fields)
		}
	}()

	page, err := f.render(ctx, session, pageURL)
	if err != nil {
		f.logger.WithError(err).ErrorWithFields("Browser fetch failed", fields)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrorTypeBrowser, "browser fetch cancelled", ctx.Err()).WithURL(pageURL)
		}
		return nil, errors.Wrap(errors.ErrorTypeBrowser, "browser fetch failed", err).WithURL(pageURL)
	}
	return page, nil
}

func (f *BrowserFetcher) render(ctx context.Context, session browserSession, pageURL string) (*Page, error) {
	navCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	err := session.Navigate(navCtx, pageURL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	if err := sleep(ctx, f.opts.InitialWait); err != nil {
		return nil, err
	}
	scrolls, height, err := scrollUntilStable(ctx, session, f.opts.MaxScrolls, f.opts.ScrollWait)
	if err != nil {
		return nil, fmt.Errorf("scroll: %w", err)
	}
	if err := sleep(ctx, f.opts.ScrollWait); err != nil {
		return nil, err
	}

	body, location, err := session.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	f.logger.DebugWithFields("Page rendered", map[string]interface{}{
		"url":     location,
		"scrolls": scrolls,
		"height":  height,
		"bytes":   len(body),
	})
	return &Page{Body: body, URL: location}, nil
}

// scroller is the part of a browser tab the scroll loop needs
type scroller interface {
	Height(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context) error
}

// scrollUntilStable scrolls to the bottom and waits until the page height
// is unchanged across one cycle, or maxScrolls cycles have run.
func scrollUntilStable(ctx context.Context, s scroller, maxScrolls int, wait time.Duration) (int, int64, error) {
	height, err := s.Height(ctx)
	if err != nil {
		return 0, 0, err
	}

	scrolls := 0
	for scrolls < maxScrolls {
		if err := s.ScrollToBottom(ctx); err != nil {
			return scrolls, height, err
		}
		scrolls++
		if err := sleep(ctx, wait); err != nil {
			return scrolls, height, err
		}
		next, err := s.Height(ctx)
		if err != nil {
			return scrolls, height, err
		}
		if next == height {
			break
		}
		height = next
	}
	return scrolls, height, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
