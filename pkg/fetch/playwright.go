package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"pixelripper/pkg/errors"
)

// playwrightEngines are the browsers driven through Playwright
var playwrightEngines = map[string]bool{"firefox": true, "webkit": true}

// IsPlaywrightEngine reports whether name runs through the Playwright driver
func IsPlaywrightEngine(name string) bool {
	return playwrightEngines[name]
}

// InstallDriver downloads the Playwright driver and the named browser builds
func InstallDriver(names []string) error {
	for _, name := range names {
		if !playwrightEngines[name] {
			return errors.New(errors.ErrorTypeArgument,
				fmt.Sprintf("%q needs no download; only firefox and webkit are installed by pixelripper", name))
		}
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: names}); err != nil {
		return errors.Wrap(errors.ErrorTypeBrowser, "install browser driver", err)
	}
	return nil
}

// pwSession drives Firefox or WebKit through a Playwright driver process
type pwSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func launchPlaywright(name string) launchFunc {
	return func(ctx context.Context, opts launchOptions) (browserSession, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pw, err := playwright.Run(&playwright.RunOptions{Browsers: []string{name}})
		if err != nil {
			return nil, fmt.Errorf("start playwright driver (run `pixelripper browser install %s`): %w", name, err)
		}
		s := &pwSession{pw: pw}

		browserType := pw.Firefox
		if name == "webkit" {
			browserType = pw.WebKit
		}
		launch := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(opts.headless)}
		if opts.execPath != "" {
			launch.ExecutablePath = playwright.String(opts.execPath)
		}
		if s.browser, err = browserType.Launch(launch); err != nil {
			s.Close()
			return nil, fmt.Errorf("launch %s: %w", name, err)
		}

		contextOpts := playwright.BrowserNewContextOptions{}
		if opts.userAgent != "" {
			contextOpts.UserAgent = playwright.String(opts.userAgent)
		}
		if len(opts.headers) > 0 {
			contextOpts.ExtraHttpHeaders = opts.headers
		}
		browserCtx, err := s.browser.NewContext(contextOpts)
		if err != nil {
			s.Close()
			return nil, err
		}
		if s.page, err = browserCtx.NewPage(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
}

func (s *pwSession) Navigate(ctx context.Context, pageURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotoOpts := playwright.PageGotoOptions{}
	if deadline, ok := ctx.Deadline(); ok {
		gotoOpts.Timeout = playwright.Float(float64(time.Until(deadline).Milliseconds()))
	}
	_, err := s.page.Goto(pageURL, gotoOpts)
	return err
}

func (s *pwSession) Height(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := s.page.Evaluate(scrollHeightJS)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected scroll height %T", v)
	}
}

func (s *pwSession) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Evaluate(scrollToBottomJS)
	return err
}

func (s *pwSession) Content(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", "", err
	}
	return html, s.page.URL(), nil
}

// Close shuts the browser and stops the driver
func (s *pwSession) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if stopErr := s.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}
