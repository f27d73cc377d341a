package fetch

import (
	"context"
	"errors"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// cdpSession drives a Chromium-family browser over the DevTools protocol
type cdpSession struct {
	tab         context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

func launchCDP(ctx context.Context, opts launchOptions) (browserSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.headless),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.userAgent))
	}
	if opts.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)
	s := &cdpSession{tab: tab, cancelAlloc: cancelAlloc, cancelTab: cancelTab}

	// The first Run starts the browser and ties its lifetime to the context
	// it is given, so it must be the tab itself and never a step timeout.
	if err := chromedp.Run(tab); err != nil {
		s.Close()
		return nil, err
	}

	if len(opts.headers) > 0 {
		extra := make(network.Headers, len(opts.headers))
		for k, v := range opts.headers {
			extra[k] = v
		}
		if err := chromedp.Run(tab, network.Enable(), network.SetExtraHTTPHeaders(extra)); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// run executes actions on the tab, bounded by ctx's deadline and cancellation
func (s *cdpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		step   context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		step, cancel = context.WithDeadline(s.tab, deadline)
	} else {
		step, cancel = context.WithCancel(s.tab)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(step, actions...)
}

func (s *cdpSession) Navigate(ctx context.Context, pageURL string) error {
	return s.run(ctx, chromedp.Navigate(pageURL))
}

func (s *cdpSession) Height(ctx context.Context) (int64, error) {
	var height int64
	err := s.run(ctx, chromedp.Evaluate(scrollHeightJS, &height))
	return height, err
}

func (s *cdpSession) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(scrollToBottomJS, nil))
}

func (s *cdpSession) Content(ctx context.Context) (string, string, error) {
	var html, location string
	err := s.run(ctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	return html, location, err
}

// Close shuts the tab and then the browser process
func (s *cdpSession) Close() error {
	err := chromedp.Cancel(s.tab)
	s.cancelTab()
	s.cancelAlloc()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
