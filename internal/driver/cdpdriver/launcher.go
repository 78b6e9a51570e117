package cdpdriver

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// Options configures a Launcher.
type Options struct {
	Headless bool
	// ExecPath points at a Chrome binary; empty lets chromedp find one.
	ExecPath string
}

// Launcher owns one Chrome process. Each session is a tab in a fresh
// browser context.
type Launcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *zap.Logger
}

// Launch starts Chrome.
func Launch(opts Options, logger *zap.Logger) (*Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// The first Run starts the browser; it lives as long as browserCtx.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	logger.Info("Browser launched.", zap.String("browser", "chrome"), zap.Bool("headless", opts.Headless))
	return &Launcher{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}, nil
}

// NewContext opens a tab in a new browser context and returns its driver and
// a function closing the tab and its context.
func (l *Launcher) NewContext() (browser.Driver, func() error, error) {
	tabCtx, cancel := chromedp.NewContext(l.browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return New(tabCtx, l.logger), func() error {
		cancel()
		return nil
	}, nil
}

// Close stops Chrome.
func (l *Launcher) Close() error {
	l.browserCancel()
	l.allocCancel()
	return nil
}
