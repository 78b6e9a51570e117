package pwdriver

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// Options configures a Launcher.
type Options struct {
	Browser  string
	Headless bool
	SlowMo   time.Duration
	BaseURL  string
}

// Launcher owns one playwright process and one browser. Each session gets
// its own browser context, so cookies and storage never cross tests.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  *zap.Logger
}

// Launch starts playwright and the configured browser.
func Launch(opts Options, logger *zap.Logger) (*Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch opts.Browser {
	case "", "chromium":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unsupported browser %q", opts.Browser)
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", bt.Name(), err)
	}
	logger.Info("Browser launched.", zap.String("browser", bt.Name()), zap.Bool("headless", opts.Headless))
	return &Launcher{pw: pw, browser: b, opts: opts, logger: logger}, nil
}

// NewContext opens an isolated browser context with one page and returns
// its driver and a function closing the context.
func (l *Launcher) NewContext() (browser.Driver, func() error, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if l.opts.BaseURL != "" {
		ctxOpts.BaseURL = playwright.String(l.opts.BaseURL)
	}
	bctx, err := l.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}
	return New(page, l.logger), func() error { return bctx.Close() }, nil
}

// Close shuts the browser and the playwright process down.
func (l *Launcher) Close() error {
	var firstErr error
	if err := l.browser.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close browser: %w", err)
	}
	if err := l.pw.Stop(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to stop playwright: %w", err)
	}
	return firstErr
}

// Install downloads the given browsers and the playwright driver.
func Install(browsers ...string) error {
	if len(browsers) == 0 {
		browsers = []string{"chromium"}
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("failed to install playwright browsers: %w", err)
	}
	return nil
}
