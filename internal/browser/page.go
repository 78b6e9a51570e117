package browser

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Page is the shared base of every page object. It binds one Driver for its
// lifetime and embeds an Interactor, so a page type that embeds *Page gets
// Click, Fill, GetText, IsVisible and the rest.
type Page struct {
	*Interactor

	driver     Driver
	baseURL    string
	navTimeout time.Duration
	submitKeys Target
}

// PageOption configures a Page.
type PageOption func(*pageConfig)

type pageConfig struct {
	baseURL     string
	timeout     time.Duration
	navTimeout  time.Duration
	logger      *zap.Logger
	fallback    Target
	hasFallback bool
}

// WithBaseURL resolves relative navigation paths against base.
func WithBaseURL(base string) PageOption {
	return func(c *pageConfig) { c.baseURL = base }
}

// WithDefaultTimeout sets the per-instance wait and action bound.
func WithDefaultTimeout(d time.Duration) PageOption {
	return func(c *pageConfig) { c.timeout = d }
}

// WithNavigationTimeout sets the per-instance navigation bound.
func WithNavigationTimeout(d time.Duration) PageOption {
	return func(c *pageConfig) { c.navTimeout = d }
}

// WithLogger sets the page logger.
func WithLogger(l *zap.Logger) PageOption {
	return func(c *pageConfig) { c.logger = l }
}

// WithSubmitFallback replaces the inputs the composed submit presses Enter in
// when its primary control cannot be clicked.
func WithSubmitFallback(t Target) PageOption {
	return func(c *pageConfig) { c.fallback, c.hasFallback = t, true }
}

// DefaultSubmitFallback matches the inputs a keyboard submission goes through.
func DefaultSubmitFallback() Target {
	return CSS(`input[type="text"], input[type="email"], input[type="password"]`)
}

// NewPage returns a Page bound to d.
func NewPage(d Driver, opts ...PageOption) *Page {
	c := pageConfig{timeout: DefaultTimeout, navTimeout: DefaultNavigationTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	if c.navTimeout <= 0 {
		c.navTimeout = DefaultNavigationTimeout
	}
	if !c.hasFallback {
		c.fallback = DefaultSubmitFallback()
	}
	return &Page{
		Interactor: NewInteractor(d, c.timeout, c.logger),
		driver:     d,
		baseURL:    strings.TrimRight(c.baseURL, "/"),
		navTimeout: c.navTimeout,
		submitKeys: c.fallback.Visible().Last(),
	}
}

// Driver returns the browsing context the page is bound to.
func (p *Page) Driver() Driver { return p.driver }

// Logger returns the page logger.
func (p *Page) Logger() *zap.Logger { return p.logger }

// DefaultTimeout returns the per-instance wait and action bound.
func (p *Page) DefaultTimeout() time.Duration { return p.timeout }

// NavigationTimeout returns the bound used for loads and navigations.
func (p *Page) NavigationTimeout() time.Duration { return p.navTimeout }

// ResolveURL joins a relative path onto the base URL. Absolute URLs pass
// through.
func (p *Page) ResolveURL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if p.baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

// Navigate loads path and waits for the page to settle, both within the
// navigation timeout. It fails with ErrNavigationTimeout.
func (p *Page) Navigate(path string, opts ...Option) error {
	o := resolveOptions(p.navTimeout, opts)
	target := p.ResolveURL(path)
	start := time.Now()
	if err := p.driver.Goto(target, o.timeout); err != nil {
		return p.navigationError("navigate", target, o.timeout, err)
	}
	if err := p.driver.WaitForSettled(remaining(start, o.timeout)); err != nil {
		return p.navigationError("navigate", target, o.timeout, err)
	}
	p.logger.Debug("Navigated.", zap.String("url", target), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// WaitForSettled waits for network and DOM activity to go quiet. It fails
// with ErrNavigationTimeout.
func (p *Page) WaitForSettled(opts ...Option) error {
	o := resolveOptions(p.timeout, opts)
	if err := p.driver.WaitForSettled(o.timeout); err != nil {
		return p.navigationError("settle", p.driver.URL(), o.timeout, err)
	}
	return nil
}

// ClickAndWaitForNavigation clicks t and waits for the resulting page to
// settle.
func (p *Page) ClickAndWaitForNavigation(t Target, opts ...Option) error {
	o := resolveOptions(p.timeout, opts)
	start := time.Now()
	before := p.driver.URL()
	if err := p.Click(t, opts...); err != nil {
		return err
	}
	changed := func(u string) bool { return u != before }
	if err := p.driver.WaitForURL(changed, remaining(start, o.timeout)); err != nil {
		return p.navigationError("click and navigate", t.String(), o.timeout, err)
	}
	return p.WaitForSettled(WithTimeout(remaining(start, o.timeout)))
}

// WaitForURL waits until the page URL matches pattern.
func (p *Page) WaitForURL(pattern *regexp.Regexp, opts ...Option) error {
	o := resolveOptions(p.timeout, opts)
	if err := p.driver.WaitForURL(pattern.MatchString, o.timeout); err != nil {
		return p.navigationError("wait for url", pattern.String(), o.timeout, err)
	}
	return nil
}

// Title returns the document title.
func (p *Page) Title() (string, error) { return p.driver.Title() }

// URL returns the current page URL.
func (p *Page) URL() string { return p.driver.URL() }

func (p *Page) WaitVisible(t Target, opts ...Option) error  { return p.waiter.WaitVisible(t, opts...) }
func (p *Page) WaitHidden(t Target, opts ...Option) error   { return p.waiter.WaitHidden(t, opts...) }
func (p *Page) WaitDetached(t Target, opts ...Option) error { return p.waiter.WaitDetached(t, opts...) }

func (p *Page) navigationError(op, target string, timeout time.Duration, err error) error {
	p.logger.Debug("Navigation failed.", zap.String("op", op), zap.String("target", target), zap.Error(err))
	return &ActionError{
		Op:      op,
		Target:  target,
		Timeout: timeout,
		Kind:    ErrNavigationTimeout,
		Err:     driverCause(err),
	}
}
