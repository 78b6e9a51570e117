// Package pwdriver implements browser.Driver on playwright-go.
package pwdriver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
)

const pollInterval = 50 * time.Millisecond

// Driver drives one playwright page. Target strings are playwright selector
// syntax, so every target maps onto a single page.Locator call.
type Driver struct {
	page   playwright.Page
	logger *zap.Logger
}

var _ browser.Driver = (*Driver)(nil)

// New wraps page.
func New(page playwright.Page, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{page: page, logger: logger}
}

// Page returns the underlying playwright page.
func (d *Driver) Page() playwright.Page { return d.page }

func (d *Driver) locator(t browser.Target) playwright.Locator {
	return d.page.Locator(t.String())
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// classify wraps a playwright failure in the failure kind the core expects.
func classify(err error, kind error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	if errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("page closed: %w", err)
	}
	if kind == browser.ErrElementNotInteractable {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func (d *Driver) Goto(url string, timeout time.Duration) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   ms(timeout),
	})
	return classify(err, browser.ErrNavigationTimeout)
}

func (d *Driver) WaitForSettled(timeout time.Duration) error {
	err := d.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	})
	return classify(err, browser.ErrNavigationTimeout)
}

func (d *Driver) URL() string { return d.page.URL() }

func (d *Driver) Title() (string, error) { return d.page.Title() }

func (d *Driver) WaitForURL(match func(string) bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if match(d.page.URL()) {
			return nil
		}
		left := time.Until(deadline)
		if left <= 0 {
			return fmt.Errorf("%w: url is still %s", browser.ErrTimeoutExceeded, d.page.URL())
		}
		time.Sleep(min(pollInterval, left))
	}
}

func waitState(s browser.State) *playwright.WaitForSelectorState {
	switch s {
	case browser.StateHidden:
		return playwright.WaitForSelectorStateHidden
	case browser.StateDetached:
		return playwright.WaitForSelectorStateDetached
	}
	return playwright.WaitForSelectorStateVisible
}

func (d *Driver) WaitFor(t browser.Target, state browser.State, timeout time.Duration) error {
	err := d.locator(t).WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState(state),
		Timeout: ms(timeout),
	})
	return classify(err, browser.ErrTimeoutExceeded)
}

func (d *Driver) Click(t browser.Target, opts browser.ClickOptions) error {
	err := d.locator(t).Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: ms(opts.Timeout),
	})
	return classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) Fill(t browser.Target, text string, timeout time.Duration) error {
	err := d.locator(t).Fill(text, playwright.LocatorFillOptions{Timeout: ms(timeout)})
	return classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) Press(t browser.Target, key string, timeout time.Duration) error {
	err := d.locator(t).Press(key, playwright.LocatorPressOptions{Timeout: ms(timeout)})
	return classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) Hover(t browser.Target, timeout time.Duration) error {
	err := d.locator(t).Hover(playwright.LocatorHoverOptions{Timeout: ms(timeout)})
	return classify(err, browser.ErrElementNotInteractable)
}

// SelectOption waits for an option labelled label before selecting it, so a
// label that never appears fails with ErrOptionNotFound rather than a
// generic timeout. Options filled in by script after the select renders are
// still found.
func (d *Driver) SelectOption(t browser.Target, label string, timeout time.Duration) error {
	loc := d.locator(t)
	deadline := time.Now().Add(timeout)
	var labels []string
	for {
		var err error
		labels, err = loc.Locator("option").AllTextContents()
		if err != nil {
			return classify(err, browser.ErrElementNotInteractable)
		}
		if slices.ContainsFunc(labels, func(l string) bool { return strings.TrimSpace(l) == label }) {
			break
		}
		left := time.Until(deadline)
		if left <= 0 {
			return fmt.Errorf("%w: %q among %d options", browser.ErrOptionNotFound, label, len(labels))
		}
		time.Sleep(min(pollInterval, left))
	}
	_, err := loc.SelectOption(playwright.SelectOptionValues{Labels: playwright.StringSlice(label)},
		playwright.LocatorSelectOptionOptions{Timeout: ms(max(time.Until(deadline), pollInterval))})
	return classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) TextContent(t browser.Target, timeout time.Duration) (string, error) {
	text, err := d.locator(t).TextContent(playwright.LocatorTextContentOptions{Timeout: ms(timeout)})
	return text, classify(err, browser.ErrTimeoutExceeded)
}

func (d *Driver) AllTextContents(t browser.Target) ([]string, error) {
	texts, err := d.locator(t).AllTextContents()
	return texts, classify(err, browser.ErrTimeoutExceeded)
}

func (d *Driver) InputValue(t browser.Target, timeout time.Duration) (string, error) {
	v, err := d.locator(t).InputValue(playwright.LocatorInputValueOptions{Timeout: ms(timeout)})
	return v, classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) IsChecked(t browser.Target, timeout time.Duration) (bool, error) {
	checked, err := d.locator(t).IsChecked(playwright.LocatorIsCheckedOptions{Timeout: ms(timeout)})
	return checked, classify(err, browser.ErrElementNotInteractable)
}

func (d *Driver) IsVisible(t browser.Target) (bool, error) {
	visible, err := d.locator(t).IsVisible()
	return visible, classify(err, browser.ErrTimeoutExceeded)
}

func (d *Driver) Count(t browser.Target) (int, error) {
	n, err := d.locator(t).Count()
	if err != nil {
		return 0, classify(err, browser.ErrTimeoutExceeded)
	}
	return n, nil
}
