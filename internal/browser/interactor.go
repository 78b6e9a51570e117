package browser

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Interactor performs actions on targets after their precondition wait
// succeeds. Failures are returned, never retried.
type Interactor struct {
	waiter  *Waiter
	driver  Driver
	timeout time.Duration
	logger  *zap.Logger
}

// NewInteractor returns an Interactor sharing timeout and logger with its
// Waiter.
func NewInteractor(d Driver, timeout time.Duration, logger *zap.Logger) *Interactor {
	w := NewWaiter(d, timeout, logger)
	return &Interactor{waiter: w, driver: d, timeout: w.timeout, logger: w.logger}
}

// Waiter exposes the interactor's waiter.
func (i *Interactor) Waiter() *Waiter { return i.waiter }

// Click waits for t to be visible and clicks its first match.
func (i *Interactor) Click(t Target, opts ...Option) error {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return err
	}
	err := i.driver.Click(t.firstIfAll(), ClickOptions{Force: o.force, Timeout: remaining(start, o.timeout)})
	if err != nil {
		return i.actionError("click", t, o.timeout, err, ErrElementNotInteractable)
	}
	i.logger.Debug("Clicked.", zap.String("target", t.String()), zap.Bool("force", o.force),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Fill waits for t to be visible and replaces its value with text.
func (i *Interactor) Fill(t Target, text string, opts ...Option) error {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return err
	}
	if err := i.driver.Fill(t.firstIfAll(), text, remaining(start, o.timeout)); err != nil {
		return i.actionError("fill", t, o.timeout, err, ErrElementNotInteractable)
	}
	i.logger.Debug("Filled.", zap.String("target", t.String()), zap.Int("length", len(text)))
	return nil
}

// Press waits for t to be visible and sends key to it.
func (i *Interactor) Press(t Target, key string, opts ...Option) error {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return err
	}
	if err := i.driver.Press(t.firstIfAll(), key, remaining(start, o.timeout)); err != nil {
		return i.actionError("press "+key, t, o.timeout, err, ErrElementNotInteractable)
	}
	return nil
}

// Hover waits for t to be visible and moves the pointer over it.
func (i *Interactor) Hover(t Target, opts ...Option) error {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return err
	}
	if err := i.driver.Hover(t.firstIfAll(), remaining(start, o.timeout)); err != nil {
		return i.actionError("hover", t, o.timeout, err, ErrElementNotInteractable)
	}
	return nil
}

// GetText waits for t to be visible and returns its trimmed text content.
// Elements without text yield "".
func (i *Interactor) GetText(t Target, opts ...Option) (string, error) {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return "", err
	}
	text, err := i.driver.TextContent(t.firstIfAll(), remaining(start, o.timeout))
	if err != nil {
		return "", i.actionError("read text", t, o.timeout, err, ErrTimeoutExceeded)
	}
	return strings.TrimSpace(text), nil
}

// AllTexts returns the trimmed text of every current match without waiting.
func (i *Interactor) AllTexts(t Target) ([]string, error) {
	texts, err := i.driver.AllTextContents(t)
	if err != nil {
		return nil, i.actionError("read texts", t, 0, err, nil)
	}
	for n := range texts {
		texts[n] = strings.TrimSpace(texts[n])
	}
	return texts, nil
}

// InputValue waits for t to be visible and returns its current value.
func (i *Interactor) InputValue(t Target, opts ...Option) (string, error) {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return "", err
	}
	v, err := i.driver.InputValue(t.firstIfAll(), remaining(start, o.timeout))
	if err != nil {
		return "", i.actionError("read value", t, o.timeout, err, ErrElementNotInteractable)
	}
	return v, nil
}

// IsChecked waits for t to be visible and reports whether it is checked.
func (i *Interactor) IsChecked(t Target, opts ...Option) (bool, error) {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return false, err
	}
	checked, err := i.driver.IsChecked(t.firstIfAll(), remaining(start, o.timeout))
	if err != nil {
		return false, i.actionError("read checked", t, o.timeout, err, ErrElementNotInteractable)
	}
	return checked, nil
}

// IsVisible reports whether t becomes visible within the timeout. It never
// fails: errors, timeouts and missing elements all read as false.
func (i *Interactor) IsVisible(t Target, opts ...Option) (visible bool) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Warn("Visibility probe panicked.", zap.String("target", t.String()), zap.Any("panic", r))
			visible = false
		}
	}()
	o := resolveOptions(i.timeout, opts)
	return i.waiter.WaitFor(t, StateVisible, o.timeout) == nil
}

// Count returns the number of current matches. Zero matches is not an error.
func (i *Interactor) Count(t Target) (int, error) {
	n, err := i.driver.Count(t)
	if err != nil {
		return 0, i.actionError("count", t, 0, err, nil)
	}
	return n, nil
}

// SelectOption waits for t to be visible and selects the option whose label
// is exactly label. It fails with ErrOptionNotFound, leaving the selection
// unchanged, when no option matches.
func (i *Interactor) SelectOption(t Target, label string, opts ...Option) error {
	o := resolveOptions(i.timeout, opts)
	start := time.Now()
	if err := i.waiter.WaitFor(t, StateVisible, o.timeout); err != nil {
		return err
	}
	if err := i.driver.SelectOption(t.firstIfAll(), label, remaining(start, o.timeout)); err != nil {
		return i.actionError("select '"+label+"'", t, o.timeout, err, ErrElementNotInteractable)
	}
	return nil
}

func (i *Interactor) actionError(op string, t Target, timeout time.Duration, err, fallback error) error {
	i.logger.Debug("Action failed.", zap.String("op", op), zap.String("target", t.String()), zap.Error(err))
	return &ActionError{
		Op:      op,
		Target:  t.String(),
		Timeout: timeout,
		Kind:    kindOf(err, fallback),
		Err:     driverCause(err),
	}
}
