// Package cdpdriver implements browser.Driver on chromedp, speaking the
// DevTools protocol to an existing Chrome without the playwright runtime.
package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
)

const (
	pollInterval = 50 * time.Millisecond
	infoTimeout  = 5 * time.Second
	// networkQuiet is how long the resource count must stay put before a
	// loaded page counts as settled.
	networkQuiet = 500 * time.Millisecond
)

var keys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"ArrowDown":  kb.ArrowDown,
	"ArrowUp":    kb.ArrowUp,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
}

// Driver drives one chromedp tab. Targets are resolved inside the page by a
// small script, so every operation is a polling loop of Runtime.evaluate
// calls bounded by the timeout it was given.
type Driver struct {
	ctx    context.Context
	logger *zap.Logger
}

var _ browser.Driver = (*Driver)(nil)

// New wraps the chromedp tab context ctx. The tab must already be allocated.
func New(ctx context.Context, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{ctx: ctx, logger: logger}
}

func (d *Driver) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// state is what the resolver reports about a target.
type state struct {
	OK      bool    `json:"ok"`
	Missing bool    `json:"missing"`
	Reason  string  `json:"reason"`
	Count   int     `json:"count"`
	Shown   bool    `json:"shown"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text"`
	Checked bool    `json:"checked"`
}

// poll evaluates body against t until the result reports ok or timeout
// passes, in which case the last reason is wrapped in kind and the last
// observed state is returned with the error.
func (d *Driver) poll(t browser.Target, body string, timeout time.Duration, kind error) (state, error) {
	expr, err := script(t, body)
	if err != nil {
		return state{}, err
	}
	deadline := time.Now().Add(timeout)
	reason := "no matching element"
	var last state
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return last, fmt.Errorf("%w: %s after %s", kind, reason, timeout)
		}
		var st state
		err := d.run(left, chromedp.Evaluate(expr, &st))
		var exc *runtime.ExceptionDetails
		switch {
		case err == nil && st.OK:
			return st, nil
		case err == nil:
			reason, last = st.Reason, st
		case errors.As(err, &exc):
			return state{}, fmt.Errorf("invalid target %s: %w", t, err)
		case d.ctx.Err() != nil:
			return state{}, fmt.Errorf("page closed: %w", err)
		case errors.Is(err, context.DeadlineExceeded):
			return last, fmt.Errorf("%w: %s after %s", kind, reason, timeout)
		default:
			// The execution context is replaced while a navigation commits.
			reason = err.Error()
		}
		time.Sleep(min(pollInterval, time.Until(deadline)))
	}
}

// once evaluates body against t a single time.
func (d *Driver) once(t browser.Target, body string, out any) error {
	expr, err := script(t, body)
	if err != nil {
		return err
	}
	if err := d.run(infoTimeout, chromedp.Evaluate(expr, out)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", browser.ErrTimeoutExceeded, err)
		}
		return err
	}
	return nil
}

func (d *Driver) Goto(url string, timeout time.Duration) error {
	if err := d.run(timeout, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s did not load: %w", browser.ErrNavigationTimeout, url, err)
		}
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

type loadState struct {
	Ready     string `json:"ready"`
	Resources int    `json:"resources"`
}

const loadStateJS = `({ready: document.readyState, resources: performance.getEntriesByType('resource').length})`

// WaitForSettled waits for a complete document whose resource count has not
// grown for networkQuiet.
func (d *Driver) WaitForSettled(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	last, since := -1, time.Now()
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return fmt.Errorf("%w: page still loading after %s", browser.ErrNavigationTimeout, timeout)
		}
		var ls loadState
		if err := d.run(left, chromedp.Evaluate(loadStateJS, &ls)); err != nil {
			if d.ctx.Err() != nil {
				return fmt.Errorf("page closed: %w", err)
			}
			last = -1
		} else if ls.Ready != "complete" || ls.Resources != last {
			last, since = ls.Resources, time.Now()
		} else if time.Since(since) >= networkQuiet {
			return nil
		}
		time.Sleep(min(pollInterval, time.Until(deadline)))
	}
}

func (d *Driver) URL() string {
	var u string
	if err := d.run(infoTimeout, chromedp.Location(&u)); err != nil {
		d.logger.Debug("Could not read page URL.", zap.Error(err))
		return ""
	}
	return u
}

func (d *Driver) Title() (string, error) {
	var title string
	if err := d.run(infoTimeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

func (d *Driver) WaitForURL(match func(string) bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		u := d.URL()
		if match(u) {
			return nil
		}
		left := time.Until(deadline)
		if left <= 0 {
			return fmt.Errorf("%w: url is still %s", browser.ErrTimeoutExceeded, u)
		}
		time.Sleep(min(pollInterval, left))
	}
}

func (d *Driver) WaitFor(t browser.Target, s browser.State, timeout time.Duration) error {
	cond, reason := `els.length > 0 && els.isShown(els[0])`, "element is not visible"
	switch s {
	case browser.StateHidden:
		cond, reason = `els.length === 0 || !els.isShown(els[0])`, "element is still visible"
	case browser.StateDetached:
		cond, reason = `els.length === 0`, "element is still attached"
	}
	body := fmt.Sprintf(`return {ok: %s, reason: els.length === 0 ? 'no matching element' : %s};`, cond, quote(reason))
	_, err := d.poll(t, body, timeout, browser.ErrTimeoutExceeded)
	return err
}

// pointJS scrolls the first match into view and reports the point a real
// pointer would hit, failing when another element covers it.
const pointJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (!els.isShown(el)) return {reason: 'element is not visible'};
el.scrollIntoView({block: 'center', inline: 'center'});
const r = el.getBoundingClientRect();
const x = r.left + r.width / 2, y = r.top + r.height / 2;
const hit = document.elementFromPoint(x, y);
if (hit && hit !== el && !el.contains(hit)) {
  return {reason: 'element is covered by <' + hit.tagName.toLowerCase() + (hit.id ? '#' + hit.id : '') + '>'};
}
return {ok: true, x: x, y: y};`

const forceClickJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
el.click();
return {ok: true};`

func (d *Driver) Click(t browser.Target, opts browser.ClickOptions) error {
	if opts.Force {
		_, err := d.poll(t, forceClickJS, opts.Timeout, browser.ErrElementNotInteractable)
		return err
	}
	start := time.Now()
	pt, err := d.poll(t, pointJS, opts.Timeout, browser.ErrElementNotInteractable)
	if err != nil {
		return err
	}
	if err := d.run(max(opts.Timeout-time.Since(start), pollInterval), chromedp.MouseClickXY(pt.X, pt.Y)); err != nil {
		return fmt.Errorf("%w: click at (%.0f,%.0f): %w", browser.ErrElementNotInteractable, pt.X, pt.Y, err)
	}
	return nil
}

const fillJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (!els.isShown(el)) return {reason: 'element is not visible'};
if (el.disabled || el.readOnly) return {reason: 'element is not editable'};
if (el.isContentEditable) {
  el.focus();
  el.textContent = %[1]s;
} else if (el.tagName === 'INPUT' || el.tagName === 'TEXTAREA') {
  el.focus();
  const setter = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value').set;
  setter.call(el, %[1]s);
} else {
  return {reason: 'element is not an input, textarea or editable element'};
}
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return {ok: true};`

func (d *Driver) Fill(t browser.Target, text string, timeout time.Duration) error {
	_, err := d.poll(t, fmt.Sprintf(fillJS, quote(text)), timeout, browser.ErrElementNotInteractable)
	return err
}

const focusJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (!els.isShown(el)) return {reason: 'element is not visible'};
el.focus();
return {ok: document.activeElement === el, reason: 'element cannot take focus'};`

func (d *Driver) Press(t browser.Target, key string, timeout time.Duration) error {
	start := time.Now()
	if _, err := d.poll(t, focusJS, timeout, browser.ErrElementNotInteractable); err != nil {
		return err
	}
	if k, ok := keys[key]; ok {
		key = k
	}
	if err := d.run(max(timeout-time.Since(start), pollInterval), chromedp.KeyEvent(key)); err != nil {
		return fmt.Errorf("%w: press %q: %w", browser.ErrElementNotInteractable, key, err)
	}
	return nil
}

func (d *Driver) Hover(t browser.Target, timeout time.Duration) error {
	start := time.Now()
	pt, err := d.poll(t, pointJS, timeout, browser.ErrElementNotInteractable)
	if err != nil {
		return err
	}
	if err := d.run(max(timeout-time.Since(start), pollInterval), chromedp.MouseEvent(input.MouseMoved, pt.X, pt.Y)); err != nil {
		return fmt.Errorf("%w: hover: %w", browser.ErrElementNotInteractable, err)
	}
	return nil
}

const selectJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (el.tagName !== 'SELECT') return {reason: 'element is not a select'};
if (el.disabled) return {reason: 'select is disabled'};
const norm = s => (s || '').replace(/\s+/g, ' ').trim();
const opt = Array.from(el.options).find(o => norm(o.label || o.textContent) === %[1]s);
if (!opt) return {missing: true, count: el.options.length, reason: 'no option labelled ' + %[1]s};
el.value = opt.value;
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return {ok: true};`

func (d *Driver) SelectOption(t browser.Target, label string, timeout time.Duration) error {
	st, err := d.poll(t, fmt.Sprintf(selectJS, quote(label)), timeout, browser.ErrElementNotInteractable)
	if err != nil && st.Missing {
		return fmt.Errorf("%w: %q among %d options", browser.ErrOptionNotFound, label, st.Count)
	}
	return err
}

const textJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
return {ok: true, text: el.textContent || ''};`

func (d *Driver) TextContent(t browser.Target, timeout time.Duration) (string, error) {
	st, err := d.poll(t, textJS, timeout, browser.ErrTimeoutExceeded)
	return st.Text, err
}

func (d *Driver) AllTextContents(t browser.Target) ([]string, error) {
	var texts []string
	if err := d.once(t, `return els.map(el => el.textContent || '');`, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

const valueJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (!['INPUT', 'TEXTAREA', 'SELECT'].includes(el.tagName)) return {ok: true, missing: true};
return {ok: true, text: el.value};`

func (d *Driver) InputValue(t browser.Target, timeout time.Duration) (string, error) {
	st, err := d.poll(t, valueJS, timeout, browser.ErrElementNotInteractable)
	if err != nil {
		return "", err
	}
	if st.Missing {
		return "", fmt.Errorf("%w: %s is not an input, textarea or select", browser.ErrElementNotInteractable, t)
	}
	return st.Text, nil
}

const checkedJS = `
const el = els[0];
if (!el) return {reason: 'no matching element'};
if (el.type === 'checkbox' || el.type === 'radio') return {ok: true, checked: el.checked};
const aria = el.getAttribute('aria-checked');
if (aria === null) return {ok: true, missing: true};
return {ok: true, checked: aria === 'true'};`

func (d *Driver) IsChecked(t browser.Target, timeout time.Duration) (bool, error) {
	st, err := d.poll(t, checkedJS, timeout, browser.ErrElementNotInteractable)
	if err != nil {
		return false, err
	}
	if st.Missing {
		return false, fmt.Errorf("%w: %s is not a checkbox or radio", browser.ErrElementNotInteractable, t)
	}
	return st.Checked, nil
}

func (d *Driver) IsVisible(t browser.Target) (bool, error) {
	var st state
	if err := d.once(t, `return {shown: els.length > 0 && els.isShown(els[0])};`, &st); err != nil {
		return false, err
	}
	return st.Shown, nil
}

func (d *Driver) Count(t browser.Target) (int, error) {
	var st state
	if err := d.once(t, `return {count: els.length};`, &st); err != nil {
		return 0, err
	}
	return st.Count, nil
}
