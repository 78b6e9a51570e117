// Package browsertest provides an in-memory browser.Driver for tests.
//
// Elements are registered under the selector of an unpicked target; picks
// (First, Nth, Last) and the visible-only filter are applied at resolution
// time, so a test registers ".row" once and can then query ".row >> nth=1".
package browsertest

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/themizzi/storefrontqa/internal/browser"
)

const pollInterval = 5 * time.Millisecond

// Element is a fake DOM element.
type Element struct {
	mu        sync.Mutex
	text      string
	value     string
	checked   bool
	checkable bool
	options   []string
	selected  string
	hidden    bool
	showAt    time.Time
	obscured  bool

	onClick func()
	onPress func(key string)
	onHover func()
}

// NewElement returns a visible element with text.
func NewElement(text string) *Element {
	return &Element{text: text}
}

// NewCheckbox returns a visible element that toggles on click.
func NewCheckbox(checked bool) *Element {
	return &Element{checkable: true, checked: checked}
}

// NewSelect returns a visible select with option labels; the first is
// selected.
func NewSelect(labels ...string) *Element {
	e := &Element{options: labels}
	if len(labels) > 0 {
		e.selected = labels[0]
	}
	return e
}

func (e *Element) Hide() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden, e.showAt = true, time.Time{}
	return e
}

func (e *Element) Show() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden, e.showAt = false, time.Time{}
	return e
}

// ShowAfter hides the element until d has passed.
func (e *Element) ShowAfter(d time.Duration) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden, e.showAt = false, time.Now().Add(d)
	return e
}

// Obscure makes non-forced clicks fail as if another element covered it.
func (e *Element) Obscure() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.obscured = true
	return e
}

func (e *Element) SetText(s string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = s
	return e
}

func (e *Element) OnClick(fn func()) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClick = fn
	return e
}

func (e *Element) OnPress(fn func(key string)) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPress = fn
	return e
}

func (e *Element) OnHover(fn func()) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onHover = fn
	return e
}

func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *Element) SetValue(v string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	return e
}

func (e *Element) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *Element) Checked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checked
}

func (e *Element) visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hidden {
		return false
	}
	return e.showAt.IsZero() || !time.Now().Before(e.showAt)
}

// Call records one driver operation.
type Call struct {
	Op     string
	Target string
	Arg    string
}

// Driver is an in-memory browser.Driver. It is safe for concurrent use.
type Driver struct {
	mu          sync.Mutex
	nodes       map[string][]*Element
	routes      map[string]func(*Driver)
	url         string
	title       string
	settleDelay time.Duration
	calls       []Call
}

var _ browser.Driver = (*Driver)(nil)

func New() *Driver {
	return &Driver{
		nodes:  map[string][]*Element{},
		routes: map[string]func(*Driver){},
	}
}

// Add appends elements to the matches of t.
func (d *Driver) Add(t browser.Target, els ...*Element) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := key(t)
	d.nodes[k] = append(d.nodes[k], els...)
	return d
}

// Remove detaches el from the matches of t.
func (d *Driver) Remove(t browser.Target, el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := key(t)
	d.nodes[k] = slices.DeleteFunc(d.nodes[k], func(e *Element) bool { return e == el })
}

// Clear drops every registered element.
func (d *Driver) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes = map[string][]*Element{}
}

// Route registers a loader run when Goto reaches url. The document is
// cleared before the loader runs.
func (d *Driver) Route(url string, load func(*Driver)) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[url] = load
	return d
}

// SetSettleDelay makes every settlement wait take delay.
func (d *Driver) SetSettleDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settleDelay = delay
}

func (d *Driver) SetURL(u string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = u
}

func (d *Driver) SetTitle(t string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = t
}

// Calls returns the recorded operations in order.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// CallsOf returns the recorded operations named op.
func (d *Driver) CallsOf(op string) []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (d *Driver) record(op string, t browser.Target, arg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Op: op, Target: t.String(), Arg: arg})
}

func key(t browser.Target) string {
	return t.Base().String()
}

func (d *Driver) resolve(t browser.Target) []*Element {
	d.mu.Lock()
	els := slices.Clone(d.nodes[key(t)])
	d.mu.Unlock()

	if t.VisibleOnly() {
		els = slices.DeleteFunc(els, func(e *Element) bool { return !e.visible() })
	}
	if idx, ok := t.Picked(); ok {
		if idx < 0 {
			idx = len(els) - 1
		}
		if idx < 0 || idx >= len(els) {
			return nil
		}
		return els[idx : idx+1]
	}
	return els
}

func (d *Driver) one(t browser.Target) (*Element, error) {
	els := d.resolve(t)
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: no element matches %s", browser.ErrElementNotInteractable, t)
	}
	return els[0], nil
}

func poll(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		left := time.Until(deadline)
		if left <= 0 {
			return false
		}
		time.Sleep(min(pollInterval, left))
	}
}

func (d *Driver) Goto(url string, timeout time.Duration) error {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Op: "goto", Arg: url})
	load := d.routes[url]
	d.url = url
	if load != nil {
		d.nodes = map[string][]*Element{}
	}
	d.mu.Unlock()
	if load != nil {
		load(d)
	}
	return nil
}

func (d *Driver) WaitForSettled(timeout time.Duration) error {
	d.mu.Lock()
	delay := d.settleDelay
	d.mu.Unlock()
	if delay > timeout {
		time.Sleep(timeout)
		return fmt.Errorf("%w: page still busy after %s", browser.ErrNavigationTimeout, timeout)
	}
	time.Sleep(delay)
	return nil
}

func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) WaitForURL(match func(string) bool, timeout time.Duration) error {
	if !poll(timeout, func() bool { return match(d.URL()) }) {
		return fmt.Errorf("%w: url %s did not match", browser.ErrTimeoutExceeded, d.URL())
	}
	return nil
}

func (d *Driver) WaitFor(t browser.Target, state browser.State, timeout time.Duration) error {
	reached := poll(timeout, func() bool {
		els := d.resolve(t)
		switch state {
		case browser.StateVisible:
			return len(els) > 0 && els[0].visible()
		case browser.StateHidden:
			return len(els) == 0 || !els[0].visible()
		case browser.StateDetached:
			return len(els) == 0
		}
		return false
	})
	if !reached {
		return fmt.Errorf("%w: %s not %s", browser.ErrTimeoutExceeded, t, state)
	}
	return nil
}

func (d *Driver) Click(t browser.Target, opts browser.ClickOptions) error {
	el, err := d.one(t)
	if err != nil {
		return err
	}
	el.mu.Lock()
	blocked := !opts.Force && (el.obscured || el.hidden)
	if !blocked && el.checkable {
		el.checked = !el.checked
	}
	fn := el.onClick
	el.mu.Unlock()
	if blocked {
		return fmt.Errorf("%w: %s intercepts pointer events", browser.ErrElementNotInteractable, t)
	}
	d.record("click", t, fmt.Sprint(opts.Force))
	if fn != nil {
		fn()
	}
	return nil
}

func (d *Driver) Fill(t browser.Target, text string, timeout time.Duration) error {
	el, err := d.one(t)
	if err != nil {
		return err
	}
	el.SetValue(text)
	d.record("fill", t, text)
	return nil
}

func (d *Driver) Press(t browser.Target, key string, timeout time.Duration) error {
	el, err := d.one(t)
	if err != nil {
		return err
	}
	el.mu.Lock()
	fn := el.onPress
	el.mu.Unlock()
	d.record("press", t, key)
	if fn != nil {
		fn(key)
	}
	return nil
}

func (d *Driver) Hover(t browser.Target, timeout time.Duration) error {
	el, err := d.one(t)
	if err != nil {
		return err
	}
	el.mu.Lock()
	fn := el.onHover
	el.mu.Unlock()
	d.record("hover", t, "")
	if fn != nil {
		fn()
	}
	return nil
}

func (d *Driver) SelectOption(t browser.Target, label string, timeout time.Duration) error {
	el, err := d.one(t)
	if err != nil {
		return err
	}
	el.mu.Lock()
	defer el.mu.Unlock()
	if !slices.Contains(el.options, label) {
		return fmt.Errorf("%w: %q in %s", browser.ErrOptionNotFound, label, t)
	}
	el.selected = label
	return nil
}

func (d *Driver) TextContent(t browser.Target, timeout time.Duration) (string, error) {
	el, err := d.one(t)
	if err != nil {
		return "", err
	}
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.text, nil
}

func (d *Driver) AllTextContents(t browser.Target) ([]string, error) {
	els := d.resolve(t)
	texts := make([]string, 0, len(els))
	for _, el := range els {
		el.mu.Lock()
		texts = append(texts, el.text)
		el.mu.Unlock()
	}
	return texts, nil
}

func (d *Driver) InputValue(t browser.Target, timeout time.Duration) (string, error) {
	el, err := d.one(t)
	if err != nil {
		return "", err
	}
	return el.Value(), nil
}

func (d *Driver) IsChecked(t browser.Target, timeout time.Duration) (bool, error) {
	el, err := d.one(t)
	if err != nil {
		return false, err
	}
	return el.Checked(), nil
}

func (d *Driver) IsVisible(t browser.Target) (bool, error) {
	els := d.resolve(t)
	return len(els) > 0 && els[0].visible(), nil
}

func (d *Driver) Count(t browser.Target) (int, error) {
	return len(d.resolve(t)), nil
}
