package browser

import "time"

// State is an element state a wait can target.
type State string

const (
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
	StateDetached State = "detached"
)

// ClickOptions configures a single driver click.
type ClickOptions struct {
	Force   bool
	Timeout time.Duration
}

// Driver is the browsing-context capability the reliability layer wraps.
//
// Implementations bound every call by the timeout they are given and
// classify failures by wrapping ErrTimeoutExceeded, ErrElementNotInteractable,
// ErrNavigationTimeout or ErrOptionNotFound. Single-element operations act on
// the target as given; the core applies the first-match policy before calling.
type Driver interface {
	Goto(url string, timeout time.Duration) error
	WaitForSettled(timeout time.Duration) error
	URL() string
	Title() (string, error)
	WaitForURL(match func(url string) bool, timeout time.Duration) error

	WaitFor(t Target, state State, timeout time.Duration) error
	Click(t Target, opts ClickOptions) error
	Fill(t Target, text string, timeout time.Duration) error
	Press(t Target, key string, timeout time.Duration) error
	Hover(t Target, timeout time.Duration) error
	SelectOption(t Target, label string, timeout time.Duration) error

	// TextContent returns "" for elements without text.
	TextContent(t Target, timeout time.Duration) (string, error)
	AllTextContents(t Target) ([]string, error)
	InputValue(t Target, timeout time.Duration) (string, error)
	IsChecked(t Target, timeout time.Duration) (bool, error)
	IsVisible(t Target) (bool, error)
	Count(t Target) (int, error)
}
