package browser

import "time"

// DefaultTimeout bounds waits and actions when neither the page nor the call
// configures one.
const DefaultTimeout = 3000 * time.Millisecond

// DefaultNavigationTimeout bounds Navigate when not configured.
const DefaultNavigationTimeout = 30 * time.Second

// minActionBudget is the least time an action gets after its precondition
// wait consumed most of the call budget.
const minActionBudget = 100 * time.Millisecond

type callOptions struct {
	timeout time.Duration
	force   bool
}

// Option configures a single core call.
type Option func(*callOptions)

// WithTimeout overrides the instance default for one call. Non-positive
// values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Force makes Click skip actionability checks. It is meant for elements
// still under a closing animation.
func Force() Option {
	return func(o *callOptions) { o.force = true }
}

func resolveOptions(def time.Duration, opts []Option) callOptions {
	o := callOptions{timeout: def}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	return o
}

// remaining returns what is left of budget since start, never less than
// minActionBudget.
func remaining(start time.Time, budget time.Duration) time.Duration {
	left := budget - time.Since(start)
	if left < minActionBudget {
		return minActionBudget
	}
	return left
}
