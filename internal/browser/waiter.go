package browser

import (
	"time"

	"go.uber.org/zap"
)

// Waiter blocks until a target reaches a state or its timeout elapses.
// Only the first match of a multi-match target is considered.
type Waiter struct {
	driver  Driver
	timeout time.Duration
	logger  *zap.Logger
}

// NewWaiter returns a Waiter using timeout when a call gives none.
func NewWaiter(d Driver, timeout time.Duration, logger *zap.Logger) *Waiter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Waiter{driver: d, timeout: timeout, logger: logger}
}

// WaitFor waits until t reaches state. A non-positive timeout uses the
// default. It fails with ErrTimeoutExceeded.
func (w *Waiter) WaitFor(t Target, state State, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = w.timeout
	}
	start := time.Now()
	err := w.driver.WaitFor(t.firstIfAll(), state, timeout)
	if err != nil {
		w.logger.Debug("Wait failed.",
			zap.String("target", t.String()),
			zap.String("state", string(state)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return &ActionError{
			Op:      "wait",
			Target:  t.String(),
			State:   state,
			Timeout: timeout,
			Kind:    kindOf(err, ErrTimeoutExceeded),
			Err:     driverCause(err),
		}
	}
	return nil
}

func (w *Waiter) WaitVisible(t Target, opts ...Option) error {
	return w.WaitFor(t, StateVisible, resolveOptions(w.timeout, opts).timeout)
}

func (w *Waiter) WaitHidden(t Target, opts ...Option) error {
	return w.WaitFor(t, StateHidden, resolveOptions(w.timeout, opts).timeout)
}

func (w *Waiter) WaitDetached(t Target, opts ...Option) error {
	return w.WaitFor(t, StateDetached, resolveOptions(w.timeout, opts).timeout)
}
