package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Failure kinds. Drivers wrap them so the core can classify a failure, and
// the core wraps them again in an *ActionError naming the target.
var (
	ErrTimeoutExceeded        = errors.New("timeout exceeded")
	ErrElementNotInteractable = errors.New("element not interactable")
	ErrNavigationTimeout      = errors.New("navigation timeout")
	ErrOptionNotFound         = errors.New("option not found")
)

// ActionError reports a failed core call.
type ActionError struct {
	Op      string
	Target  string
	State   State
	Timeout time.Duration
	Kind    error
	Err     error
}

func (e *ActionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		fmt.Fprintf(&b, " '%s'", e.Target)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.State != "" {
		fmt.Fprintf(&b, " waiting for state %s", e.State)
	}
	if e.Timeout > 0 {
		fmt.Fprintf(&b, " after %s", e.Timeout)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ActionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// kindOf returns the failure kind a driver error was classified as, or
// fallback when the driver left it unclassified.
func kindOf(err error, fallback error) error {
	for _, k := range []error{ErrOptionNotFound, ErrNavigationTimeout, ErrElementNotInteractable, ErrTimeoutExceeded} {
		if errors.Is(err, k) {
			return k
		}
	}
	return fallback
}

// driverCause drops the failure kind sentinel from a driver error when that
// is all it carries, so messages do not repeat it.
func driverCause(err error) error {
	for _, k := range []error{ErrOptionNotFound, ErrNavigationTimeout, ErrElementNotInteractable, ErrTimeoutExceeded} {
		if err == k {
			return nil
		}
	}
	return err
}

// IsTimeout reports whether err is a wait or navigation timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeoutExceeded) || errors.Is(err, ErrNavigationTimeout)
}
