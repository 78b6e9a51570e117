package browser

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Submit performs a form submission whose primary control may render late.
//
// It clicks primary; if that fails it presses Enter in the last visible
// text, e-mail or password input. It then waits for either success to become
// visible or the page to settle, accepting whichever happens first. A flow
// that only settles through a page load is still a success. Each of the three
// steps is bounded by the call timeout.
func (p *Page) Submit(primary, success Target, opts ...Option) error {
	o := resolveOptions(p.timeout, opts)

	clickErr := p.Click(primary, opts...)
	if clickErr != nil {
		p.logger.Warn("Primary submit control not actionable, submitting from keyboard.",
			zap.String("target", primary.String()), zap.Error(clickErr))
		if err := p.Press(p.submitKeys, "Enter", WithTimeout(o.timeout)); err != nil {
			return errors.Join(clickErr, err)
		}
	}

	return p.awaitSettlement(success, o.timeout)
}

type settleResult struct {
	source string
	err    error
}

// awaitSettlement races a success indicator against page settlement. Both
// racers are bounded by timeout, so neither outlives the call by more than
// that.
func (p *Page) awaitSettlement(success Target, timeout time.Duration) error {
	results := make(chan settleResult, 2)
	go func() {
		results <- settleResult{"success indicator", p.waiter.WaitFor(success, StateVisible, timeout)}
	}()
	go func() {
		results <- settleResult{"page settled", p.driver.WaitForSettled(timeout)}
	}()

	var errs []error
	for range 2 {
		r := <-results
		if r.err == nil {
			p.logger.Debug("Submission settled.", zap.String("by", r.source))
			return nil
		}
		errs = append(errs, r.err)
	}
	return &ActionError{
		Op:      "submit",
		Target:  success.String(),
		Timeout: timeout,
		Kind:    ErrNavigationTimeout,
		Err:     errors.Join(errs...),
	}
}
