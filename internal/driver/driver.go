// Package driver launches the configured browser driver and hands out
// isolated sessions.
package driver

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/driver/cdpdriver"
	"github.com/themizzi/storefrontqa/internal/driver/pwdriver"
)

// Session is one isolated browsing context.
type Session struct {
	ID     string
	Driver browser.Driver
	Logger *zap.Logger
	close  func() error
}

// Close discards the session's context.
func (s *Session) Close() error {
	if err := s.close(); err != nil {
		return fmt.Errorf("failed to close session %s: %w", s.ID, err)
	}
	s.Logger.Debug("Session closed.")
	return nil
}

// NewSession wraps d in a session with a fresh ID. close discards the
// underlying context.
func NewSession(d browser.Driver, logger *zap.Logger, close func() error) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{ID: id, Driver: d, Logger: logger.With(zap.String("session_id", id)), close: close}
}

// Launcher starts sessions against one running browser.
type Launcher interface {
	NewSession() (*Session, error)
	Close() error
}

type contextOpener interface {
	NewContext() (browser.Driver, func() error, error)
	Close() error
}

type launcher struct {
	opener contextOpener
	logger *zap.Logger
}

// Launch starts the browser selected by cfg.Driver.
func Launch(cfg *config.SuiteConfig, logger *zap.Logger) (Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		opener contextOpener
		err    error
	)
	switch cfg.Driver {
	case config.DriverChromedp:
		opener, err = cdpdriver.Launch(cdpdriver.Options{Headless: cfg.Headless, ExecPath: cfg.ChromePath}, logger)
	case config.DriverPlaywright, "":
		opener, err = pwdriver.Launch(pwdriver.Options{
			Browser:  cfg.Browser,
			Headless: cfg.Headless,
			SlowMo:   cfg.SlowMo,
			BaseURL:  cfg.BaseURL,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &launcher{opener: opener, logger: logger}, nil
}

func (l *launcher) NewSession() (*Session, error) {
	d, closeCtx, err := l.opener.NewContext()
	if err != nil {
		return nil, err
	}
	s := NewSession(d, l.logger, closeCtx)
	s.Logger.Debug("Session opened.")
	return s, nil
}

func (l *launcher) Close() error {
	return l.opener.Close()
}
