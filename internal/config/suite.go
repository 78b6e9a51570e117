package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

// SuiteConfig holds the settings every journey and the smoke command share.
type SuiteConfig struct {
	BaseURL           string
	Browser           string
	Driver            string
	Headless          bool
	SlowMo            time.Duration
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration
	// SelectorsFile optionally overrides the built-in page selectors.
	SelectorsFile string
	// ChromePath is only read by the chromedp driver.
	ChromePath string
}

// LoadSuiteConfig loads the suite configuration from environment variables
func LoadSuiteConfig(getenv func(string) string) (*SuiteConfig, error) {
	config := &SuiteConfig{
		BaseURL:       strings.TrimRight(getenv("BASE_URL"), "/"),
		Browser:       envString(getenv, "BROWSER", "chromium"),
		Driver:        envString(getenv, "DRIVER", DriverPlaywright),
		SelectorsFile: getenv("SELECTORS_FILE"),
		ChromePath:    getenv("CHROME_PATH"),
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL is required")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("BASE_URL must be an absolute URL, got %q", config.BaseURL)
	}

	switch config.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return nil, fmt.Errorf("BROWSER must be chromium, firefox or webkit, got %q", config.Browser)
	}
	switch config.Driver {
	case DriverPlaywright:
	case DriverChromedp:
		if config.Browser != "chromium" {
			return nil, fmt.Errorf("DRIVER=chromedp only drives chromium, got BROWSER=%s", config.Browser)
		}
	default:
		return nil, fmt.Errorf("DRIVER must be %s or %s, got %q", DriverPlaywright, DriverChromedp, config.Driver)
	}

	if config.Headless, err = envBool(getenv, "HEADLESS", true); err != nil {
		return nil, err
	}
	if config.SlowMo, err = envMillis(getenv, "SLOW_MO_MS", 0); err != nil {
		return nil, err
	}
	if config.DefaultTimeout, err = envMillis(getenv, "DEFAULT_TIMEOUT_MS", 3*time.Second); err != nil {
		return nil, err
	}
	if config.NavigationTimeout, err = envMillis(getenv, "NAVIGATION_TIMEOUT_MS", 30*time.Second); err != nil {
		return nil, err
	}
	if config.DefaultTimeout == 0 || config.NavigationTimeout == 0 {
		return nil, fmt.Errorf("DEFAULT_TIMEOUT_MS and NAVIGATION_TIMEOUT_MS must be positive")
	}

	return config, nil
}
