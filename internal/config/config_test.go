package config

import (
	"strings"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadSuiteConfig_Defaults(t *testing.T) {
	// GIVEN only the base URL is set
	getenv := envFrom(map[string]string{"BASE_URL": "https://demo.opencart.com/"})

	// WHEN the suite configuration is loaded
	cfg, err := LoadSuiteConfig(getenv)

	// THEN the defaults apply and the trailing slash is dropped
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://demo.opencart.com" {
		t.Errorf("expected trimmed base URL, got %q", cfg.BaseURL)
	}
	if cfg.Browser != "chromium" || cfg.Driver != DriverPlaywright || !cfg.Headless {
		t.Errorf("unexpected browser defaults: %+v", cfg)
	}
	if cfg.DefaultTimeout != 3*time.Second {
		t.Errorf("expected 3s default timeout, got %s", cfg.DefaultTimeout)
	}
	if cfg.NavigationTimeout != 30*time.Second {
		t.Errorf("expected 30s navigation timeout, got %s", cfg.NavigationTimeout)
	}
}

func TestLoadSuiteConfig_Overrides(t *testing.T) {
	// GIVEN every setting is overridden
	getenv := envFrom(map[string]string{
		"BASE_URL":              "http://localhost:8080",
		"BROWSER":               "chromium",
		"DRIVER":                "chromedp",
		"HEADLESS":              "false",
		"SLOW_MO_MS":            "250",
		"DEFAULT_TIMEOUT_MS":    "5000",
		"NAVIGATION_TIMEOUT_MS": "10000",
		"SELECTORS_FILE":        "selectors.yaml",
	})

	// WHEN the suite configuration is loaded
	cfg, err := LoadSuiteConfig(getenv)

	// THEN the overrides are reflected
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Driver != DriverChromedp || cfg.Headless {
		t.Errorf("unexpected driver settings: %+v", cfg)
	}
	if cfg.SlowMo != 250*time.Millisecond || cfg.DefaultTimeout != 5*time.Second || cfg.NavigationTimeout != 10*time.Second {
		t.Errorf("unexpected durations: %+v", cfg)
	}
	if cfg.SelectorsFile != "selectors.yaml" {
		t.Errorf("expected selectors file, got %q", cfg.SelectorsFile)
	}
}

func TestLoadSuiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing base URL", map[string]string{}, "BASE_URL is required"},
		{"relative base URL", map[string]string{"BASE_URL": "/shop"}, "absolute URL"},
		{"unknown browser", map[string]string{"BASE_URL": "http://x", "BROWSER": "opera"}, "BROWSER must be"},
		{"unknown driver", map[string]string{"BASE_URL": "http://x", "DRIVER": "selenium"}, "DRIVER must be"},
		{"chromedp with firefox", map[string]string{"BASE_URL": "http://x", "DRIVER": "chromedp", "BROWSER": "firefox"}, "only drives chromium"},
		{"bad headless", map[string]string{"BASE_URL": "http://x", "HEADLESS": "maybe"}, "HEADLESS must be a boolean"},
		{"bad timeout", map[string]string{"BASE_URL": "http://x", "DEFAULT_TIMEOUT_MS": "3s"}, "DEFAULT_TIMEOUT_MS must be an integer"},
		{"negative timeout", map[string]string{"BASE_URL": "http://x", "NAVIGATION_TIMEOUT_MS": "-1"}, "must not be negative"},
		{"zero timeout", map[string]string{"BASE_URL": "http://x", "DEFAULT_TIMEOUT_MS": "0"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSuiteConfig(envFrom(tt.env))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err)
			}
		})
	}
}

func TestLoadLoggerConfig(t *testing.T) {
	// GIVEN nothing is set
	// WHEN the logger configuration is loaded
	cfg, err := LoadLoggerConfig(envFrom(nil))

	// THEN console logging at info with rotation defaults is used
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Level != "info" || cfg.Format != "console" || cfg.File != "" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxSizeMB != 100 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 28 {
		t.Errorf("unexpected rotation defaults: %+v", cfg)
	}

	if _, err := LoadLoggerConfig(envFrom(map[string]string{"LOG_LEVEL": "loud"})); err == nil {
		t.Error("expected an invalid level to fail")
	}
	if _, err := LoadLoggerConfig(envFrom(map[string]string{"LOG_FORMAT": "xml"})); err == nil {
		t.Error("expected an invalid format to fail")
	}
}

func TestLoadPostgresConfig(t *testing.T) {
	complete := map[string]string{
		"POSTGRES_USER":     "shop",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "opencart",
		"POSTGRES_HOSTNAME": "db",
	}

	// GIVEN the required variables are set
	cfg, err := LoadPostgresConfig(envFrom(complete))

	// THEN the connection string carries the defaults
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "host=db port=5432 user=shop password=secret dbname=opencart sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if cfg.OrdersTable != "oc_order" {
		t.Errorf("expected oc_order, got %q", cfg.OrdersTable)
	}

	// AND an optional search path is appended
	withSchema := map[string]string{"POSTGRES_SEARCH_PATH": "shop"}
	for k, v := range complete {
		withSchema[k] = v
	}
	cfg, err = LoadPostgresConfig(envFrom(withSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.ConnectionString(); got != want+" search_path=shop" {
		t.Errorf("expected search_path in %q", got)
	}

	// AND each missing variable is reported
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOSTNAME"} {
		env := map[string]string{}
		for k, v := range complete {
			if k != key {
				env[k] = v
			}
		}
		_, err := LoadPostgresConfig(envFrom(env))
		if err == nil || err.Error() != key+" is required" {
			t.Errorf("expected %q, got %v", key+" is required", err)
		}
	}
}

func TestLoadStorefrontConfig(t *testing.T) {
	cfg, err := LoadStorefrontConfig(envFrom(map[string]string{"SUBMIT_DELAY_MS": "1500"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.SubmitDelay != 1500*time.Millisecond {
		t.Errorf("expected 1.5s submit delay, got %s", cfg.SubmitDelay)
	}
}
