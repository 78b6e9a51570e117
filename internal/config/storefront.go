package config

import "time"

// StorefrontConfig holds configuration for the stub storefront server
type StorefrontConfig struct {
	Port string
	// SubmitDelay postpones rendering of the register form's submit button.
	SubmitDelay time.Duration
}

// LoadStorefrontConfig loads storefront configuration from environment variables
func LoadStorefrontConfig(getenv func(string) string) (*StorefrontConfig, error) {
	delay, err := envMillis(getenv, "SUBMIT_DELAY_MS", 0)
	if err != nil {
		return nil, err
	}
	return &StorefrontConfig{
		Port:        envString(getenv, "PORT", "8080"), // Default to port 8080
		SubmitDelay: delay,
	}, nil
}
