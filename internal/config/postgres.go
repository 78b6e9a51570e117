package config

import (
	"fmt"
)

// PostgresConfig holds configuration for the storefront's PostgreSQL
// database, read by the order ledger
type PostgresConfig struct {
	User     string
	Password string
	Database string
	Host     string
	Port     int
	SSLMode  string
	// SearchPath is optional; OpenCart installs sometimes use their own schema.
	SearchPath string
	// OrdersTable is the storefront's order table, oc_order on OpenCart.
	OrdersTable string
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig(getenv func(string) string) (*PostgresConfig, error) {
	config := &PostgresConfig{
		User:        getenv("POSTGRES_USER"),
		Password:    getenv("POSTGRES_PASSWORD"),
		Database:    getenv("POSTGRES_DB"),
		Host:        getenv("POSTGRES_HOSTNAME"),
		SSLMode:     envString(getenv, "POSTGRES_SSLMODE", "disable"),
		SearchPath:  getenv("POSTGRES_SEARCH_PATH"),
		OrdersTable: envString(getenv, "ORDERS_TABLE", "oc_order"),
	}

	// Validate required fields
	if config.User == "" {
		return nil, fmt.Errorf("POSTGRES_USER is required")
	}
	if config.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("POSTGRES_DB is required")
	}
	if config.Host == "" {
		return nil, fmt.Errorf("POSTGRES_HOSTNAME is required")
	}

	var err error
	if config.Port, err = envInt(getenv, "POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}

	return config, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	conn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	if c.SearchPath != "" {
		conn += " search_path=" + c.SearchPath
	}
	return conn
}
