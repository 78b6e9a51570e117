package orderledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/themizzi/storefrontqa/internal/config"
)

// Connect opens and verifies a connection to the storefront database.
func Connect(cfg *config.PostgresConfig) (*sql.DB, error) {
	connector, err := pq.NewConnector(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	db := sql.OpenDB(connector)

	// The ledger only reads a handful of rows per journey.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
