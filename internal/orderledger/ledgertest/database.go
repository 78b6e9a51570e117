// Package ledgertest provisions an isolated OpenCart-shaped order table for
// integration tests.
package ledgertest

import (
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/orderledger"
)

// TestDatabase is a throwaway schema holding an oc_order table.
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	masterDB   *sql.DB
}

// SetupTestDatabase creates the schema and its order table. The connection
// defaults to a local postgres/postgres server.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	cfg, err := config.LoadPostgresConfig(func(key string) string {
		defaults := map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
			"POSTGRES_HOSTNAME": "localhost",
		}
		if v := os.Getenv(key); v != "" {
			return v
		}
		return defaults[key]
	})
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	masterDB, err := orderledger.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to master database: %v", err)
	}

	schemaName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := masterDB.Exec("CREATE SCHEMA " + pq.QuoteIdentifier(schemaName)); err != nil {
		masterDB.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	schemaCfg := *cfg
	schemaCfg.SearchPath = schemaName
	testDB, err := orderledger.Connect(&schemaCfg)
	if err != nil {
		masterDB.Exec("DROP SCHEMA " + pq.QuoteIdentifier(schemaName) + " CASCADE")
		masterDB.Close()
		t.Fatalf("Failed to connect to test schema: %v", err)
	}

	td := &TestDatabase{DB: testDB, SchemaName: schemaName, masterDB: masterDB}
	if err := td.createOrderTable(); err != nil {
		td.Teardown(t)
		t.Fatalf("Failed to create order table: %v", err)
	}
	return td
}

// createOrderTable mirrors the columns of OpenCart's oc_order the ledger
// reads.
func (td *TestDatabase) createOrderTable() error {
	_, err := td.DB.Exec(`
	CREATE TABLE IF NOT EXISTS oc_order (
		order_id SERIAL PRIMARY KEY,
		firstname VARCHAR(32) NOT NULL,
		lastname VARCHAR(32) NOT NULL,
		email VARCHAR(96) NOT NULL,
		total DECIMAL(15,4) NOT NULL DEFAULT 0,
		currency_code VARCHAR(3) NOT NULL,
		order_status_id INTEGER NOT NULL DEFAULT 0,
		date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_oc_order_email ON oc_order(email);
	`)
	return err
}

// InsertOrder adds a row and returns its id.
func (td *TestDatabase) InsertOrder(t *testing.T, o orderledger.Order) int64 {
	t.Helper()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	var id int64
	err := td.DB.QueryRow(`
		INSERT INTO oc_order (firstname, lastname, email, total, currency_code, order_status_id, date_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id
	`, o.FirstName, o.LastName, o.Email, o.Total, o.Currency, o.StatusID, o.CreatedAt).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert order: %v", err)
	}
	return id
}

// Teardown drops the schema and closes both connections.
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
	}
	if td.masterDB != nil {
		_, err := td.masterDB.Exec("DROP SCHEMA IF EXISTS " + pq.QuoteIdentifier(td.SchemaName) + " CASCADE")
		if err != nil {
			t.Logf("Warning: Failed to drop test schema %s: %v", td.SchemaName, err)
		}
		td.masterDB.Close()
	}
}
