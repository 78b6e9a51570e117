// Package orderledger reads placed orders straight from the storefront
// database, so journeys can cross-check what the order history page shows.
package orderledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrNoOrders     = errors.New("no orders found")
	ErrTableMissing = errors.New("orders table does not exist")
)

// undefined_table
const pqUndefinedTable = "42P01"

// Ledger queries a storefront order table.
type Ledger struct {
	db    *sql.DB
	table string
}

// New returns a Ledger over table in db. table may be schema qualified.
func New(db *sql.DB, table string) *Ledger {
	return &Ledger{db: db, table: quoteTable(table)}
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// OrderCount returns the number of placed orders for email.
func (l *Ledger) OrderCount(email string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE LOWER(email) = LOWER($1) AND order_status_id > 0
	`, l.table)

	var n int
	if err := l.db.QueryRow(query, email).Scan(&n); err != nil {
		return 0, l.queryError("count orders", err)
	}
	return n, nil
}

// LatestOrder returns the most recent placed order for email.
func (l *Ledger) LatestOrder(email string) (*Order, error) {
	orders, err := l.Orders(email, 1)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoOrders, email)
	}
	return orders[0], nil
}

// Orders returns up to limit placed orders for email, newest first.
func (l *Ledger) Orders(email string, limit int) ([]*Order, error) {
	query := fmt.Sprintf(`
		SELECT order_id, email, firstname, lastname, total, currency_code,
		       order_status_id, date_added
		FROM %s
		WHERE LOWER(email) = LOWER($1) AND order_status_id > 0
		ORDER BY date_added DESC, order_id DESC
		LIMIT $2
	`, l.table)

	rows, err := l.db.Query(query, email, limit)
	if err != nil {
		return nil, l.queryError("list orders", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{}
		if err := rows.Scan(&o.ID, &o.Email, &o.FirstName, &o.LastName, &o.Total,
			&o.Currency, &o.StatusID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, l.queryError("list orders", err)
	}
	return orders, nil
}

func (l *Ledger) queryError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return fmt.Errorf("failed to %s: %w: %s", op, ErrTableMissing, l.table)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
