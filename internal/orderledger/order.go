package orderledger

import (
	"fmt"
	"time"
)

// Order is one row of the storefront's order table.
type Order struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Total     float64
	Currency  string
	StatusID  int
	CreatedAt time.Time
}

// IsPlaced reports whether checkout completed. OpenCart keeps abandoned
// checkouts as orders with status 0.
func (o *Order) IsPlaced() bool {
	return o.StatusID > 0
}

// FormattedTotal returns the total with two decimals and its currency.
func (o *Order) FormattedTotal() string {
	return fmt.Sprintf("%.2f %s", o.Total, o.Currency)
}
