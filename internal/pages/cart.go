package pages

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/themizzi/storefrontqa/internal/browser"
)

var (
	itemCountPattern = regexp.MustCompile(`(\d+)\s+item`)
	pricePattern     = regexp.MustCompile(`\$[\d,]+\.\d{2}`)
)

const cartPollInterval = 100 * time.Millisecond

type CartPage struct {
	*browser.Page
	route string

	CartButton     browser.Target
	CartTotal      browser.Target
	Dropdown       browser.Target
	ViewCartLink   browser.Target
	CheckoutButton browser.Target
	Table          browser.Target
	Rows           browser.Target
	ProductNames   browser.Target
	ProductPrices  browser.Target
	QuantityInputs browser.Target
	UpdateButtons  browser.Target
	RemoveButtons  browser.Target
	TotalRow       browser.Target
	EmptyMessage   browser.Target
}

func NewCartPage(page *browser.Page, sel *Selectors) *CartPage {
	s := sel.Cart
	return &CartPage{
		Page:           page,
		route:          sel.Routes.Cart,
		CartButton:     s.CartButton.Target(),
		CartTotal:      s.CartTotal.Target(),
		Dropdown:       s.Dropdown.Target(),
		ViewCartLink:   s.ViewCart.Target(),
		CheckoutButton: s.Checkout.Target(),
		Table:          s.Table.Target(),
		Rows:           s.Rows.Target(),
		ProductNames:   s.ProductNames.Target(),
		ProductPrices:  s.ProductPrices.Target(),
		QuantityInputs: s.QuantityInputs.Target(),
		UpdateButtons:  s.UpdateButtons.Target(),
		RemoveButtons:  s.RemoveButtons.Target(),
		TotalRow:       s.TotalRow.Target(),
		EmptyMessage:   s.EmptyMessage.Target(),
	}
}

func (c *CartPage) Open() error {
	return c.Navigate(c.route)
}

// OpenDropdown clicks the header cart button and waits for its dropdown.
func (c *CartPage) OpenDropdown() error {
	if err := c.Click(c.CartButton); err != nil {
		return err
	}
	return c.WaitVisible(c.Dropdown)
}

func (c *CartPage) ViewCart() error {
	if err := c.OpenDropdown(); err != nil {
		return err
	}
	return c.ClickAndWaitForNavigation(c.ViewCartLink, navigation(c.Page))
}

// HeaderText is the header cart summary, e.g. "2 item(s) - $1,804.00".
func (c *CartPage) HeaderText() (string, error) {
	return c.GetText(c.CartTotal)
}

// ItemCount parses the item count out of the header summary; a summary
// without one counts as zero.
func (c *CartPage) ItemCount() (int, error) {
	text, err := c.HeaderText()
	if err != nil {
		return 0, err
	}
	return parseItemCount(text), nil
}

// TotalPrice returns the price part of the header summary, "$0.00" when
// there is none.
func (c *CartPage) TotalPrice() (string, error) {
	text, err := c.HeaderText()
	if err != nil {
		return "", err
	}
	return parsePrice(text), nil
}

// WaitForItemCount polls the header summary until it shows n items.
func (c *CartPage) WaitForItemCount(n int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		got, err := c.ItemCount()
		if err == nil && got == n {
			return nil
		}
		left := time.Until(deadline)
		if left <= 0 {
			if err != nil {
				return err
			}
			return &browser.ActionError{
				Op:      fmt.Sprintf("wait for %d cart items", n),
				Target:  c.CartTotal.String(),
				Timeout: timeout,
				Kind:    browser.ErrTimeoutExceeded,
				Err:     fmt.Errorf("cart shows %d items", got),
			}
		}
		time.Sleep(min(cartPollInterval, left))
	}
}

func (c *CartPage) ProductNameTexts() ([]string, error) {
	if err := c.WaitForSettled(); err != nil {
		return nil, err
	}
	return c.AllTexts(c.ProductNames)
}

// GrandTotal returns the last row of the totals table.
func (c *CartPage) GrandTotal() (string, error) {
	return c.GetText(c.TotalRow)
}

// UpdateQuantity sets the quantity of the i-th cart row and submits it.
func (c *CartPage) UpdateQuantity(i, quantity int) error {
	if err := c.Fill(c.QuantityInputs.Nth(i), strconv.Itoa(quantity)); err != nil {
		return err
	}
	if err := c.Click(c.UpdateButtons.Nth(i)); err != nil {
		return err
	}
	return c.WaitForSettled(navigation(c.Page))
}

func (c *CartPage) RemoveItem(i int) error {
	if err := c.Click(c.RemoveButtons.Nth(i)); err != nil {
		return err
	}
	return c.WaitForSettled(navigation(c.Page))
}

func (c *CartPage) ProductCount() (int, error) {
	return c.Count(c.Rows)
}

func (c *CartPage) ProceedToCheckout() error {
	return c.ClickAndWaitForNavigation(c.CheckoutButton, navigation(c.Page))
}

// IsEmpty reports an empty cart by its message or, failing that, by having
// no product rows.
func (c *CartPage) IsEmpty() (bool, error) {
	if c.IsVisible(c.EmptyMessage) {
		return true, nil
	}
	n, err := c.ProductCount()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func parseItemCount(text string) int {
	m := itemCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func parsePrice(text string) string {
	if p := pricePattern.FindString(text); p != "" {
		return p
	}
	return "$0.00"
}
