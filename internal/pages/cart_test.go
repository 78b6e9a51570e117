package pages_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/storefrontqa/internal/browser"
	"github.com/themizzi/storefrontqa/internal/browser/browsertest"
)

func TestCartHeaderParsing(t *testing.T) {
	tests := []struct {
		header    string
		wantCount int
		wantPrice string
	}{
		{"0 item(s) - $0.00", 0, "$0.00"},
		{"1 item(s) - $602.00", 1, "$602.00"},
		{"12 item(s) - $1,804.00", 12, "$1,804.00"},
		{"Shopping Cart", 0, "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			d, p := newPages(t)
			d.Add(p.Cart.CartTotal, browsertest.NewElement(tt.header))

			n, err := p.Cart.ItemCount()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, n)

			price, err := p.Cart.TotalPrice()
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestCartWaitForItemCount(t *testing.T) {
	d, p := newPages(t)
	total := browsertest.NewElement("0 item(s) - $0.00")
	d.Add(p.Cart.CartTotal, total)
	go func() {
		time.Sleep(100 * time.Millisecond)
		total.SetText("1 item(s) - $602.00")
	}()

	require.NoError(t, p.Cart.WaitForItemCount(1, time.Second))
}

func TestCartWaitForItemCountTimesOut(t *testing.T) {
	d, p := newPages(t)
	d.Add(p.Cart.CartTotal, browsertest.NewElement("0 item(s) - $0.00"))

	err := p.Cart.WaitForItemCount(2, 150*time.Millisecond)

	require.ErrorIs(t, err, browser.ErrTimeoutExceeded)
	var ae *browser.ActionError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Error(), "cart shows 0 items")
}

func TestCartViewCartOpensDropdownFirst(t *testing.T) {
	d, p := newPages(t)
	dropdown := browsertest.NewElement("").Hide()
	view := browsertest.NewElement("View Cart").Hide()
	d.Add(p.Cart.CartButton, browsertest.NewElement("1 item(s)").OnClick(func() {
		dropdown.Show()
		view.Show()
	}))
	d.Add(p.Cart.Dropdown, dropdown)
	d.Add(p.Cart.ViewCartLink, view.OnClick(goesTo(d, "/index.php?route=checkout/cart")))

	require.NoError(t, p.Cart.ViewCart())

	assert.Equal(t, shop+"/index.php?route=checkout/cart", p.Cart.URL())
}

func TestCartUpdateAndRemove(t *testing.T) {
	d, p := newPages(t)
	qty0, qty1 := browsertest.NewElement("").SetValue("1"), browsertest.NewElement("").SetValue("1")
	d.Add(p.Cart.QuantityInputs, qty0, qty1)
	d.Add(p.Cart.UpdateButtons, browsertest.NewElement(""), browsertest.NewElement(""))
	row0, row1 := browsertest.NewElement("MacBook"), browsertest.NewElement("iPhone")
	d.Add(p.Cart.Rows, row0, row1)
	d.Add(p.Cart.RemoveButtons,
		browsertest.NewElement(""),
		browsertest.NewElement("").OnClick(func() { d.Remove(p.Cart.Rows, row1) }))

	require.NoError(t, p.Cart.UpdateQuantity(1, 4))
	assert.Equal(t, "1", qty0.Value())
	assert.Equal(t, "4", qty1.Value())

	require.NoError(t, p.Cart.RemoveItem(1))
	n, err := p.Cart.ProductCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCartIsEmpty(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		d, p := newPages(t)
		d.Add(p.Cart.EmptyMessage, browsertest.NewElement("Your shopping cart is empty!"))

		empty, err := p.Cart.IsEmpty()
		require.NoError(t, err)
		assert.True(t, empty)
	})
	t.Run("rows present", func(t *testing.T) {
		d, p := newPages(t)
		d.Add(p.Cart.Rows, browsertest.NewElement("MacBook"))

		empty, err := p.Cart.IsEmpty()
		require.NoError(t, err)
		assert.False(t, empty)
	})
}

func TestCartProductNamesAndGrandTotal(t *testing.T) {
	d, p := newPages(t)
	d.Add(p.Cart.ProductNames, browsertest.NewElement("MacBook"), browsertest.NewElement("iPhone"))
	d.Add(p.Cart.TotalRow, browsertest.NewElement("Sub-Total:"), browsertest.NewElement("Total: $725.20"))

	names, err := p.Cart.ProductNameTexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"MacBook", "iPhone"}, names)

	total, err := p.Cart.GrandTotal()
	require.NoError(t, err)
	assert.Equal(t, "Total: $725.20", total)
}
