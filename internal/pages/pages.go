// Package pages holds the storefront page objects. Each one embeds a
// *browser.Page, so it gets navigation and the guarded actions directly and
// adds the business actions of its storefront page on top.
package pages

import (
	"fmt"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// Pages bundles the page objects sharing one browsing context.
type Pages struct {
	Home     *HomePage
	Search   *SearchPage
	Product  *ProductPage
	Cart     *CartPage
	Checkout *CheckoutPage
	Account  *AccountPage
}

// New builds every page object over page. A nil sel means DefaultSelectors.
func New(page *browser.Page, sel *Selectors) (*Pages, error) {
	if sel == nil {
		sel = DefaultSelectors()
	}
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}
	return &Pages{
		Home:     NewHomePage(page, sel),
		Search:   NewSearchPage(page, sel),
		Product:  NewProductPage(page, sel),
		Cart:     NewCartPage(page, sel),
		Checkout: NewCheckoutPage(page, sel),
		Account:  NewAccountPage(page, sel),
	}, nil
}

// navigation bounds an action that loads a new document.
func navigation(p *browser.Page) browser.Option {
	return browser.WithTimeout(p.NavigationTimeout())
}
