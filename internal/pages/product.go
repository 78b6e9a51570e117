package pages

import (
	"strconv"

	"github.com/themizzi/storefrontqa/internal/browser"
)

type ProductPage struct {
	*browser.Page

	AddToCartButton  browser.Target
	ProductTitle     browser.Target
	ProductPrice     browser.Target
	Quantity         browser.Target
	SuccessAlert     browser.Target
	Thumbs           browser.Target
	Links            browser.Target
	ListingAddToCart browser.Target
}

func NewProductPage(page *browser.Page, sel *Selectors) *ProductPage {
	s := sel.Product
	return &ProductPage{
		Page:             page,
		AddToCartButton:  s.AddToCart.Target(),
		ProductTitle:     s.Title.Target(),
		ProductPrice:     s.Price.Target(),
		Quantity:         s.Quantity.Target(),
		SuccessAlert:     s.SuccessAlert.Target(),
		Thumbs:           s.Thumbs.Target(),
		Links:            s.Links.Target(),
		ListingAddToCart: s.ListingAddToCart.Target(),
	}
}

// OpenProduct opens the first listed product whose link text contains name.
func (p *ProductPage) OpenProduct(name string) error {
	return p.ClickAndWaitForNavigation(p.Links.WithText(name).First(), navigation(p.Page))
}

// OpenProductAt opens the i-th listed product, zero based.
func (p *ProductPage) OpenProductAt(i int) error {
	return p.ClickAndWaitForNavigation(p.Links.Nth(i), navigation(p.Page))
}

// AddToCart adds the open product and waits for the cart request to finish.
func (p *ProductPage) AddToCart() error {
	if err := p.Click(p.AddToCartButton); err != nil {
		return err
	}
	return p.WaitForSettled()
}

func (p *ProductPage) AddToCartWithQuantity(quantity int) error {
	if err := p.Fill(p.Quantity, strconv.Itoa(quantity)); err != nil {
		return err
	}
	return p.AddToCart()
}

// AddToCartFromListing uses the add button of the i-th product thumbnail.
func (p *ProductPage) AddToCartFromListing(i int) error {
	if err := p.Click(p.Thumbs.Nth(i).Locate(p.ListingAddToCart)); err != nil {
		return err
	}
	return p.WaitForSettled()
}

func (p *ProductPage) Name() (string, error) {
	return p.GetText(p.ProductTitle)
}

func (p *ProductPage) Price() (string, error) {
	return p.GetText(p.ProductPrice)
}

func (p *ProductPage) IsSuccessMessageVisible() bool {
	return p.IsVisible(p.SuccessAlert)
}

func (p *ProductPage) SuccessMessage() (string, error) {
	return p.GetText(p.SuccessAlert)
}

func (p *ProductPage) ProductCount() (int, error) {
	return p.Count(p.Thumbs)
}
