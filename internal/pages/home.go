package pages

import (
	"time"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// menuOpenTimeout bounds the hover menu's open animation.
const menuOpenTimeout = 5 * time.Second

type HomePage struct {
	*browser.Page
	route string

	Logo             browser.Target
	SearchInput      browser.Target
	SearchButton     browser.Target
	MyAccount        browser.Target
	RegisterLink     browser.Target
	LoginLink        browser.Target
	CartButton       browser.Target
	FeaturedProducts browser.Target
	LaptopsMenu      browser.Target
	ShowAllLaptops   browser.Target
}

func NewHomePage(page *browser.Page, sel *Selectors) *HomePage {
	s := sel.Home
	return &HomePage{
		Page:             page,
		route:            sel.Routes.Home,
		Logo:             s.Logo.Target(),
		SearchInput:      s.SearchInput.Target(),
		SearchButton:     s.SearchButton.Target(),
		MyAccount:        s.MyAccount.Target(),
		RegisterLink:     s.RegisterLink.Target(),
		LoginLink:        s.LoginLink.Target(),
		CartButton:       s.CartButton.Target(),
		FeaturedProducts: s.FeaturedProducts.Target(),
		LaptopsMenu:      s.LaptopsMenu.Target(),
		ShowAllLaptops:   s.ShowAllLaptops.Target(),
	}
}

func (h *HomePage) Open() error {
	return h.Navigate(h.route)
}

// SearchProduct submits name from the header search box and waits for the
// results page.
func (h *HomePage) SearchProduct(name string) error {
	if err := h.Fill(h.SearchInput, name); err != nil {
		return err
	}
	return h.ClickAndWaitForNavigation(h.SearchButton, navigation(h.Page))
}

func (h *HomePage) OpenMyAccount() error {
	return h.Click(h.MyAccount)
}

func (h *HomePage) GoToRegister() error {
	if err := h.OpenMyAccount(); err != nil {
		return err
	}
	return h.ClickAndWaitForNavigation(h.RegisterLink, navigation(h.Page))
}

func (h *HomePage) GoToLogin() error {
	if err := h.OpenMyAccount(); err != nil {
		return err
	}
	return h.ClickAndWaitForNavigation(h.LoginLink, navigation(h.Page))
}

// GoToLaptops opens the laptops category through the hover menu. The menu
// link is clicked with force: it sits under the menu's closing animation.
func (h *HomePage) GoToLaptops() error {
	if err := h.Hover(h.LaptopsMenu); err != nil {
		return err
	}
	if err := h.WaitVisible(h.ShowAllLaptops, browser.WithTimeout(menuOpenTimeout)); err != nil {
		return err
	}
	return h.ClickAndWaitForNavigation(h.ShowAllLaptops, browser.Force(), navigation(h.Page))
}

func (h *HomePage) FeaturedProductsCount() (int, error) {
	return h.Count(h.FeaturedProducts)
}
