package pages

import (
	"regexp"

	"github.com/themizzi/storefrontqa/internal/browser"
)

var orderSuccessURL = regexp.MustCompile(`checkout/success`)

// Address is the payment address a checkout form takes.
type Address struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Company   string `yaml:"company,omitempty"`
	Address1  string `yaml:"address_1"`
	City      string `yaml:"city"`
	PostCode  string `yaml:"post_code"`
	Country   string `yaml:"country"`
	Zone      string `yaml:"zone"`
}

type CheckoutPage struct {
	*browser.Page
	route        string
	historyRoute string

	Title                 browser.Target
	FirstName             browser.Target
	LastName              browser.Target
	Company               browser.Target
	Address1              browser.Target
	City                  browser.Target
	PostCode              browser.Target
	Email                 browser.Target
	Telephone             browser.Target
	Country               browser.Target
	Zone                  browser.Target
	Comment               browser.Target
	Agree                 browser.Target
	ConfirmOrderButton    browser.Target
	SuccessHeading        browser.Target
	CheckoutLink          browser.Target
	GuestCheckout         browser.Target
	ButtonAccount         browser.Target
	ButtonGuest           browser.Target
	ButtonPaymentAddress  browser.Target
	ButtonShippingAddress browser.Target
	ButtonShippingMethod  browser.Target
	ButtonPaymentMethod   browser.Target
	HistoryLink           browser.Target
	OrderTable            browser.Target
	OrderRows             browser.Target
}

func NewCheckoutPage(page *browser.Page, sel *Selectors) *CheckoutPage {
	s := sel.Checkout
	return &CheckoutPage{
		Page:                  page,
		route:                 sel.Routes.Checkout,
		historyRoute:          sel.Routes.OrderHistory,
		Title:                 s.Title.Target(),
		FirstName:             s.FirstName.Target(),
		LastName:              s.LastName.Target(),
		Company:               s.Company.Target(),
		Address1:              s.Address1.Target(),
		City:                  s.City.Target(),
		PostCode:              s.PostCode.Target(),
		Email:                 s.Email.Target(),
		Telephone:             s.Telephone.Target(),
		Country:               s.Country.Target(),
		Zone:                  s.Zone.Target(),
		Comment:               s.Comment.Target(),
		Agree:                 s.Agree.Target(),
		ConfirmOrderButton:    s.ConfirmOrder.Target(),
		SuccessHeading:        s.SuccessHeading.Target(),
		CheckoutLink:          s.CheckoutLink.Target(),
		GuestCheckout:         s.GuestCheckout.Target(),
		ButtonAccount:         s.ButtonAccount.Target(),
		ButtonGuest:           s.ButtonGuest.Target(),
		ButtonPaymentAddress:  s.ButtonPaymentAddress.Target(),
		ButtonShippingAddress: s.ButtonShippingAddress.Target(),
		ButtonShippingMethod:  s.ButtonShippingMethod.Target(),
		ButtonPaymentMethod:   s.ButtonPaymentMethod.Target(),
		HistoryLink:           s.HistoryLink.Target(),
		OrderTable:            s.OrderTable.Target(),
		OrderRows:             s.OrderRows.Target(),
	}
}

func (c *CheckoutPage) Open() error {
	return c.Navigate(c.route)
}

// ClickCheckoutLink follows the header checkout link.
func (c *CheckoutPage) ClickCheckoutLink() error {
	return c.ClickAndWaitForNavigation(c.CheckoutLink.First(), navigation(c.Page))
}

func (c *CheckoutPage) IsCheckoutPage() bool {
	return c.IsVisible(c.Title)
}

func (c *CheckoutPage) ChooseGuestCheckout() error {
	return c.Click(c.GuestCheckout)
}

// The checkout is one page of collapsible steps; each continue button posts
// its step and reveals the next.
func (c *CheckoutPage) continueStep(button browser.Target) error {
	if err := c.Click(button); err != nil {
		return err
	}
	return c.WaitForSettled(navigation(c.Page))
}

func (c *CheckoutPage) ContinueAccount() error {
	return c.continueStep(c.ButtonAccount)
}

func (c *CheckoutPage) ContinueGuest() error {
	return c.continueStep(c.ButtonGuest)
}

func (c *CheckoutPage) ContinuePaymentAddress() error {
	return c.continueStep(c.ButtonPaymentAddress)
}

func (c *CheckoutPage) ContinueShippingAddress() error {
	return c.continueStep(c.ButtonShippingAddress)
}

func (c *CheckoutPage) ContinueShippingMethod() error {
	return c.continueStep(c.ButtonShippingMethod)
}

func (c *CheckoutPage) ContinuePaymentMethod() error {
	return c.continueStep(c.ButtonPaymentMethod)
}

func (c *CheckoutPage) FillFirstName(s string) error { return c.Fill(c.FirstName, s) }
func (c *CheckoutPage) FillLastName(s string) error  { return c.Fill(c.LastName, s) }
func (c *CheckoutPage) FillCompany(s string) error   { return c.Fill(c.Company, s) }
func (c *CheckoutPage) FillAddress1(s string) error  { return c.Fill(c.Address1, s) }
func (c *CheckoutPage) FillCity(s string) error      { return c.Fill(c.City, s) }
func (c *CheckoutPage) FillPostCode(s string) error  { return c.Fill(c.PostCode, s) }
func (c *CheckoutPage) FillEmail(s string) error     { return c.Fill(c.Email, s) }
func (c *CheckoutPage) FillTelephone(s string) error { return c.Fill(c.Telephone, s) }
func (c *CheckoutPage) FillComment(s string) error   { return c.Fill(c.Comment, s) }

func (c *CheckoutPage) SelectCountry(label string) error {
	return c.SelectOption(c.Country, label)
}

// SelectZone picks a region. Zones load after the country changes, so the
// navigation timeout bounds the wait for the option.
func (c *CheckoutPage) SelectZone(label string) error {
	return c.SelectOption(c.Zone, label, navigation(c.Page))
}

// FillAddress fills the payment address form, skipping empty optional
// fields, then picks country and zone.
func (c *CheckoutPage) FillAddress(a Address) error {
	fields := []struct {
		fill  func(string) error
		value string
	}{
		{c.FillFirstName, a.FirstName},
		{c.FillLastName, a.LastName},
		{c.FillCompany, a.Company},
		{c.FillAddress1, a.Address1},
		{c.FillCity, a.City},
		{c.FillPostCode, a.PostCode},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := f.fill(f.value); err != nil {
			return err
		}
	}
	if a.Country != "" {
		if err := c.SelectCountry(a.Country); err != nil {
			return err
		}
	}
	if a.Zone != "" {
		if err := c.SelectZone(a.Zone); err != nil {
			return err
		}
	}
	return nil
}

// AgreeToTerms ticks the terms checkbox unless it already is.
func (c *CheckoutPage) AgreeToTerms() error {
	checked, err := c.IsChecked(c.Agree)
	if err != nil {
		return err
	}
	if checked {
		return nil
	}
	return c.Click(c.Agree)
}

func (c *CheckoutPage) ConfirmOrder() error {
	return c.Click(c.ConfirmOrderButton)
}

// WaitForOrderSuccess waits for the success route and its heading.
func (c *CheckoutPage) WaitForOrderSuccess() error {
	if err := c.WaitForURL(orderSuccessURL, navigation(c.Page)); err != nil {
		return err
	}
	return c.WaitVisible(c.SuccessHeading, navigation(c.Page))
}

func (c *CheckoutPage) IsOrderPlaced() bool {
	return c.IsVisible(c.SuccessHeading)
}

// GoToOrderHistory follows the history link on the success page, or opens
// the history route when the link is not there.
func (c *CheckoutPage) GoToOrderHistory() error {
	if c.IsVisible(c.HistoryLink) {
		return c.ClickAndWaitForNavigation(c.HistoryLink, navigation(c.Page))
	}
	return c.Navigate(c.historyRoute)
}

func (c *CheckoutPage) WaitForOrderTable() error {
	return c.WaitVisible(c.OrderTable, navigation(c.Page))
}

func (c *CheckoutPage) OrderCount() (int, error) {
	return c.Count(c.OrderRows)
}
