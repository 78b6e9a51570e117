package pages

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// Selector is a target expression in the syntax browser.Parse accepts.
type Selector string

// Target parses s. Selectors are validated when loaded, so a failure here is
// a programming error.
func (s Selector) Target() browser.Target { return browser.MustParse(string(s)) }

// Routes are the storefront paths the page objects navigate to.
type Routes struct {
	Home         string `yaml:"home"`
	Register     string `yaml:"register"`
	Login        string `yaml:"login"`
	Account      string `yaml:"account"`
	OrderHistory string `yaml:"order_history"`
	Cart         string `yaml:"cart"`
	Checkout     string `yaml:"checkout"`
	Laptops      string `yaml:"laptops"`
}

type HomeSelectors struct {
	Logo             Selector `yaml:"logo"`
	SearchInput      Selector `yaml:"search_input"`
	SearchButton     Selector `yaml:"search_button"`
	MyAccount        Selector `yaml:"my_account"`
	RegisterLink     Selector `yaml:"register_link"`
	LoginLink        Selector `yaml:"login_link"`
	CartButton       Selector `yaml:"cart_button"`
	FeaturedProducts Selector `yaml:"featured_products"`
	LaptopsMenu      Selector `yaml:"laptops_menu"`
	ShowAllLaptops   Selector `yaml:"show_all_laptops"`
}

type SearchSelectors struct {
	Results       Selector `yaml:"results"`
	ProductTitles Selector `yaml:"product_titles"`
	NoResults     Selector `yaml:"no_results"`
	Heading       Selector `yaml:"heading"`
	Content       Selector `yaml:"content"`
	SearchInput   Selector `yaml:"search_input"`
	SearchButton  Selector `yaml:"search_button"`
}

type ProductSelectors struct {
	AddToCart        Selector `yaml:"add_to_cart"`
	Title            Selector `yaml:"title"`
	Price            Selector `yaml:"price"`
	Quantity         Selector `yaml:"quantity"`
	SuccessAlert     Selector `yaml:"success_alert"`
	Thumbs           Selector `yaml:"thumbs"`
	Links            Selector `yaml:"links"`
	ListingAddToCart Selector `yaml:"listing_add_to_cart"`
}

type CartSelectors struct {
	CartButton     Selector `yaml:"cart_button"`
	CartTotal      Selector `yaml:"cart_total"`
	Dropdown       Selector `yaml:"dropdown"`
	ViewCart       Selector `yaml:"view_cart"`
	Checkout       Selector `yaml:"checkout"`
	Table          Selector `yaml:"table"`
	Rows           Selector `yaml:"rows"`
	ProductNames   Selector `yaml:"product_names"`
	ProductPrices  Selector `yaml:"product_prices"`
	QuantityInputs Selector `yaml:"quantity_inputs"`
	UpdateButtons  Selector `yaml:"update_buttons"`
	RemoveButtons  Selector `yaml:"remove_buttons"`
	TotalRow       Selector `yaml:"total_row"`
	EmptyMessage   Selector `yaml:"empty_message"`
}

type CheckoutSelectors struct {
	Title                 Selector `yaml:"title"`
	FirstName             Selector `yaml:"first_name"`
	LastName              Selector `yaml:"last_name"`
	Company               Selector `yaml:"company"`
	Address1              Selector `yaml:"address_1"`
	City                  Selector `yaml:"city"`
	PostCode              Selector `yaml:"post_code"`
	Email                 Selector `yaml:"email"`
	Telephone             Selector `yaml:"telephone"`
	Country               Selector `yaml:"country"`
	Zone                  Selector `yaml:"zone"`
	Comment               Selector `yaml:"comment"`
	Agree                 Selector `yaml:"agree"`
	ConfirmOrder          Selector `yaml:"confirm_order"`
	SuccessHeading        Selector `yaml:"success_heading"`
	CheckoutLink          Selector `yaml:"checkout_link"`
	GuestCheckout         Selector `yaml:"guest_checkout"`
	ButtonAccount         Selector `yaml:"button_account"`
	ButtonGuest           Selector `yaml:"button_guest"`
	ButtonPaymentAddress  Selector `yaml:"button_payment_address"`
	ButtonShippingAddress Selector `yaml:"button_shipping_address"`
	ButtonShippingMethod  Selector `yaml:"button_shipping_method"`
	ButtonPaymentMethod   Selector `yaml:"button_payment_method"`
	HistoryLink           Selector `yaml:"history_link"`
	OrderTable            Selector `yaml:"order_table"`
	OrderRows             Selector `yaml:"order_rows"`
}

type AccountSelectors struct {
	FirstName       Selector `yaml:"first_name"`
	LastName        Selector `yaml:"last_name"`
	Email           Selector `yaml:"email"`
	Telephone       Selector `yaml:"telephone"`
	Password        Selector `yaml:"password"`
	ConfirmPassword Selector `yaml:"confirm_password"`
	Agree           Selector `yaml:"agree"`
	Continue        Selector `yaml:"continue"`
	LoginButton     Selector `yaml:"login_button"`
	Success         Selector `yaml:"success"`
	FieldErrors     Selector `yaml:"field_errors"`
	Warning         Selector `yaml:"warning"`
	Heading         Selector `yaml:"heading"`
	Logout          Selector `yaml:"logout"`
}

// Selectors is the per-deployment lookup table behind every page object.
type Selectors struct {
	Routes   Routes            `yaml:"routes"`
	Home     HomeSelectors     `yaml:"home"`
	Search   SearchSelectors   `yaml:"search"`
	Product  ProductSelectors  `yaml:"product"`
	Cart     CartSelectors     `yaml:"cart"`
	Checkout CheckoutSelectors `yaml:"checkout"`
	Account  AccountSelectors  `yaml:"account"`
}

// DefaultSelectors matches a stock OpenCart 3 storefront.
func DefaultSelectors() *Selectors {
	return &Selectors{
		Routes: Routes{
			Home:         "/",
			Register:     "/index.php?route=account/register",
			Login:        "/index.php?route=account/login",
			Account:      "/index.php?route=account/account",
			OrderHistory: "/index.php?route=account/order",
			Cart:         "/index.php?route=checkout/cart",
			Checkout:     "/index.php?route=checkout/checkout",
			Laptops:      "/index.php?route=product/category&path=18",
		},
		Home: HomeSelectors{
			Logo:             "#logo",
			SearchInput:      `input[name="search"]`,
			SearchButton:     "#search button",
			MyAccount:        ".dropdown >> text=My Account",
			RegisterLink:     "text=Register",
			LoginLink:        "text=Login",
			CartButton:       "#cart",
			FeaturedProducts: ".product-layout",
			LaptopsMenu:      `a.dropdown-toggle:has-text("Laptops & Notebooks")`,
			ShowAllLaptops:   `a.see-all:has-text("Show All Laptops & Notebooks")`,
		},
		Search: SearchSelectors{
			Results:       ".product-layout.product-grid",
			ProductTitles: ".product-thumb h4 a",
			NoResults:     `#content p:has-text("no product")`,
			Heading:       "#content h1",
			Content:       "#content",
			SearchInput:   `input[name="search"] >> nth=0`,
			SearchButton:  "#search button >> nth=0",
		},
		Product: ProductSelectors{
			AddToCart:        "#button-cart",
			Title:            "h1",
			Price:            ".list-unstyled li h2",
			Quantity:         "#input-quantity",
			SuccessAlert:     ".alert-success",
			Thumbs:           ".product-thumb",
			Links:            ".product-thumb h4 a",
			ListingAddToCart: `button:has-text("Add to Cart")`,
		},
		Cart: CartSelectors{
			CartButton:     "#cart",
			CartTotal:      "#cart-total",
			Dropdown:       ".dropdown-menu.pull-right",
			ViewCart:       "text=View Cart",
			Checkout:       "text=Checkout >> nth=0",
			Table:          ".table-responsive",
			Rows:           "tbody tr",
			ProductNames:   "tbody tr td:nth-child(2) a",
			ProductPrices:  "tbody tr td:nth-child(6)",
			QuantityInputs: `input[name^="quantity"]`,
			UpdateButtons:  `button[data-original-title="Update"]`,
			RemoveButtons:  `button[data-original-title="Remove"]`,
			TotalRow:       ".table-bordered tr >> nth=-1",
			EmptyMessage:   "text=Your shopping cart is empty!",
		},
		Checkout: CheckoutSelectors{
			Title:                 `span:has-text("Checkout")`,
			FirstName:             "#input-payment-firstname",
			LastName:              "#input-payment-lastname",
			Company:               "#input-payment-company",
			Address1:              "#input-payment-address-1",
			City:                  "#input-payment-city",
			PostCode:              "#input-payment-postcode",
			Email:                 `role=textbox[name="* E-Mail"i]`,
			Telephone:             `role=textbox[name="* Telephone"i]`,
			Country:               "#input-payment-country",
			Zone:                  "#input-payment-zone",
			Comment:               `textarea[name="comment"]`,
			Agree:                 `input[name="agree"]`,
			ConfirmOrder:          `role=button[name="Confirm Order"i]`,
			SuccessHeading:        `role=heading[name="Your order has been placed!"i]`,
			CheckoutLink:          `role=link[name="Checkout"i]`,
			GuestCheckout:         `role=radio[name="Guest Checkout"i]`,
			ButtonAccount:         "#button-account",
			ButtonGuest:           "#button-guest",
			ButtonPaymentAddress:  "#button-payment-address",
			ButtonShippingAddress: "#button-shipping-address",
			ButtonShippingMethod:  "#button-shipping-method",
			ButtonPaymentMethod:   "#button-payment-method",
			HistoryLink:           `role=link[name="history"s]`,
			OrderTable:            "table.table",
			OrderRows:             "table.table tbody tr",
		},
		Account: AccountSelectors{
			FirstName:       "#input-firstname",
			LastName:        "#input-lastname",
			Email:           "#input-email",
			Telephone:       "#input-telephone",
			Password:        "#input-password",
			ConfirmPassword: "#input-confirm",
			Agree:           `input[name="agree"]`,
			Continue:        `role=button[name="Continue"i]`,
			LoginButton:     `role=button[name="Login"s]`,
			Success:         "text=successfully created",
			FieldErrors:     ".text-danger",
			Warning:         ".alert-danger",
			Heading:         "h1",
			Logout:          `a:has-text("Logout")`,
		},
	}
}

// LoadSelectors returns the defaults with the keys present in the YAML file
// at path laid over them. An empty path yields the defaults.
func LoadSelectors(path string) (*Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selectors file: %w", err)
	}
	if err := yaml.Unmarshal(data, sel); err != nil {
		return nil, fmt.Errorf("failed to parse selectors file %s: %w", path, err)
	}
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("selectors file %s: %w", path, err)
	}
	return sel, nil
}

// Validate checks that every selector parses and every route is set.
func (s *Selectors) Validate() error {
	var errs []error
	walk(reflect.ValueOf(s).Elem(), "", func(name string, v reflect.Value) {
		switch v.Kind() {
		case reflect.String:
			if v.String() == "" {
				errs = append(errs, fmt.Errorf("%s is required", name))
				return
			}
			if v.Type() == reflect.TypeOf(Selector("")) {
				if _, err := browser.Parse(v.String()); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
				}
			}
		}
	})
	return errors.Join(errs...)
}

func walk(v reflect.Value, prefix string, visit func(name string, v reflect.Value)) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get("yaml")
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			walk(v.Field(i), name, visit)
			continue
		}
		visit(name, v.Field(i))
	}
}
