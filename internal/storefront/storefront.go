// Package storefront serves a small OpenCart-shaped shop: home, search and
// the account pages. It speaks the same routes and markup as the real
// storefront, so page objects and journeys can run against it locally.
package storefront

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "OCSESSID"

// Product is a catalogue entry.
type Product struct {
	ID    int
	Name  string
	Price string
}

// DefaultCatalogue mirrors the demo storefront's featured products.
var DefaultCatalogue = []Product{
	{ID: 43, Name: "MacBook", Price: "$602.00"},
	{ID: 40, Name: "iPhone", Price: "$123.20"},
	{ID: 42, Name: "Apple Cinema 30\"", Price: "$110.00"},
	{ID: 30, Name: "Canon EOS 5D", Price: "$98.00"},
	{ID: 44, Name: "MacBook Air", Price: "$1,202.00"},
	{ID: 45, Name: "MacBook Pro", Price: "$2,000.00"},
}

const featuredCount = 4

type pageData struct {
	Title         string
	LoggedIn      bool
	Search        string
	Products      []Product
	Form          RegisterForm
	Errors        map[string]string
	Warning       string
	SubmitDelayMS int64
	Heading       string
	Paragraphs    []string
}

// Storefront is the http.Handler of the stub shop.
type Storefront struct {
	templates   map[string]*template.Template
	customers   *CustomerStore
	sessions    *SessionStore
	catalogue   []Product
	submitDelay time.Duration
	logger      *zap.Logger
}

// New parses the embedded templates.
func New(cfg *config.StorefrontConfig, logger *zap.Logger) (*Storefront, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Storefront{
		templates:   map[string]*template.Template{},
		customers:   NewCustomerStore(),
		sessions:    NewSessionStore(),
		catalogue:   DefaultCatalogue,
		submitDelay: cfg.SubmitDelay,
		logger:      logger,
	}
	for _, name := range []string{"home", "search", "register", "login", "message"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		s.templates[name] = tmpl
	}
	return s, nil
}

// Customers exposes the account store.
func (s *Storefront) Customers() *CustomerStore { return s.customers }

// ServeHTTP dispatches on the route query parameter like OpenCart's
// index.php.
func (s *Storefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.php" {
		s.notFound(w, r)
		return
	}
	switch route := r.URL.Query().Get("route"); route {
	case "", "common/home":
		s.home(w, r)
	case "product/search":
		s.search(w, r)
	case "account/register":
		s.register(w, r)
	case "account/success":
		s.render(w, r, http.StatusOK, "message", pageData{
			Title:      "Your Account Has Been Created!",
			Heading:    "Your Account Has Been Created!",
			Paragraphs: []string{"Congratulations! Your new account has been successfully created!"},
		})
	case "account/login":
		s.login(w, r)
	case "account/account":
		s.account(w, r)
	case "account/order":
		s.orders(w, r)
	case "account/logout":
		s.logout(w, r)
	default:
		s.notFound(w, r)
	}
}

func (s *Storefront) home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, r, http.StatusOK, "home", pageData{
		Title:    "Your Store",
		Products: s.catalogue[:min(featuredCount, len(s.catalogue))],
	})
}

func (s *Storefront) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	term := strings.TrimSpace(r.URL.Query().Get("search"))
	var hits []Product
	if term != "" {
		for _, p := range s.catalogue {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
				hits = append(hits, p)
			}
		}
	}
	s.render(w, r, http.StatusOK, "search", pageData{
		Title:    "Search - " + term,
		Search:   term,
		Products: hits,
	})
}

func (s *Storefront) register(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Register Account", SubmitDelayMS: s.submitDelay.Milliseconds()}
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, http.StatusOK, "register", data)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := RegisterForm{
		FirstName: strings.TrimSpace(r.PostForm.Get("firstname")),
		LastName:  strings.TrimSpace(r.PostForm.Get("lastname")),
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		Telephone: strings.TrimSpace(r.PostForm.Get("telephone")),
		Password:  r.PostForm.Get("password"),
		Confirm:   r.PostForm.Get("confirm"),
		Agree:     r.PostForm.Get("agree") != "",
	}
	errs, warning := form.Validate()
	if warning == "" && s.customers.Exists(form.Email) {
		warning = msgRegistered
	}
	if len(errs) > 0 || warning != "" {
		data.Form, data.Errors, data.Warning = form, errs, warning
		data.SubmitDelayMS = 0
		s.render(w, r, http.StatusOK, "register", data)
		return
	}

	c, err := s.customers.Register(Customer{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Telephone: form.Telephone,
	}, form.Password)
	if err != nil {
		data.Form, data.Warning = form, msgRegistered
		s.render(w, r, http.StatusOK, "register", data)
		return
	}
	s.logger.Info("Customer registered.", zap.String("customer_id", c.ID), zap.String("email", c.Email))
	s.startSession(w, c)
	http.Redirect(w, r, "/index.php?route=account/success", http.StatusFound)
}

func (s *Storefront) login(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Account Login"}
	switch r.Method {
	case http.MethodGet:
		if _, ok := s.current(r); ok {
			http.Redirect(w, r, "/index.php?route=account/account", http.StatusFound)
			return
		}
		s.render(w, r, http.StatusOK, "login", data)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	c, ok := s.customers.Authenticate(email, r.PostForm.Get("password"))
	if !ok {
		data.Form.Email, data.Warning = email, msgNoMatch
		s.render(w, r, http.StatusOK, "login", data)
		return
	}
	s.logger.Info("Customer logged in.", zap.String("customer_id", c.ID))
	s.startSession(w, c)
	http.Redirect(w, r, "/index.php?route=account/account", http.StatusFound)
}

func (s *Storefront) account(w http.ResponseWriter, r *http.Request) {
	c, ok := s.current(r)
	if !ok {
		http.Redirect(w, r, "/index.php?route=account/login", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "message", pageData{
		Title:      "My Account",
		Heading:    "My Account",
		Paragraphs: []string{"Welcome back, " + c.FirstName + "."},
	})
}

func (s *Storefront) orders(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.current(r); !ok {
		http.Redirect(w, r, "/index.php?route=account/login", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "message", pageData{
		Title:      "Order History",
		Heading:    "Order History",
		Paragraphs: []string{"You have not made any previous orders!"},
	})
}

func (s *Storefront) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.End(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	// The response below must render logged out.
	r.Header.Del("Cookie")
	s.render(w, r, http.StatusOK, "message", pageData{
		Title:      "Account Logout",
		Heading:    "Account Logout",
		Paragraphs: []string{"You have been logged off your account. It is now safe to leave the computer."},
	})
}

func (s *Storefront) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "message", pageData{
		Title:      "Page not found!",
		Heading:    "Page not found!",
		Paragraphs: []string{"The page you requested cannot be found."},
	})
}

func (s *Storefront) startSession(w http.ResponseWriter, c *Customer) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.sessions.Start(c),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Storefront) current(r *http.Request) (*Customer, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Customer(cookie.Value)
}

func (s *Storefront) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	_, data.LoggedIn = s.current(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates[name].ExecuteTemplate(w, name+".html", data); err != nil {
		s.logger.Error("Failed to render template.", zap.String("template", name), zap.Error(err))
	}
}
