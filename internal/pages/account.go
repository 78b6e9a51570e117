package pages

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// loginProbeTimeout bounds IsLoggedIn.
const loginProbeTimeout = 2 * time.Second

var accountURL = regexp.MustCompile(`account/account`)

// Registration is the data the register form takes.
type Registration struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Telephone string `yaml:"telephone"`
	Password  string `yaml:"password"`
}

type AccountPage struct {
	*browser.Page
	registerRoute string
	loginRoute    string
	accountRoute  string

	FirstName       browser.Target
	LastName        browser.Target
	Email           browser.Target
	Telephone       browser.Target
	Password        browser.Target
	ConfirmPassword browser.Target
	Agree           browser.Target
	ContinueButton  browser.Target
	LoginButton     browser.Target
	Success         browser.Target
	FieldErrors     browser.Target
	Warning         browser.Target
	HeadingText     browser.Target
	LogoutLink      browser.Target
}

func NewAccountPage(page *browser.Page, sel *Selectors) *AccountPage {
	s := sel.Account
	return &AccountPage{
		Page:            page,
		registerRoute:   sel.Routes.Register,
		loginRoute:      sel.Routes.Login,
		accountRoute:    sel.Routes.Account,
		FirstName:       s.FirstName.Target(),
		LastName:        s.LastName.Target(),
		Email:           s.Email.Target(),
		Telephone:       s.Telephone.Target(),
		Password:        s.Password.Target(),
		ConfirmPassword: s.ConfirmPassword.Target(),
		Agree:           s.Agree.Target(),
		ContinueButton:  s.Continue.Target(),
		LoginButton:     s.LoginButton.Target(),
		Success:         s.Success.Target(),
		FieldErrors:     s.FieldErrors.Target(),
		Warning:         s.Warning.Target(),
		HeadingText:     s.Heading.Target(),
		LogoutLink:      s.Logout.Target(),
	}
}

// Open loads the registration form.
func (a *AccountPage) Open() error {
	return a.Navigate(a.registerRoute)
}

func (a *AccountPage) OpenLogin() error {
	return a.Navigate(a.loginRoute)
}

func (a *AccountPage) OpenAccount() error {
	return a.Navigate(a.accountRoute)
}

func (a *AccountPage) FillFirstName(s string) error       { return a.Fill(a.FirstName, s) }
func (a *AccountPage) FillLastName(s string) error        { return a.Fill(a.LastName, s) }
func (a *AccountPage) FillEmail(s string) error           { return a.Fill(a.Email, s) }
func (a *AccountPage) FillTelephone(s string) error       { return a.Fill(a.Telephone, s) }
func (a *AccountPage) FillPassword(s string) error        { return a.Fill(a.Password, s) }
func (a *AccountPage) FillConfirmPassword(s string) error { return a.Fill(a.ConfirmPassword, s) }

func (a *AccountPage) FirstNameValue() (string, error) { return a.InputValue(a.FirstName) }
func (a *AccountPage) EmailValue() (string, error)     { return a.InputValue(a.Email) }

// AgreeToTerms clicks the privacy policy checkbox. It toggles; use
// IsAgreeChecked to read the result.
func (a *AccountPage) AgreeToTerms() error {
	return a.Click(a.Agree)
}

func (a *AccountPage) IsAgreeChecked() (bool, error) {
	return a.IsChecked(a.Agree)
}

// Continue submits the current form and waits for the success message or
// the page to settle.
func (a *AccountPage) Continue() error {
	return a.Submit(a.ContinueButton, a.Success, navigation(a.Page))
}

// FillRegistration fills the form without submitting it. Empty fields are
// left untouched so a journey can leave required fields blank.
func (a *AccountPage) FillRegistration(r Registration) error {
	fields := []struct {
		fill  func(string) error
		value string
	}{
		{a.FillFirstName, r.FirstName},
		{a.FillLastName, r.LastName},
		{a.FillEmail, r.Email},
		{a.FillTelephone, r.Telephone},
		{a.FillPassword, r.Password},
		{a.FillConfirmPassword, r.Password},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := f.fill(f.value); err != nil {
			return err
		}
	}
	return nil
}

// Register opens the form, fills r, accepts the policy and submits.
func (a *AccountPage) Register(r Registration) error {
	if err := a.Open(); err != nil {
		return err
	}
	if err := a.FillRegistration(r); err != nil {
		return err
	}
	checked, err := a.IsAgreeChecked()
	if err != nil {
		return err
	}
	if !checked {
		if err := a.AgreeToTerms(); err != nil {
			return err
		}
	}
	return a.Continue()
}

// Login opens the login form and submits the credentials.
func (a *AccountPage) Login(email, password string) error {
	if err := a.OpenLogin(); err != nil {
		return err
	}
	if err := a.FillEmail(email); err != nil {
		return err
	}
	if err := a.FillPassword(password); err != nil {
		return err
	}
	return a.Submit(a.LoginButton, a.LogoutLink.Visible(), navigation(a.Page))
}

func (a *AccountPage) Logout() error {
	return a.ClickAndWaitForNavigation(a.LogoutLink.Visible().First(), navigation(a.Page))
}

// IsLoggedIn probes for a visible logout link. The header menu carries a
// hidden one on every page. It never fails.
func (a *AccountPage) IsLoggedIn() bool {
	return a.IsVisible(a.LogoutLink.Visible(), browser.WithTimeout(loginProbeTimeout))
}

// VerifyRegistered reports whether the account exists. It trusts a visible
// success message, and otherwise logs in with the credentials and checks
// that the account page is reached.
func (a *AccountPage) VerifyRegistered(email, password string) (bool, error) {
	if a.IsSuccessMessageVisible() {
		return true, nil
	}
	a.Logger().Warn("Registration success message not shown, verifying by login.", zap.String("email", email))
	if a.IsLoggedIn() {
		if err := a.Logout(); err != nil {
			return false, err
		}
	}
	if err := a.Login(email, password); err != nil {
		return false, err
	}
	if err := a.WaitForURL(accountURL, navigation(a.Page)); err != nil {
		if browser.IsTimeout(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *AccountPage) IsSuccessMessageVisible() bool {
	return a.IsVisible(a.Success)
}

func (a *AccountPage) SuccessMessage() (string, error) {
	return a.GetText(a.Success)
}

// HasFieldErrors reports whether any field validation message is present.
func (a *AccountPage) HasFieldErrors() (bool, error) {
	n, err := a.Count(a.FieldErrors)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FieldErrorMessages returns every field validation message on the form.
func (a *AccountPage) FieldErrorMessages() ([]string, error) {
	return a.AllTexts(a.FieldErrors)
}

func (a *AccountPage) FieldErrorMessage() (string, error) {
	return a.GetText(a.FieldErrors)
}

func (a *AccountPage) IsWarningVisible() bool {
	return a.IsVisible(a.Warning)
}

func (a *AccountPage) WarningMessage() (string, error) {
	return a.GetText(a.Warning)
}

func (a *AccountPage) Heading() (string, error) {
	return a.GetText(a.HeadingText)
}
