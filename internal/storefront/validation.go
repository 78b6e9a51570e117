package storefront

import (
	"net/mail"
	"unicode/utf8"
)

// Validation messages of a stock OpenCart 3 storefront.
const (
	msgFirstName  = "First Name must be between 1 and 32 characters!"
	msgLastName   = "Last Name must be between 1 and 32 characters!"
	msgEmail      = "E-Mail Address does not appear to be valid!"
	msgTelephone  = "Telephone must be between 3 and 32 characters!"
	msgPassword   = "Password must be between 4 and 20 characters!"
	msgConfirm    = "Password confirmation does not match password!"
	msgAgree      = "Warning: You must agree to the Privacy Policy!"
	msgRegistered = "Warning: E-Mail Address is already registered!"
	msgNoMatch    = "Warning: No match for E-Mail Address and/or Password."
)

// RegisterForm is a submitted registration.
type RegisterForm struct {
	FirstName string
	LastName  string
	Email     string
	Telephone string
	Password  string
	Confirm   string
	Agree     bool
}

// Validate returns per-field errors keyed by input name, and a form-level
// warning.
func (f RegisterForm) Validate() (errs map[string]string, warning string) {
	errs = map[string]string{}
	between := func(s string, lo, hi int) bool {
		n := utf8.RuneCountInString(s)
		return n >= lo && n <= hi
	}
	if !between(f.FirstName, 1, 32) {
		errs["firstname"] = msgFirstName
	}
	if !between(f.LastName, 1, 32) {
		errs["lastname"] = msgLastName
	}
	if !validEmail(f.Email) {
		errs["email"] = msgEmail
	}
	if !between(f.Telephone, 3, 32) {
		errs["telephone"] = msgTelephone
	}
	if !between(f.Password, 4, 20) {
		errs["password"] = msgPassword
	}
	if f.Confirm != f.Password {
		errs["confirm"] = msgConfirm
	}
	if !f.Agree {
		warning = msgAgree
	}
	return errs, warning
}

func validEmail(s string) bool {
	if len(s) > 96 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
