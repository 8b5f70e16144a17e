// Package validate provides the input-validation helpers shared with
// the client: format checks for emails, Italian fiscal documents,
// phone numbers and URLs, a configurable password-strength check,
// string sanitization and flattening of structured validation errors.
//
// All functions are pure.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator"
)

var (
	emailRe      = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	fiscalCodeRe = regexp.MustCompile(`^[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]$`)
	vatRe        = regexp.MustCompile(`^\d{11}$`)
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
	phoneRe      = regexp.MustCompile(`^\+?\d{6,15}$`)
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidFiscalCode reports whether s is a well-formed Italian codice
// fiscale (16 characters, surname/name/date/place pattern). Case
// insensitive.
func IsValidFiscalCode(s string) bool {
	return fiscalCodeRe.MatchString(strings.ToUpper(s))
}

// IsValidVAT reports whether s is a well-formed partita IVA (11 digits).
func IsValidVAT(s string) bool {
	return vatRe.MatchString(s)
}

// IsValidPostalCode reports whether s is a well-formed CAP (5 digits).
func IsValidPostalCode(s string) bool {
	return postalCodeRe.MatchString(s)
}

// IsValidPhone reports whether s is a plausible phone number, after
// stripping spaces, dots and dashes.
func IsValidPhone(s string) bool {
	cleaned := strings.NewReplacer(" ", "", ".", "", "-", "").Replace(s)
	return phoneRe.MatchString(cleaned)
}

// IsValidURL reports whether s parses as an absolute http(s) URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeString escapes the characters & < > " ' so the value can be
// embedded in HTML without injection.
func SanitizeString(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	).Replace(s)
}

// PasswordPolicy configures ValidatePassword. Zero values fall back to
// the defaults: minimum length 8, upper-case, lower-case and digit
// required.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase *bool
	RequireLowercase *bool
	RequireNumber    *bool
}

// PasswordResult lists the policy rules a password violated.
type PasswordResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

func policyDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// ValidatePassword checks pw against the policy and returns every
// violated rule as a message.
func ValidatePassword(pw string, policy PasswordPolicy) PasswordResult {
	minLength := policy.MinLength
	if minLength == 0 {
		minLength = 8
	}

	var errs []string
	if len(pw) < minLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", minLength))
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if policyDefault(policy.RequireUppercase) && !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if policyDefault(policy.RequireLowercase) && !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if policyDefault(policy.RequireNumber) && !hasNumber {
		errs = append(errs, "password must contain a number")
	}

	return PasswordResult{IsValid: len(errs) == 0, Errors: errs}
}

// FlattenErrors turns structured validator errors into a
// field -> messages map for the JSON error envelope.
func FlattenErrors(errs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("field %s is a required field", field)
		case "min":
			msg = fmt.Sprintf("field %s is too short", field)
		case "max":
			msg = fmt.Sprintf("field %s is too long", field)
		case "gt":
			msg = fmt.Sprintf("field %s must be greater than %s", field, err.Param())
		case "email":
			msg = fmt.Sprintf("field %s must be a valid email", field)
		case "oneof":
			msg = fmt.Sprintf("field %s must be one of: %s", field, err.Param())
		default:
			msg = fmt.Sprintf("field %s is not valid", field)
		}
		out[field] = append(out[field], msg)
	}
	return out
}
