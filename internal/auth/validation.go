package auth

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidationErrors carries the itemized messages returned to the client on a
// rejected registration.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateRegisterInput checks the register payload and returns every
// violation found, not just the first.
func ValidateRegisterInput(name, email, password string) ValidationErrors {
	var errs ValidationErrors

	if name == "" {
		errs = append(errs, "Name is required")
	}

	if email == "" {
		errs = append(errs, "Email is required")
	} else if !emailPattern.MatchString(email) {
		errs = append(errs, "Invalid email format")
	}

	if len(password) < 8 {
		errs = append(errs, "Password is required and should be at least 8 characters long")
	} else if !strongPassword(password) {
		errs = append(errs, "Password must include at least one lowercase letter, one uppercase letter, one number, and one special character.")
	}

	return errs
}

// strongPassword requires lower, upper, digit and a special character. RE2
// has no lookahead, so the policy is spelled out per character class.
func strongPassword(pw string) bool {
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
