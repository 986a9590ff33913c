// Package validation holds the form rules shared by the CLI and the mock API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// PasswordPolicy describes the password rule to users
const PasswordPolicy = "password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a digit and one of @$!%*?&_"

var (
	// Go's regexp has no lookahead, so the class checks run separately.
	passwordChars = regexp.MustCompile(`^[A-Za-z\d@$!%*?&_]{8,}$`)
	phonePattern  = regexp.MustCompile(`^\+?\d{11}$`)
)

// New returns a validator with the custom food tags registered
func New() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

// Register adds the custom tags to an existing validator (e.g. gin's engine)
func Register(v *validator.Validate) {
	v.RegisterValidation("foodpassword", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	v.RegisterValidation("foodphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(NormalizePhone(fl.Field().String()))
	})
	v.RegisterValidation("fooddate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
}

// ValidPassword checks the registration password policy
func ValidPassword(password string) bool {
	if !passwordChars.MatchString(password) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
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

// ParseDate accepts a calendar date (YYYY-MM-DD) or a full RFC 3339 timestamp
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// NormalizePhone keeps only digits and '+', the form the service stores
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a phone number as +7 (xxx) xxx-xx-xx. Numbers that do
// not fit are returned as given.
func FormatPhone(phone string) string {
	digits := strings.TrimPrefix(NormalizePhone(phone), "+")
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, "7") {
		digits = "7" + digits
	}
	if len(digits) > 11 {
		digits = digits[:11]
	}
	if len(digits) != 11 {
		return phone
	}
	return fmt.Sprintf("+%s (%s) %s-%s-%s", digits[:1], digits[1:4], digits[4:7], digits[7:9], digits[9:11])
}

// Errors converts validator errors into one readable message
func Errors(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldError converts a single FieldError into a human-readable message
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "foodpassword":
		return PasswordPolicy
	case "foodphone":
		return field + " must be a phone number like +7 (xxx) xxx-xx-xx"
	case "fooddate":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
