// Package validation holds the input rules shared by every form of the
// account API: password policy, strength scoring, the mobile number pattern,
// display-text sanitising, and translation of binding failures into
// field-level errors.
package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/user-center/pkg/response"
)

const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8
	// MinResetStrength is the strength score a reset password must reach
	MinResetStrength = 3
	// MaxSecretBytes is the longest secret bcrypt accepts, in UTF-8 bytes
	MaxSecretBytes = 72
)

var (
	mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	textPolicy    = bluemonday.StrictPolicy()
	registerOnce  sync.Once
)

// IsMobile reports whether s is a valid mainland mobile number
func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// MeetsPasswordPolicy requires MinPasswordLength characters with at least
// one uppercase letter, one lowercase letter and one digit.
func MeetsPasswordPolicy(pw string) bool {
	if len([]rune(pw)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// StrengthScore awards one point each for length >= 8, a lowercase letter,
// an uppercase letter, a digit and a character outside [A-Za-z0-9].
func StrengthScore(pw string) int {
	score := 0
	if len([]rune(pw)) >= MinPasswordLength {
		score++
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			score++
		}
	}
	return score
}

// FitsSecret reports whether s is short enough to be hashed
func FitsSecret(s string) bool {
	return len(s) <= MaxSecretBytes
}

// SanitizeText strips markup from user-supplied display text and trims it.
// Entity-encoded markup is decoded before sanitising so it is stripped too.
func SanitizeText(s string) string {
	clean := html.UnescapeString(textPolicy.Sanitize(html.UnescapeString(s)))
	return strings.TrimFunc(clean, unicode.IsSpace)
}

// RegisterGinValidators installs the custom rules on gin's validator engine.
// Safe to call more than once.
func RegisterGinValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return IsMobile(fl.Field().String())
		})
		_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
			return MeetsPasswordPolicy(fl.Field().String())
		})
		_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
			return StrengthScore(fl.Field().String()) >= MinResetStrength
		})
		_ = v.RegisterValidation("secret_bytes", func(fl validator.FieldLevel) bool {
			return FitsSecret(fl.Field().String())
		})
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// FieldErrors translates a binding error into field-level messages.
// Errors that are not validation failures become a single "body" entry.
func FieldErrors(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{{Field: "body", Message: "malformed request body"}}
	}

	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return "please enter a valid email address"
	case "mobile":
		return "please enter a valid mobile number"
	case "eqfield":
		return "passwords do not match"
	case "password_policy":
		return fmt.Sprintf("password must be at least %d characters and contain an uppercase letter, a lowercase letter and a digit", MinPasswordLength)
	case "password_strength":
		return "password is too weak: use at least three of length 8+, lowercase, uppercase, digit, special character"
	case "secret_bytes":
		return fmt.Sprintf("%s must be at most %d bytes", field, MaxSecretBytes)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
