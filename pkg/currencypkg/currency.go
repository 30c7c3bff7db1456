// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Constants for the well known currencies.
const (
	JOD = "JOD"
	USD = "USD"
	EUR = "EUR"
)

// Default is the currency used when none is given.
const Default = JOD

// Normalize trims the currency code and converts it to upper case.
func Normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// IsValidCode returns true if the code is made of exactly three latin letters.
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}

	return true
}

// ValidCurrency validates whether the field holds a currency code.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return IsValidCode(c)
	}

	return false
}
