// Package validatorpkg configures go-playground/validator for the app types
// and turns validation failures into human readable messages.
package validatorpkg

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-petr/cheque-desk/pkg/currencypkg"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money limits for a single amount.
var (
	MinAmount = decimal.New(1, -2)
	MaxAmount = decimal.RequireFromString("999999999999.99")
)

// MoneyScale is the number of fractional digits an amount may carry.
const MoneyScale = 2

// Magnitude limits checked before any arithmetic on an amount.
const (
	maxAmountExponent = 12
	minAmountExponent = -(MoneyScale + 10)
	maxAmountBits     = 128
)

// Bounded reports whether d is small enough in exponent and digits to be compared cheaply.
// Amounts outside these bounds can never pass ValidMoneyRange.
func Bounded(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxAmountExponent || exp < minAmountExponent {
		return false
	}

	return d.Coefficient().BitLen() <= maxAmountBits
}

// MoneyRangeMsg is the message for an amount outside MinAmount and MaxAmount.
func MoneyRangeMsg(label string) string {
	return fmt.Sprintf("%s must be between %s and %s", label, MinAmount.StringFixed(MoneyScale), MaxAmount.StringFixed(MoneyScale))
}

// New returns a validator that reports json field names and knows the
// currency, money_range and money_scale tags.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if !Bounded(d) {
				return ""
			}

			return d.String()
		}

		return nil
	}, decimal.Decimal{})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("currency", currencypkg.ValidCurrency)
	_ = v.RegisterValidation("money_range", ValidMoneyRange)
	_ = v.RegisterValidation("money_scale", ValidMoneyScale)

	return v
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// ValidMoneyRange validates that the amount lies within MinAmount and MaxAmount.
var ValidMoneyRange validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}

	return d.GreaterThanOrEqual(MinAmount) && d.LessThanOrEqual(MaxAmount)
}

// ValidMoneyScale validates that the amount has at most MoneyScale fractional digits.
var ValidMoneyScale validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}

	return d.Equal(d.Truncate(MoneyScale))
}

// Label converts a json field name into a display label: payee_name -> Payee name.
func Label(field string) string {
	if field == "" {
		return ""
	}

	label := strings.ReplaceAll(field, "_", " ")

	return strings.ToUpper(label[:1]) + label[1:]
}

// GetErrorMsg returns the message for a single failed validation.
func GetErrorMsg(fe validator.FieldError) string {
	label := Label(fe.Field())

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "alphanum":
		return label + " must contain only letters and digits"
	case "currency":
		return label + " must be a 3-letter currency code"
	case "money_range":
		return MoneyRangeMsg(label)
	case "money_scale":
		return fmt.Sprintf("%s must have at most %d decimal places", label, MoneyScale)
	case "oneof":
		return label + " has an unknown value"
	case "gtefield", "gtfield":
		return fmt.Sprintf("%s must not be before %s", label, Label(fe.Param()))
	}

	return label + " is invalid"
}
