// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max inclusive.
func IntBetween(min, max int) int64 {
	return int64(min) + Intn(max-min+1)
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	k := len(set)

	for i := 0; i < n; i++ {
		c := set[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// Username generates a random login name.
func Username() string {
	return String(8)
}

// PayeeName generates a random payee name of two words.
func PayeeName() string {
	return capitalize(String(6)) + " " + capitalize(String(8))
}

func capitalize(s string) string {
	return strings.ToUpper(s[:1]) + s[1:]
}

// ChequeNumber generates a random cheque serial number.
func ChequeNumber() string {
	return "CHQ-" + fromSet(digits, 10)
}

// MoneyAmountBetween generates a random amount of money between min and max with 2 decimals.
func MoneyAmountBetween(min, max int64) decimal.Decimal {
	cents := IntBetween(int(min*100), int(max*100))
	return decimal.New(cents, -2)
}

// Currency generates a random currency code.
func Currency() string {
	currencies := []string{"JOD", "USD", "EUR"}
	return currencies[Intn(len(currencies))]
}

// Date generates a random calendar date (UTC midnight) within the last year.
func Date() time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -int(Intn(365)))
}
