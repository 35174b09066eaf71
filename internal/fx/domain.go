package fx

import (
	"errors"
	"math"
	"strings"
	"time"
)

// BaseCurrency is the home currency all rates are quoted against.
// Its implied rate is exactly 1 and is never fetched from storage.
const BaseCurrency = "ZMW"

var (
	// ErrBadRate indicates a rate that is not a finite positive number.
	ErrBadRate = errors.New("fx: rate must be a finite positive number")
	// ErrUnknownCurrency indicates no stored rate for the requested code.
	ErrUnknownCurrency = errors.New("fx: unknown currency")
)

// Rate is a quote expressed as ZMW per 1 unit of the foreign currency.
type Rate struct {
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	AsOf      time.Time `json:"as_of"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsBase reports whether code refers to the home currency.
func IsBase(code string) bool {
	return NormalizeCurrency(code) == BaseCurrency
}

// ValidateRate rejects zero, negative, NaN and infinite rates.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return ErrBadRate
	}
	return nil
}
