package models

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point scale of every Gold Token amount.
const Decimals int32 = 18

var ErrInvalidUnits = errors.New("invalid units")

// MaxAmount is the largest amount or supply the ledger holds: 2^256 - 1 base units.
var MaxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 0)

// ParseUnits converts a human readable amount ("100", "0.5") into integral
// base units at the given scale. Amounts with more fractional digits than the
// scale allows are rejected rather than rounded.
func ParseUnits(value string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidUnits, err)
	}
	units := d.Shift(decimals)
	if !units.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidUnits, value, decimals)
	}
	return units, nil
}

// MustParseUnits is ParseUnits for constants known to be valid.
func MustParseUnits(value string, decimals int32) decimal.Decimal {
	units, err := ParseUnits(value, decimals)
	if err != nil {
		panic(err)
	}
	return units
}

// FormatUnits renders base units as a decimal string at the given scale.
func FormatUnits(units decimal.Decimal, decimals int32) string {
	return units.Shift(-decimals).String()
}
