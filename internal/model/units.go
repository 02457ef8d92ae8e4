package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fixed-point precision of each asset kind's display unit.
const (
	NativePrecision int32 = 12 // 1 XCH = 10^12 mojo
	TokenPrecision  int32 = 3  // 1 CAT = 1000 mojo
	NFTPrecision    int32 = 0
)

// Precision returns the number of decimal places between the display unit
// and the smallest on-chain unit.
func (k AssetKind) Precision() int32 {
	switch k {
	case KindNative:
		return NativePrecision
	case KindToken:
		return TokenPrecision
	case KindNFT:
		return NFTPrecision
	default:
		return 0
	}
}

// ToSmallest converts a display amount into smallest units. The conversion
// must be exact.
func ToSmallest(kind AssetKind, display decimal.Decimal) (decimal.Decimal, error) {
	v := display.Shift(kind.Precision())
	if !v.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %s has more than %d decimal places", display, kind.Precision())
	}
	return v.Truncate(0), nil
}

// ToDisplay converts smallest units back to the display unit.
func ToDisplay(kind AssetKind, smallest decimal.Decimal) decimal.Decimal {
	return smallest.Shift(-kind.Precision())
}
