package utils

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// RoundFloat rounds x to places decimals the way Python's round() does: the
// exact binary value is rounded and exact ties go to the even digit, so 0.25
// becomes 0.2 and 150.5 becomes 150. Non-finite input rounds to zero.
func RoundFloat(x float64, places int) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(x, 'f', places, 64))
	if err != nil {
		return decimal.Zero
	}
	return d
}
