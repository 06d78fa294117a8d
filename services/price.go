package services

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"naver-land-tracker/models"
)

const (
	// eokMarker multiplies the number in front of it by eokUnit 만원.
	eokMarker = "억"
	eokUnit   = 10000

	rentSeparator = "/"
)

// ParsePrice converts a portal price string into 만원 amounts.
//
//	"15억"      → (150000, 0)
//	"15억 5000" → (155000, 0)
//	"5,000"     → (5000, 0)
//	"5,000/50"  → (5000, 50) for monthly-rent trade types
//
// Malformed input yields zeros rather than an error.
func ParsePrice(raw string, tradeType models.TradeType) (price, monthlyRent int) {
	s := normalisePrice(raw)
	if s == "" {
		return 0, 0
	}

	if tradeType.HasMonthlyRent() && strings.Contains(s, rentSeparator) {
		parts := strings.SplitN(s, rentSeparator, 2)
		return parseAmount(parts[0]), parseAmount(parts[1])
	}

	return parseAmount(s), 0
}

// parseAmount parses one amount in 억/만원 notation. s is already normalised.
func parseAmount(s string) int {
	if s == "" {
		return 0
	}

	if strings.Contains(s, eokMarker) {
		// only the first marker splits; a remainder holding another 억 is dropped
		parts := strings.SplitN(s, eokMarker, 2)
		eok, ok := parseNonNegative(parts[0])
		if !ok || eok > math.MaxInt64/eokUnit {
			return 0
		}
		total := eok * eokUnit
		if rest := parts[1]; rest != "" && isASCIIDigits(rest) {
			if remainder, ok := parseNonNegative(rest); ok && total <= math.MaxInt64-remainder {
				total += remainder
			}
		}
		return int(total)
	}

	n, ok := parseNonNegative(s)
	if !ok {
		return 0
	}
	return int(n)
}

func parseNonNegative(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt {
		return 0, false
	}
	return n, true
}

// normalisePrice drops whitespace and thousands separators.
func normalisePrice(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, raw)
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
