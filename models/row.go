package models

import (
	"strconv"
)

// PersistedRow is a snapshot row read back from storage. Values went through a
// tabular round trip, so any field may be missing, empty, or non-numeric.
type PersistedRow map[string]any

// Text renders a field as text. Missing and nil fields render as "".
func (r PersistedRow) Text(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// PositiveInt returns the field as an integer only when its text is made of
// ASCII digits alone and the value is greater than zero.
func (r PersistedRow) PositiveInt(field string) (int, bool) {
	s := r.Text(field)
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FilterRows keeps the rows belonging to one complex and trade type.
func FilterRows(rows []PersistedRow, complexID string, tradeType TradeType) []PersistedRow {
	out := make([]PersistedRow, 0, len(rows))
	for _, r := range rows {
		if r.Text("complex_id") == complexID && r.Text("trade_type") == string(tradeType) {
			out = append(out, r)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
