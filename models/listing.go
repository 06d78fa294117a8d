package models

import (
	"fmt"
	"strings"
)

// TradeType is the portal's transaction category code.
type TradeType string

const (
	TradeSale        TradeType = "A1" // 매매
	TradeJeonse      TradeType = "B1" // 전세
	TradeMonthlyRent TradeType = "B2" // 월세
)

var tradeLabels = map[TradeType]string{
	TradeSale:        "매매",
	TradeJeonse:      "전세",
	TradeMonthlyRent: "월세",
}

// HasMonthlyRent reports whether prices of this trade type carry a monthly component.
func (t TradeType) HasMonthlyRent() bool {
	return t == TradeMonthlyRent
}

// Label returns the Korean label, or the raw code for unknown types.
func (t TradeType) Label() string {
	if l, ok := tradeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t TradeType) Valid() bool {
	_, ok := tradeLabels[t]
	return ok
}

// ParseTradeTypes converts codes like "A1" into TradeTypes, rejecting unknown ones.
func ParseTradeTypes(codes []string) ([]TradeType, error) {
	out := make([]TradeType, 0, len(codes))
	for _, c := range codes {
		t := TradeType(strings.ToUpper(strings.TrimSpace(c)))
		if !t.Valid() {
			return nil, fmt.Errorf("unknown trade type %q", c)
		}
		out = append(out, t)
	}
	return out, nil
}

// Listing is one normalized listing scraped today. Prices are in 만원.
// For TradeMonthlyRent, Price holds the deposit.
type Listing struct {
	ID        string
	ComplexID string
	TradeType TradeType
	Date      string

	Price       int
	MonthlyRent int

	AreaM2      float64
	Floor       int
	TotalFloors int
	Direction   string

	Name          string
	AgentName     string
	ConfirmedType string
	Description   string
	Tags          string
}

// ComplexSummary is the day-over-day summary for one complex and trade type.
// (ComplexID, TradeType, Date) is its natural key.
type ComplexSummary struct {
	ComplexID string
	TradeType TradeType
	Date      string

	TotalListings   int
	NewListings     int
	RemovedListings int

	AvgPrice          float64
	AvgPriceChange    float64
	AvgPriceChangePct float64

	MinPrice       int
	MinPriceChange int
	LowestListing  string
}

// Key renders the upsert key of the summary.
func (s *ComplexSummary) Key() string {
	return s.ComplexID + " - " + s.Date + " - " + string(s.TradeType)
}
