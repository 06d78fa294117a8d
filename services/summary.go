package services

import (
	"fmt"
	"strconv"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

// Summarize compares today's listings of one complex and trade type with
// yesterday's stored rows for the same pair.
//
// It never fails: missing yesterday data is an empty baseline and listings
// without a parsed price (Price == 0) are left out of every price statistic.
// AvgPriceChangePct is 0 both when yesterday had no priced rows and when the
// average did not move.
func Summarize(complexID string, tradeType models.TradeType, date string,
	today []*models.Listing, yesterday []models.PersistedRow) *models.ComplexSummary {

	todayIDs := make(map[string]struct{}, len(today))
	for _, l := range today {
		todayIDs[l.ID] = struct{}{}
	}
	yesterdayIDs := make(map[string]struct{}, len(yesterday))
	for _, r := range yesterday {
		if id := r.Text("listing_id"); id != "" {
			yesterdayIDs[id] = struct{}{}
		}
	}

	var todayPrices []int
	var lowest *models.Listing
	for _, l := range today {
		if l.Price <= 0 {
			continue
		}
		todayPrices = append(todayPrices, l.Price)
		// strict < keeps the first of equally cheap listings
		if lowest == nil || l.Price < lowest.Price {
			lowest = l
		}
	}

	var yesterdayPrices []int
	for _, r := range yesterday {
		if p, ok := r.PositiveInt("price"); ok {
			yesterdayPrices = append(yesterdayPrices, p)
		}
	}

	avg, min := priceStats(todayPrices)
	yAvg, yMin := priceStats(yesterdayPrices)

	change := avg - yAvg
	var changePct float64
	if yAvg != 0 {
		changePct = change / yAvg * 100
	}

	return &models.ComplexSummary{
		ComplexID:         complexID,
		TradeType:         tradeType,
		Date:              date,
		TotalListings:     len(today),
		NewListings:       countMissing(todayIDs, yesterdayIDs),
		RemovedListings:   countMissing(yesterdayIDs, todayIDs),
		AvgPrice:          avg,
		AvgPriceChange:    change,
		AvgPriceChangePct: utils.RoundFloat(changePct, 1).InexactFloat64(),
		MinPrice:          min,
		MinPriceChange:    min - yMin,
		LowestListing:     describeListing(lowest, tradeType),
	}
}

// priceStats returns the mean and minimum, or zeros for no prices.
func priceStats(prices []int) (avg float64, min int) {
	if len(prices) == 0 {
		return 0, 0
	}
	var sum int64
	min = prices[0]
	for _, p := range prices {
		sum += int64(p)
		if p < min {
			min = p
		}
	}
	return float64(sum) / float64(len(prices)), min
}

// countMissing counts the members of a absent from b.
func countMissing(a, b map[string]struct{}) int {
	n := 0
	for id := range a {
		if _, ok := b[id]; !ok {
			n++
		}
	}
	return n
}

// describeListing renders "{floor}층 / {area}㎡ / {price} / {agent}".
func describeListing(l *models.Listing, tradeType models.TradeType) string {
	if l == nil {
		return ""
	}
	price := fmt.Sprintf("%d만원", l.Price)
	if tradeType.HasMonthlyRent() {
		price = fmt.Sprintf("%d만원/%d만원", l.Price, l.MonthlyRent)
	}
	return fmt.Sprintf("%d층 / %s㎡ / %s / %s", l.Floor, formatArea(l.AreaM2), price, l.AgentName)
}

// formatArea prints the shortest decimal form and always keeps one fraction
// digit, so 85 renders as "85.0" and 84.93 as "84.93".
func formatArea(a float64) string {
	s := strconv.FormatFloat(a, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}
