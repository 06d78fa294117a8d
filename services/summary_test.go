package services

import (
	"math"
	"reflect"
	"testing"

	"naver-land-tracker/models"
)

const testDate = "2026-10-18"

func listing(id string, price int) *models.Listing {
	return &models.Listing{ID: id, ComplexID: "8928", TradeType: models.TradeSale, Price: price}
}

func row(id string, price any) models.PersistedRow {
	return models.PersistedRow{"listing_id": id, "complex_id": "8928", "trade_type": "A1", "price": price}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizeScenario(t *testing.T) {
	today := []*models.Listing{listing("1", 100), listing("2", 200)}
	yesterday := []models.PersistedRow{row("2", "150"), row("3", "300")}

	s := Summarize("8928", models.TradeSale, testDate, today, yesterday)

	if s.NewListings != 1 || s.RemovedListings != 1 {
		t.Errorf("new/removed: got %d/%d, want 1/1", s.NewListings, s.RemovedListings)
	}
	if s.TotalListings != 2 {
		t.Errorf("TotalListings: got %d, want 2", s.TotalListings)
	}
	if !approx(s.AvgPrice, 150) {
		t.Errorf("AvgPrice: got %f, want 150", s.AvgPrice)
	}
	if s.MinPrice != 100 {
		t.Errorf("MinPrice: got %d, want 100", s.MinPrice)
	}
	if !approx(s.AvgPriceChange, -75) {
		t.Errorf("AvgPriceChange: got %f, want -75", s.AvgPriceChange)
	}
	if s.AvgPriceChangePct != -33.3 {
		t.Errorf("AvgPriceChangePct: got %v, want -33.3", s.AvgPriceChangePct)
	}
	if s.MinPriceChange != -50 {
		t.Errorf("MinPriceChange: got %d, want -50", s.MinPriceChange)
	}
	if s.ComplexID != "8928" || s.TradeType != models.TradeSale || s.Date != testDate {
		t.Errorf("identity: got %s", s.Key())
	}
}

func TestSummarizeSetArithmetic(t *testing.T) {
	cases := []struct {
		name      string
		today     []string
		yesterday []string
	}{
		{"disjoint", []string{"a", "b"}, []string{"c"}},
		{"identical", []string{"a", "b"}, []string{"b", "a"}},
		{"overlap", []string{"a", "b", "c"}, []string{"b", "c", "d", "e"}},
		{"today empty", nil, []string{"a"}},
		{"yesterday empty", []string{"a"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var today []*models.Listing
			for _, id := range tc.today {
				today = append(today, listing(id, 100))
			}
			var yesterday []models.PersistedRow
			for _, id := range tc.yesterday {
				yesterday = append(yesterday, row(id, "100"))
			}

			common := 0
			for _, a := range tc.today {
				for _, b := range tc.yesterday {
					if a == b {
						common++
					}
				}
			}

			s := Summarize("8928", models.TradeSale, testDate, today, yesterday)
			if s.NewListings+common != len(tc.today) {
				t.Errorf("new(%d) + common(%d) != |today|(%d)", s.NewListings, common, len(tc.today))
			}
			if s.RemovedListings+common != len(tc.yesterday) {
				t.Errorf("removed(%d) + common(%d) != |yesterday|(%d)", s.RemovedListings, common, len(tc.yesterday))
			}
		})
	}
}

func TestSummarizeEmptyToday(t *testing.T) {
	yesterday := []models.PersistedRow{row("1", "100"), row("2", "200"), row("", "300"), {"price": "50"}}

	s := Summarize("8928", models.TradeSale, testDate, nil, yesterday)

	if s.AvgPrice != 0 || s.MinPrice != 0 || s.LowestListing != "" {
		t.Errorf("expected zero price stats, got avg=%f min=%d lowest=%q", s.AvgPrice, s.MinPrice, s.LowestListing)
	}
	if s.RemovedListings != 2 {
		t.Errorf("RemovedListings: got %d, want 2 (rows without id excluded)", s.RemovedListings)
	}
	if s.NewListings != 0 || s.TotalListings != 0 {
		t.Errorf("new/total: got %d/%d, want 0/0", s.NewListings, s.TotalListings)
	}
}

func TestSummarizeEmptyYesterday(t *testing.T) {
	today := []*models.Listing{listing("1", 100), listing("2", 300), listing("2", 300)}

	s := Summarize("8928", models.TradeSale, testDate, today, nil)

	if s.AvgPriceChange != s.AvgPrice {
		t.Errorf("AvgPriceChange: got %f, want avg %f", s.AvgPriceChange, s.AvgPrice)
	}
	if s.AvgPriceChangePct != 0 {
		t.Errorf("AvgPriceChangePct: got %f, want 0", s.AvgPriceChangePct)
	}
	if s.NewListings != 2 {
		t.Errorf("NewListings: got %d, want 2 distinct ids", s.NewListings)
	}
	if s.RemovedListings != 0 {
		t.Errorf("RemovedListings: got %d, want 0", s.RemovedListings)
	}
	if s.MinPriceChange != 100 {
		t.Errorf("MinPriceChange: got %d, want 100", s.MinPriceChange)
	}
}

func TestSummarizeIgnoresZeroPrices(t *testing.T) {
	base := []*models.Listing{listing("1", 100), listing("2", 200)}
	withZeros := append([]*models.Listing{listing("z1", 0)}, base...)
	withZeros = append(withZeros, listing("z2", 0), listing("z3", 0))

	a := Summarize("8928", models.TradeSale, testDate, base, nil)
	b := Summarize("8928", models.TradeSale, testDate, withZeros, nil)

	if a.AvgPrice != b.AvgPrice || a.MinPrice != b.MinPrice || a.LowestListing != b.LowestListing {
		t.Errorf("zero prices changed stats: %+v vs %+v", a, b)
	}
	if b.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5 (zero prices still counted)", b.TotalListings)
	}
}

func TestSummarizeYesterdayCoercion(t *testing.T) {
	yesterday := []models.PersistedRow{
		row("1", "100"),
		row("2", 300),
		row("3", ""),
		row("4", "abc"),
		row("5", "-10"),
		row("6", "0"),
		row("7", "1.5"),
		row("8", nil),
		{"listing_id": "9"},
	}

	s := Summarize("8928", models.TradeSale, testDate, []*models.Listing{listing("1", 200)}, yesterday)

	// only "100" and 300 survive coercion
	if !approx(s.AvgPriceChange, 0) {
		t.Errorf("AvgPriceChange: got %f, want 0 (yesterday avg 200)", s.AvgPriceChange)
	}
	if s.MinPriceChange != 100 {
		t.Errorf("MinPriceChange: got %d, want 100", s.MinPriceChange)
	}
	if s.RemovedListings != 8 {
		t.Errorf("RemovedListings: got %d, want 8", s.RemovedListings)
	}
}

func TestSummarizeLowestListing(t *testing.T) {
	today := []*models.Listing{
		{ID: "1", Price: 0, Floor: 1, AreaM2: 10, AgentName: "zero"},
		{ID: "2", Price: 98000, Floor: 2, AreaM2: 59.9, AgentName: "한국부동산"},
		{ID: "3", Price: 98000, Floor: 9, AreaM2: 84, AgentName: "second"},
		{ID: "4", Price: 120000, Floor: 5, AreaM2: 84.9, AgentName: "하나부동산"},
	}

	s := Summarize("8928", models.TradeSale, testDate, today, nil)
	want := "2층 / 59.9㎡ / 98000만원 / 한국부동산"
	if s.LowestListing != want {
		t.Errorf("LowestListing: got %q, want %q", s.LowestListing, want)
	}
}

func TestSummarizeLowestListingMonthlyRent(t *testing.T) {
	today := []*models.Listing{
		{ID: "1", TradeType: models.TradeMonthlyRent, Price: 10000, MonthlyRent: 80, Floor: 4, AreaM2: 59.9, AgentName: "한국부동산"},
		{ID: "2", TradeType: models.TradeMonthlyRent, Price: 5000, MonthlyRent: 120, Floor: 8, AreaM2: 85, AgentName: "하나부동산"},
	}

	s := Summarize("8928", models.TradeMonthlyRent, testDate, today, nil)
	want := "8층 / 85.0㎡ / 5000만원/120만원 / 하나부동산"
	if s.LowestListing != want {
		t.Errorf("LowestListing: got %q, want %q", s.LowestListing, want)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	today := []*models.Listing{listing("1", 100), listing("2", 250), listing("4", 0)}
	yesterday := []models.PersistedRow{row("2", "150"), row("3", "300")}

	a := Summarize("8928", models.TradeSale, testDate, today, yesterday)
	b := Summarize("8928", models.TradeSale, testDate, today, yesterday)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Summarize not deterministic: %+v vs %+v", a, b)
	}
}

func TestSummarizePctRounding(t *testing.T) {
	today := []*models.Listing{listing("1", 1000)}
	yesterday := []models.PersistedRow{row("1", "3")}

	s := Summarize("8928", models.TradeSale, testDate, today, yesterday)
	// (1000-3)/3*100 = 33233.333...
	if s.AvgPriceChangePct != 33233.3 {
		t.Errorf("AvgPriceChangePct: got %v, want 33233.3", s.AvgPriceChangePct)
	}
	if !approx(s.AvgPriceChange, 997) {
		t.Errorf("AvgPriceChange: got %f, want 997", s.AvgPriceChange)
	}
}

func TestSummarizePctRoundsTiesToEven(t *testing.T) {
	today := []*models.Listing{listing("1", 401)}
	yesterday := []models.PersistedRow{row("1", "400")}

	s := Summarize("8928", models.TradeSale, testDate, today, yesterday)
	// 1/400*100 is exactly 0.25
	if s.AvgPriceChangePct != 0.2 {
		t.Errorf("AvgPriceChangePct: got %v, want 0.2", s.AvgPriceChangePct)
	}
}

func TestFormatArea(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{84.9, "84.9"},
		{85, "85.0"},
		{0, "0.0"},
		{59.97, "59.97"},
	}
	for _, tt := range tests {
		if got := formatArea(tt.in); got != tt.want {
			t.Errorf("formatArea(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
