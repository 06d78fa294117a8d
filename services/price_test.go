package services

import (
	"testing"

	"naver-land-tracker/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw       string
		tradeType models.TradeType
		wantPrice int
		wantRent  int
	}{
		{"15억", models.TradeSale, 150000, 0},
		{"15억 5000", models.TradeSale, 155000, 0},
		{"15억5,000", models.TradeSale, 155000, 0},
		{"5,000", models.TradeSale, 5000, 0},
		{"5000", models.TradeJeonse, 5000, 0},
		{"5,000/50", models.TradeMonthlyRent, 5000, 50},
		{"1억/120", models.TradeMonthlyRent, 10000, 120},
		{" 3억 2,000 / 85 ", models.TradeMonthlyRent, 32000, 85},
		{"", models.TradeSale, 0, 0},
		{"   ", models.TradeMonthlyRent, 0, 0},
		{"garbage", models.TradeSale, 0, 0},
	}

	for _, tt := range tests {
		price, rent := ParsePrice(tt.raw, tt.tradeType)
		if price != tt.wantPrice || rent != tt.wantRent {
			t.Errorf("ParsePrice(%q, %s) = (%d, %d); want (%d, %d)",
				tt.raw, tt.tradeType, price, rent, tt.wantPrice, tt.wantRent)
		}
	}
}

func TestParsePriceEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		tradeType models.TradeType
		wantPrice int
		wantRent  int
	}{
		{"bare marker", "7억", models.TradeSale, 70000, 0},
		{"non-numeric remainder", "7억abc", models.TradeSale, 70000, 0},
		{"second marker in remainder", "7억3억", models.TradeSale, 70000, 0},
		{"missing eok digits", "억5000", models.TradeSale, 0, 0},
		{"negative plain", "-500", models.TradeSale, 0, 0},
		{"negative eok", "-2억", models.TradeSale, 0, 0},
		{"negative remainder ignored", "2억-500", models.TradeSale, 20000, 0},
		{"overflow", "99999999999999999999", models.TradeSale, 0, 0},
		{"eok overflow", "9999999999999999억", models.TradeSale, 0, 0},
		{"slash outside monthly rent", "5,000/50", models.TradeSale, 0, 0},
		{"rent garbage", "5000/abc", models.TradeMonthlyRent, 5000, 0},
		{"extra separator", "5000/50/10", models.TradeMonthlyRent, 5000, 0},
		{"empty deposit", "/50", models.TradeMonthlyRent, 0, 50},
		{"decimal", "12.5", models.TradeSale, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, rent := ParsePrice(tt.raw, tt.tradeType)
			if price != tt.wantPrice || rent != tt.wantRent {
				t.Errorf("ParsePrice(%q, %s) = (%d, %d); want (%d, %d)",
					tt.raw, tt.tradeType, price, rent, tt.wantPrice, tt.wantRent)
			}
		})
	}
}

func FuzzParsePriceNeverNegative(f *testing.F) {
	for _, seed := range []string{"15억 5000", "5,000/50", "", "garbage", "-1억", "억"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		for _, tt := range []models.TradeType{models.TradeSale, models.TradeJeonse, models.TradeMonthlyRent} {
			price, rent := ParsePrice(raw, tt)
			if price < 0 || rent < 0 {
				t.Errorf("ParsePrice(%q, %s) = (%d, %d); want non-negative", raw, tt, price, rent)
			}
			if !tt.HasMonthlyRent() && rent != 0 {
				t.Errorf("ParsePrice(%q, %s) rent = %d; want 0", raw, tt, rent)
			}
		}
	})
}
