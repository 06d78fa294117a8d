package services

import (
	"strconv"
	"strings"
	"unicode"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

// Mapper transforms portal articles into normalized Listings.
type Mapper struct {
	logger *utils.Logger
}

// NewMapper creates a Mapper with the given logger.
func NewMapper(logger *utils.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// Map converts one page of articles. Articles without an articleNo and
// repeated articleNos are dropped.
func (m *Mapper) Map(articles []models.RawArticle, complexID string, tradeType models.TradeType, date string) []*models.Listing {
	seen := make(map[string]struct{}, len(articles))
	result := make([]*models.Listing, 0, len(articles))

	for _, a := range articles {
		id := strings.TrimSpace(a.ArticleNo.String())
		if id == "" {
			m.logger.Warn("[mapper] Dropping article without articleNo: %s", a.ArticleName)
			continue
		}
		if _, dup := seen[id]; dup {
			m.logger.Debug("[mapper] Duplicate article skipped: %s", id)
			continue
		}
		seen[id] = struct{}{}

		price, rent := ParsePrice(priceText(a, tradeType), tradeType)
		floor, total := parseFloorInfo(a.FloorInfo)

		result = append(result, &models.Listing{
			ID:            id,
			ComplexID:     complexID,
			TradeType:     tradeType,
			Date:          date,
			Price:         price,
			MonthlyRent:   rent,
			AreaM2:        parseArea(a),
			Floor:         floor,
			TotalFloors:   total,
			Direction:     normaliseText(a.Direction),
			Name:          normaliseText(a.ArticleName),
			AgentName:     normaliseText(a.RealtorName),
			ConfirmedType: a.ConfirmYmd.String(),
			Description:   normaliseText(a.FeatureDesc),
			Tags:          strings.Join(a.TagList, ","),
		})
	}

	if dropped := len(articles) - len(result); dropped > 0 {
		m.logger.Info("[mapper] complex=%s trade=%s mapped %d → %d articles (dropped %d)",
			complexID, tradeType, len(articles), len(result), dropped)
	}
	return result
}

// FromRow rebuilds a Listing from a stored snapshot row.
func (m *Mapper) FromRow(r models.PersistedRow) *models.Listing {
	area, _ := strconv.ParseFloat(r.Text("area_m2"), 64)
	price, _ := r.PositiveInt("price")
	rent, _ := r.PositiveInt("monthly_rent")
	floor, _ := strconv.Atoi(r.Text("floor"))
	total, _ := strconv.Atoi(r.Text("total_floors"))

	return &models.Listing{
		ID:            r.Text("listing_id"),
		ComplexID:     r.Text("complex_id"),
		TradeType:     models.TradeType(r.Text("trade_type")),
		Date:          r.Text("date"),
		Price:         price,
		MonthlyRent:   rent,
		AreaM2:        area,
		Floor:         floor,
		TotalFloors:   total,
		Direction:     r.Text("direction"),
		Name:          r.Text("article_name"),
		AgentName:     r.Text("agent_name"),
		ConfirmedType: r.Text("confirmed_type"),
		Description:   r.Text("description"),
		Tags:          r.Text("tags"),
	}
}

// priceText picks the price string of an article. Monthly-rent articles list
// the deposit and the rent separately, so they are joined as "deposit/rent".
func priceText(a models.RawArticle, tradeType models.TradeType) string {
	deal := strings.TrimSpace(a.DealOrWarrantPrc.String())
	rent := strings.TrimSpace(a.RentPrc.String())
	if deal == "" {
		return rent
	}
	if tradeType.HasMonthlyRent() && rent != "" && !strings.Contains(deal, rentSeparator) {
		return deal + rentSeparator + rent
	}
	return deal
}

func parseArea(a models.RawArticle) float64 {
	raw := a.Area2.String()
	if raw == "" {
		raw = a.Area1.String()
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "㎡", ""))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseFloorInfo splits "5/15" into floor and total floors. Named floors such
// as "저/15" keep 0 for the side that is not a number.
func parseFloorInfo(raw string) (floor, total int) {
	parts := strings.SplitN(raw, "/", 2)
	if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		floor = n
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			total = n
		}
	}
	return floor, total
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
