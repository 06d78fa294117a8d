package storage

import (
	"strconv"

	"naver-land-tracker/models"
)

// snapshotColumns is the header row of every snapshot, in storage order.
var snapshotColumns = []string{
	"listing_id",
	"complex_id",
	"trade_type",
	"date",
	"price",
	"monthly_rent",
	"area_m2",
	"floor",
	"total_floors",
	"direction",
	"article_name",
	"agent_name",
	"confirmed_type",
	"description",
	"tags",
}

func listingToRow(l *models.Listing) []string {
	return []string{
		l.ID,
		l.ComplexID,
		string(l.TradeType),
		l.Date,
		strconv.Itoa(l.Price),
		strconv.Itoa(l.MonthlyRent),
		strconv.FormatFloat(l.AreaM2, 'f', -1, 64),
		strconv.Itoa(l.Floor),
		strconv.Itoa(l.TotalFloors),
		l.Direction,
		l.Name,
		l.AgentName,
		l.ConfirmedType,
		l.Description,
		l.Tags,
	}
}
