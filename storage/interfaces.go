package storage

import (
	"context"

	"naver-land-tracker/models"
)

// SnapshotStore persists the daily listing snapshots that deltas are computed against.
type SnapshotStore interface {
	// WriteSnapshot replaces the snapshot of date with listings.
	WriteSnapshot(ctx context.Context, date string, listings []*models.Listing) error
	// ReadRows returns the stored rows of one complex and trade type. A date
	// without a snapshot yields an empty slice, not an error.
	ReadRows(ctx context.Context, date, complexID string, tradeType models.TradeType) ([]models.PersistedRow, error)
	Close() error
}

// SummaryPublisher upserts summaries keyed by (complex_id, date, trade_type).
type SummaryPublisher interface {
	Publish(ctx context.Context, summaries []*models.ComplexSummary) error
	Close() error
}
