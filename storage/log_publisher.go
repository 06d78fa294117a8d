package storage

import (
	"context"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

// LogPublisher is the dry-run publisher: it logs what would be upserted.
type LogPublisher struct {
	logger *utils.Logger
}

// NewLogPublisher creates a LogPublisher that writes to logger.
func NewLogPublisher(logger *utils.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs one line per summary. It never fails.
func (lp *LogPublisher) Publish(_ context.Context, summaries []*models.ComplexSummary) error {
	for _, s := range summaries {
		lp.logger.Info("[dry-run] would upsert %q total=%d new=%d removed=%d avg=%.0f min=%d",
			s.Key(), s.TotalListings, s.NewListings, s.RemovedListings, s.AvgPrice, s.MinPrice)
	}
	return nil
}

// Close is a no-op.
func (lp *LogPublisher) Close() error { return nil }
