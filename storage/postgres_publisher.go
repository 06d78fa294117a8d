package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

const maxLowestListingRunes = 2000

// PostgresPublisher upserts daily summaries into PostgreSQL.
type PostgresPublisher struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresPublisher opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresPublisher.
func NewPostgresPublisher(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresPublisher, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: 10,
		Backoff:     utils.LinearBackoff(time.Second),
		Logger:      logger,
	}
	if err := retry.Do(ctx, "postgres-ping", func(int) error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pp := &PostgresPublisher{db: db, logger: logger}
	if err := pp.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pp, nil
}

func (pp *PostgresPublisher) migrate(ctx context.Context) error {
	_, err := pp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS complex_summaries (
			id                   SERIAL PRIMARY KEY,
			name                 TEXT          NOT NULL,
			complex_id           VARCHAR(32)   NOT NULL,
			summary_date         DATE          NOT NULL,
			trade_type           VARCHAR(8)    NOT NULL,
			total_listings       INTEGER       NOT NULL DEFAULT 0,
			new_listings         INTEGER       NOT NULL DEFAULT 0,
			removed_listings     INTEGER       NOT NULL DEFAULT 0,
			avg_price            NUMERIC(14,0) NOT NULL DEFAULT 0,
			avg_price_change     NUMERIC(14,0) NOT NULL DEFAULT 0,
			avg_price_change_pct NUMERIC(8,1)  NOT NULL DEFAULT 0,
			min_price            BIGINT        NOT NULL DEFAULT 0,
			min_price_change     BIGINT        NOT NULL DEFAULT 0,
			lowest_listing       TEXT          NOT NULL DEFAULT '',
			updated_at           TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (complex_id, summary_date, trade_type)
		);

		CREATE INDEX IF NOT EXISTS idx_summaries_date ON complex_summaries(summary_date);
	`)
	return err
}

// Publish upserts summaries in batches. Re-running a day overwrites its rows.
func (pp *PostgresPublisher) Publish(ctx context.Context, summaries []*models.ComplexSummary) error {
	if len(summaries) == 0 {
		pp.logger.Info("[postgres] No summaries to write")
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(summaries); i += batchSize {
		end := i + batchSize
		if end > len(summaries) {
			end = len(summaries)
		}
		if err := pp.upsertBatch(ctx, summaries[i:end]); err != nil {
			return err
		}
	}

	pp.logger.Info("[postgres] Upserted %d summaries", len(summaries))
	return nil
}

const summaryColumnCount = 13

func (pp *PostgresPublisher) upsertBatch(ctx context.Context, batch []*models.ComplexSummary) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*summaryColumnCount)

	for idx, s := range batch {
		base := idx * summaryColumnCount
		ph := make([]string, summaryColumnCount)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, summaryArgs(s)...)
	}

	query := fmt.Sprintf(`
		INSERT INTO complex_summaries (
			name, complex_id, summary_date, trade_type,
			total_listings, new_listings, removed_listings,
			avg_price, avg_price_change, avg_price_change_pct,
			min_price, min_price_change, lowest_listing
		)
		VALUES %s
		ON CONFLICT (complex_id, summary_date, trade_type) DO UPDATE SET
			name                 = EXCLUDED.name,
			total_listings       = EXCLUDED.total_listings,
			new_listings         = EXCLUDED.new_listings,
			removed_listings     = EXCLUDED.removed_listings,
			avg_price            = EXCLUDED.avg_price,
			avg_price_change     = EXCLUDED.avg_price_change,
			avg_price_change_pct = EXCLUDED.avg_price_change_pct,
			min_price            = EXCLUDED.min_price,
			min_price_change     = EXCLUDED.min_price_change,
			lowest_listing       = EXCLUDED.lowest_listing,
			updated_at           = NOW()
	`, strings.Join(valueStrings, ","))

	if _, err := pp.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
	}
	return nil
}

// summaryArgs applies the publish-time rounding: averages to whole 만원,
// the percentage to one decimal, ties to even.
func summaryArgs(s *models.ComplexSummary) []any {
	return []any{
		s.Key(),
		s.ComplexID,
		s.Date,
		string(s.TradeType),
		s.TotalListings,
		s.NewListings,
		s.RemovedListings,
		utils.RoundFloat(s.AvgPrice, 0),
		utils.RoundFloat(s.AvgPriceChange, 0),
		utils.RoundFloat(s.AvgPriceChangePct, 1),
		s.MinPrice,
		s.MinPriceChange,
		truncateRunes(s.LowestListing, maxLowestListingRunes),
	}
}

// FetchByDate reads back the summaries published for date.
func (pp *PostgresPublisher) FetchByDate(ctx context.Context, date string) ([]*models.ComplexSummary, error) {
	rows, err := pp.db.QueryContext(ctx, `
		SELECT complex_id, to_char(summary_date, 'YYYY-MM-DD'), trade_type,
		       total_listings, new_listings, removed_listings,
		       avg_price, avg_price_change, avg_price_change_pct,
		       min_price, min_price_change, lowest_listing
		FROM complex_summaries
		WHERE summary_date = $1
		ORDER BY complex_id, trade_type
	`, date)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch %s: %w", date, err)
	}
	defer rows.Close()

	var out []*models.ComplexSummary
	for rows.Next() {
		s := &models.ComplexSummary{}
		var tradeType string
		var avg, change, pct decimal.Decimal
		if err := rows.Scan(
			&s.ComplexID, &s.Date, &tradeType,
			&s.TotalListings, &s.NewListings, &s.RemovedListings,
			&avg, &change, &pct,
			&s.MinPrice, &s.MinPriceChange, &s.LowestListing,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		s.TradeType = models.TradeType(tradeType)
		s.AvgPrice = avg.InexactFloat64()
		s.AvgPriceChange = change.InexactFloat64()
		s.AvgPriceChangePct = pct.InexactFloat64()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (pp *PostgresPublisher) Close() error {
	return pp.db.Close()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
