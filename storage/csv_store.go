package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

// CSVStore keeps one CSV file per snapshot date, {dir}/{date}.csv.
// It is safe for concurrent use.
type CSVStore struct {
	mu     sync.Mutex
	dir    string
	logger *utils.Logger
}

// NewCSVStore creates the snapshot directory if needed.
func NewCSVStore(dir string, logger *utils.Logger) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create snapshot dir: %w", err)
	}
	return &CSVStore{dir: dir, logger: logger}, nil
}

func (c *CSVStore) path(date string) string {
	return filepath.Join(c.dir, date+".csv")
}

// WriteSnapshot rewrites the file of date. With no listings an existing file
// is left alone so a failed scrape does not erase the day's data.
func (c *CSVStore) WriteSnapshot(ctx context.Context, date string, listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(listings) == 0 {
		c.logger.Info("[csv] No listings to write for %s", date)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, date+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(snapshotColumns); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(listingToRow(l)); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(date)); err != nil {
		return fmt.Errorf("csv: replace snapshot %s: %w", date, err)
	}

	c.logger.Info("[csv] Wrote %d listings to %s", len(listings), c.path(date))
	return nil
}

// ReadRows reads the snapshot of date and keeps the rows of one pair.
func (c *CSVStore) ReadRows(ctx context.Context, date, complexID string, tradeType models.TradeType) ([]models.PersistedRow, error) {
	rows, err := c.ReadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	return models.FilterRows(rows, complexID, tradeType), nil
}

// ReadSnapshot returns every row of date keyed by the header row.
func (c *CSVStore) ReadSnapshot(ctx context.Context, date string) ([]models.PersistedRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.path(date))
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Info("[csv] Snapshot %s not found, returning empty list", date)
		return []models.PersistedRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: open snapshot %s: %w", date, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return []models.PersistedRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	rows := make([]models.PersistedRow, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		row := make(models.PersistedRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	c.logger.Debug("[csv] Read %d rows from %s", len(rows), c.path(date))
	return rows, nil
}

func (c *CSVStore) Close() error {
	return nil
}
