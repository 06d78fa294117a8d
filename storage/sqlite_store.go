package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"naver-land-tracker/models"
	"naver-land-tracker/utils"
)

// SQLiteStore keeps snapshots in a single SQLite file. Every column is TEXT
// so rows come back as loosely typed as they would from a spreadsheet.
type SQLiteStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string, logger *utils.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time; sqlite serialises anyway
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	cols := make([]string, 0, len(snapshotColumns))
	for _, c := range snapshotColumns {
		cols = append(cols, c+" TEXT")
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS snapshot_rows (
			snapshot_date TEXT NOT NULL,
			%s
		);`, strings.Join(cols, ",\n\t\t\t")),
		`CREATE INDEX IF NOT EXISTS idx_snapshot_pair ON snapshot_rows(snapshot_date, complex_id, trade_type);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshot replaces every row of date in one transaction.
func (s *SQLiteStore) WriteSnapshot(ctx context.Context, date string, listings []*models.Listing) error {
	if len(listings) == 0 {
		s.logger.Info("[sqlite] No listings to write for %s", date)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows WHERE snapshot_date = ?`, date)
	if err != nil {
		return fmt.Errorf("sqlite: clear %s: %w", date, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("[sqlite] Cleared %d existing rows for %s", n, date)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(snapshotColumns)+1), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO snapshot_rows (snapshot_date, %s) VALUES (%s)`,
		strings.Join(snapshotColumns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		fields := listingToRow(l)
		args := make([]any, 0, len(fields)+1)
		args = append(args, date)
		for _, f := range fields {
			args = append(args, f)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	s.logger.Info("[sqlite] Wrote %d listings for %s", len(listings), date)
	return nil
}

// ReadRows returns the stored rows of one complex and trade type for date.
func (s *SQLiteStore) ReadRows(ctx context.Context, date, complexID string, tradeType models.TradeType) ([]models.PersistedRow, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM snapshot_rows
		WHERE snapshot_date = ? AND complex_id = ? AND trade_type = ?
		ORDER BY rowid`, strings.Join(snapshotColumns, ", ")),
		date, complexID, string(tradeType))
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", date, err)
	}
	defer rows.Close()

	out := make([]models.PersistedRow, 0)
	for rows.Next() {
		values := make([]any, len(snapshotColumns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		row := make(models.PersistedRow, len(snapshotColumns))
		for i, name := range snapshotColumns {
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	if len(out) == 0 {
		s.logger.Debug("[sqlite] No rows for %s complex=%s trade=%s", date, complexID, tradeType)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
