package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"YieldDesk/internal/domain/models"
	"YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/date"
)

// ObservationsTable is the default archive table.
const ObservationsTable = "yield_observations"

// ClickHouseStorage implements Storage for ClickHouse. Re-archived
// observations collapse on (series_id, obs_date), keeping the latest fetch.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	if table == "" {
		table = ObservationsTable
	}
	return &ClickHouseStorage{db: db, table: table}
}

// Schema returns the DDL for the archive table.
func Schema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	series_id  LowCardinality(String),
	obs_date   Date,
	value      Float64,
	fetched_at DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(fetched_at)
ORDER BY (series_id, obs_date)`, table)}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	for _, stmt := range Schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

// StoreBatch inserts present observations in one prepared batch.
func (s *ClickHouseStorage) StoreBatch(ctx context.Context, b *models.ObservationBatch) error {
	if !b.Validate() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (series_id, obs_date, value, fetched_at)", s.table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	fetched := b.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now().UTC()
	}
	for _, o := range b.Observations {
		v, ok := o.Value.Get()
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, b.SeriesID, o.Date.Time(), v, fetched); err != nil {
			return fmt.Errorf("append %s %s: %w", b.SeriesID, o.Date, err)
		}
	}
	return tx.Commit()
}

func (s *ClickHouseStorage) Query(ctx context.Context, seriesID string, r date.Range) ([]models.Observation, error) {
	q := fmt.Sprintf("SELECT obs_date, value FROM %s FINAL WHERE series_id = ? AND obs_date >= ? AND obs_date <= ? ORDER BY obs_date", s.table)
	rows, err := s.db.QueryContext(ctx, q, seriesID, r.From.Time(), r.To.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var (
			d time.Time
			v float64
		)
		if err := rows.Scan(&d, &v); err != nil {
			return nil, err
		}
		out = append(out, models.Observation{Date: date.FromTime(d), Value: models.Present(v)})
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // pool owned by pkg/clickhouse.Client
}
