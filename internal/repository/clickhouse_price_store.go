package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AgriPulse/internal/domain/models"
	domrepo "AgriPulse/internal/domain/repository"
)

// Schema statements for the raw observation table. MergeTree ordered by
// the series identity plus date so window scans stay sequential.
var SchemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS agripulse`,
	`CREATE TABLE IF NOT EXISTS agripulse.mandi_prices (
        date        Date,
        commodity   LowCardinality(String),
        region      LowCardinality(String),
        market      LowCardinality(String),
        min_price   Float64,
        max_price   Float64,
        modal_price Float64,
        ingested_at DateTime DEFAULT now()
    ) ENGINE = MergeTree()
    ORDER BY (commodity, region, market, date)`,
}

// ClickHousePriceStore implements ObservationStore for ClickHouse.
type ClickHousePriceStore struct {
	db    *sql.DB
	table string
}

// NewClickHousePriceStore creates ClickHouse observation storage.
func NewClickHousePriceStore(db *sql.DB, table string) domrepo.ObservationStore {
	if table == "" {
		table = "agripulse.mandi_prices"
	}
	return &ClickHousePriceStore{db: db, table: table}
}

func (s *ClickHousePriceStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHousePriceStore) Store(ctx context.Context, p *models.PricePoint) error {
	q := fmt.Sprintf("INSERT INTO %s (date, commodity, region, market, min_price, max_price, modal_price) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		p.Date,
		p.Commodity,
		p.Region,
		p.Market,
		p.MinPrice,
		p.MaxPrice,
		p.ModalPrice,
	)
	return err
}

func (s *ClickHousePriceStore) StoreBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, p := range points[start:end] {
			if p == nil || p.Commodity == "" || p.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				p.Date,
				p.Commodity,
				p.Region,
				p.Market,
				p.MinPrice,
				p.MaxPrice,
				p.ModalPrice,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (date, commodity, region, market, min_price, max_price, modal_price) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// LoadSince returns all observations on or after the cutoff, used to
// hydrate the in-memory series store at startup.
func (s *ClickHousePriceStore) LoadSince(ctx context.Context, since time.Time) ([]models.PricePoint, error) {
	q := fmt.Sprintf("SELECT date, commodity, region, market, min_price, max_price, modal_price FROM %s WHERE date >= ? ORDER BY date ASC", s.table)
	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, fmt.Errorf("load since: %w", err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 1024)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Commodity, &p.Region, &p.Market, &p.MinPrice, &p.MaxPrice, &p.ModalPrice); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ClickHousePriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHousePriceStore) Close() error {
	return nil // connection pool owned by pkg client
}
