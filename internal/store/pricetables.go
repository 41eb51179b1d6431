package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/mountbook/internal/pricing"
)

// PriceTableVersion is one stored revision of the price table.
type PriceTableVersion struct {
	Version   int64              `json:"version"`
	Table     pricing.PriceTable `json:"table"`
	CreatedAt time.Time          `json:"createdAt"`
}

// PriceTable returns the latest stored table, or the default table when none was saved.
func (s *Store) PriceTable(ctx context.Context) (pricing.PriceTable, error) {
	v, err := s.LatestPriceTable(ctx)
	if errors.Is(err, ErrNotFound) {
		return pricing.DefaultTable(), nil
	}
	if err != nil {
		return pricing.PriceTable{}, err
	}
	return v.Table, nil
}

func (s *Store) LatestPriceTable(ctx context.Context) (PriceTableVersion, error) {
	var (
		v         PriceTableVersion
		raw       string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT version, table_json, `+timestamp("created_at")+`
		FROM price_tables
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&v.Version, &raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PriceTableVersion{}, ErrNotFound
	}
	if err != nil {
		return PriceTableVersion{}, fmt.Errorf("query price table: %w", err)
	}

	table, err := pricing.ParseTable([]byte(raw))
	if err != nil {
		return PriceTableVersion{}, fmt.Errorf("stored price table %d: %w", v.Version, err)
	}
	v.Table = table
	v.CreatedAt = parseTimestamp(createdAt)
	return v, nil
}

// SavePriceTable validates t and stores it as a new version. Earlier versions are kept.
func (s *Store) SavePriceTable(ctx context.Context, t pricing.PriceTable) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("encode price table: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO price_tables (table_json) VALUES (?)`, string(raw))
	if err != nil {
		return 0, fmt.Errorf("insert price table: %w", err)
	}
	version, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("price table version: %w", err)
	}
	return version, nil
}
