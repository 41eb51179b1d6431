package seed

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/mountbook/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// PriceTable replaces the stored price table when it differs from the latest version.
	// Nil keeps whatever is stored and falls back to the default table on an empty database.
	PriceTable *pricing.PriceTable
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type defaultHours struct {
	day         time.Weekday
	start, end  string
	isAvailable bool
}

var defaultSchedule = []defaultHours{
	{time.Sunday, "09:00", "17:00", false},
	{time.Monday, "09:00", "17:00", true},
	{time.Tuesday, "09:00", "17:00", true},
	{time.Wednesday, "09:00", "17:00", true},
	{time.Thursday, "09:00", "17:00", true},
	{time.Friday, "09:00", "17:00", true},
	{time.Saturday, "09:00", "15:00", true},
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureBusinessHours(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensurePriceTable(ctx, tx, cfg.PriceTable, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureBusinessHours fills weekdays that have no row yet. Edited days are left alone.
func ensureBusinessHours(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for _, h := range defaultSchedule {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO business_hours (day_of_week, start_time, end_time, is_available)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (day_of_week) DO NOTHING
		`, int(h.day), h.start, h.end, h.isAvailable)
		if err != nil {
			return fmt.Errorf("insert business hours for %s: %w", h.day, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert business hours for %s: %w", h.day, err)
		}
		stats.Inserts += int(affected)
	}
	return nil
}

func ensurePriceTable(ctx context.Context, tx *sql.Tx, override *pricing.PriceTable, stats *Stats) error {
	var latest string
	err := tx.QueryRowContext(ctx, `SELECT table_json FROM price_tables ORDER BY version DESC LIMIT 1`).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		table := pricing.DefaultTable()
		if override != nil {
			table = *override
		}
		if err := insertPriceTable(ctx, tx, table); err != nil {
			return err
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("query latest price table: %w", err)
	}

	if override == nil {
		return nil
	}
	want, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("encode price table: %w", err)
	}
	if bytes.Equal(want, []byte(latest)) {
		return nil
	}
	if err := insertPriceTable(ctx, tx, *override); err != nil {
		return err
	}
	stats.Updates++
	return nil
}

func insertPriceTable(ctx context.Context, tx *sql.Tx, table pricing.PriceTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode price table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO price_tables (table_json) VALUES (?)`, string(raw)); err != nil {
		return fmt.Errorf("insert price table: %w", err)
	}
	return nil
}
