// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// SQLiteStorage keeps the feeding ledger and the item catalog in one
// SQLite file. Ledger positions are the log_entries rowid.
type SQLiteStorage struct {
	db *sql.DB
}

var (
	_ ledger.Store   = (*SQLiteStorage)(nil)
	_ ledger.Catalog = (*SQLiteStorage)(nil)
)

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS items (
        item_id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        unit TEXT NOT NULL,
        ref_calorie REAL NOT NULL DEFAULT 0,
        ref_protein REAL NOT NULL DEFAULT 0,
        ref_fat REAL NOT NULL DEFAULT 0,
        ref_phosphorus REAL NOT NULL DEFAULT 0
    );

    CREATE TABLE IF NOT EXISTS log_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        log_id TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        date TEXT NOT NULL,
        time TEXT NOT NULL,
        meal_name TEXT NOT NULL,
        pet_name TEXT NOT NULL DEFAULT '',
        item_id TEXT NOT NULL,
        item_name TEXT NOT NULL,
        category TEXT NOT NULL,
        scale_reading REAL NOT NULL DEFAULT 0,
        bowl_weight REAL NOT NULL DEFAULT 0,
        net_quantity REAL NOT NULL DEFAULT 0,
        calorie_sub REAL NOT NULL DEFAULT 0,
        protein_sub REAL NOT NULL DEFAULT 0,
        fat_sub REAL NOT NULL DEFAULT 0,
        phosphorus_sub REAL NOT NULL DEFAULT 0,
        finish_label TEXT NOT NULL DEFAULT ''
    );

    CREATE INDEX IF NOT EXISTS idx_log_entries_scope ON log_entries(date, meal_name, pet_name);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Append writes entries in one transaction, so a batch lands whole or not
// at all.
func (s *SQLiteStorage) Append(ctx context.Context, entries []models.LogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO log_entries (log_id, timestamp, date, time, meal_name, pet_name, item_id, item_name,
            category, scale_reading, bowl_weight, net_quantity, calorie_sub, protein_sub, fat_sub,
            phosphorus_sub, finish_label)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, e := range entries {
		_, err = tx.ExecContext(ctx, query,
			e.LogID, formatTimestamp(e.Timestamp), e.Date, e.Time, e.MealName, e.PetName,
			e.ItemID, e.ItemName, e.Category.Label, e.ScaleReading, e.BowlWeight, e.NetQuantity,
			e.Nutrients.Calorie, e.Nutrients.Protein, e.Nutrients.Fat, e.Nutrients.Phosphorus,
			e.FinishLabel)
		if err != nil {
			return fmt.Errorf("failed to insert log entry: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) ReadAll(ctx context.Context) ([]ledger.Row, error) {
	query := `
        SELECT id, log_id, timestamp, date, time, meal_name, pet_name, item_id, item_name, category,
            scale_reading, bowl_weight, net_quantity, calorie_sub, protein_sub, fat_sub,
            phosphorus_sub, finish_label
        FROM log_entries
        ORDER BY id
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer rows.Close()

	var out []ledger.Row
	for rows.Next() {
		var (
			r             ledger.Row
			timestampStr  string
			categoryLabel string
		)
		e := &r.Entry
		err := rows.Scan(
			&r.Position, &e.LogID, &timestampStr, &e.Date, &e.Time, &e.MealName, &e.PetName,
			&e.ItemID, &e.ItemName, &categoryLabel, &e.ScaleReading, &e.BowlWeight, &e.NetQuantity,
			&e.Nutrients.Calorie, &e.Nutrients.Protein, &e.Nutrients.Fat, &e.Nutrients.Phosphorus,
			&e.FinishLabel)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}

		e.Category = models.ParseCategory(categoryLabel)
		if timestampStr != "" {
			if e.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr); err != nil {
				return nil, fmt.Errorf("failed to parse timestamp of row %d: %w", r.Position, err)
			}
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log entries: %w", err)
	}
	return out, nil
}

// Delete removes rows in the order given. A missing position aborts the
// whole call.
func (s *SQLiteStorage) Delete(ctx context.Context, positions []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, pos := range positions {
		res, err := tx.ExecContext(ctx, `DELETE FROM log_entries WHERE id = ?`, pos)
		if err != nil {
			return fmt.Errorf("failed to delete log entry %d: %w", pos, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("failed to delete log entry %d: no such row", pos)
		}
	}

	return tx.Commit()
}

// UpsertItems inserts catalog items, replacing existing ones with the same
// id.
func (s *SQLiteStorage) UpsertItems(ctx context.Context, items []models.ItemDefinition) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO items (item_id, name, category, unit, ref_calorie, ref_protein, ref_fat, ref_phosphorus)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(item_id) DO UPDATE SET
            name = excluded.name,
            category = excluded.category,
            unit = excluded.unit,
            ref_calorie = excluded.ref_calorie,
            ref_protein = excluded.ref_protein,
            ref_fat = excluded.ref_fat,
            ref_phosphorus = excluded.ref_phosphorus
    `
	for _, it := range items {
		_, err = tx.ExecContext(ctx, query,
			it.ID, it.Name, it.Category.Label, it.Unit,
			it.Reference.Calorie, it.Reference.Protein, it.Reference.Fat, it.Reference.Phosphorus)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) Items(ctx context.Context) ([]models.ItemDefinition, error) {
	query := `
        SELECT item_id, name, category, unit, ref_calorie, ref_protein, ref_fat, ref_phosphorus
        FROM items
        ORDER BY rowid
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.ItemDefinition
	for rows.Next() {
		var (
			id, name, category, unit string
			ref                      models.Nutrients
		)
		if err := rows.Scan(&id, &name, &category, &unit,
			&ref.Calorie, &ref.Protein, &ref.Fat, &ref.Phosphorus); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, models.NewItemDefinition(id, name, category, unit, ref))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
