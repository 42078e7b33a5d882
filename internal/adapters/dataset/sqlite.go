package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Table read by the SQLite loader.
const sqliteTable = "persons"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS persons (
	id          TEXT,
	name        TEXT NOT NULL,
	birth_year  INTEGER,
	death_year  INTEGER,
	prominence  INTEGER,
	color       TEXT,
	description TEXT,
	tags        TEXT
)`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

func readSQLite(ctx context.Context, path string) ([]RawRecord, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, name, birth_year, death_year, prominence, color, description, tags FROM `+sqliteTable+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite: %w", ErrDecode, err)
	}
	defer rows.Close()

	var out []RawRecord
	for rows.Next() {
		var (
			id, name, color, desc, tags sql.NullString
			birth, death                sql.NullInt64
			prominence                  sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &birth, &death, &prominence, &color, &desc, &tags); err != nil {
			return nil, fmt.Errorf("%w: sqlite: %w", ErrDecode, err)
		}
		r := RawRecord{
			ID:          id.String,
			Name:        name.String,
			Color:       color.String,
			Description: desc.String,
		}
		if prominence.Valid {
			r.Prominence = intPtr(int(prominence.Int64))
		}
		if birth.Valid {
			r.BirthYear = intPtr(int(birth.Int64))
		}
		if death.Valid {
			r.DeathYear = intPtr(int(death.Int64))
		}
		if tags.Valid && tags.String != "" {
			for _, t := range strings.Split(tags.String, ";") {
				if t = strings.TrimSpace(t); t != "" {
					r.Tags = append(r.Tags, t)
				}
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: sqlite: %w", ErrDecode, err)
	}
	return out, nil
}

// WriteSQLite stores rows in the persons table at path, creating it if
// needed. Existing rows are kept.
func WriteSQLite(ctx context.Context, path string, rows []RawRecord) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO persons (id, name, birth_year, death_year, prominence, color, description, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, nullString(r.ID), r.Name, nullInt(r.BirthYear), nullInt(r.DeathYear),
			nullInt(r.Prominence), nullString(r.Color), nullString(r.Description), nullString(strings.Join(r.Tags, ";"))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

func intPtr(v int) *int { return &v }

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
