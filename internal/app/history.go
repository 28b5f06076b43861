package app

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sadbob/mcal/internal/contract"
)

// historyRecord is one past conversion, newest first in listings.
type historyRecord struct {
	ID             string                `json:"id"`
	At             time.Time             `json:"at"`
	SourceCalendar contract.CalendarKind `json:"source_calendar"`
	SourceDate     string                `json:"source_date"`
	TargetCalendar contract.CalendarKind `json:"target_calendar"`
	TargetDate     string                `json:"target_date"`
	FormattedDate  string                `json:"formatted_date,omitempty"`
}

func historyDBPath() string {
	base := defaultUserConfigPath()
	if strings.TrimSpace(base) == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(base), "history.db")
}

func openHistoryDB(ctx context.Context) (*sql.DB, error) {
	path := historyDBPath()
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		source_calendar TEXT NOT NULL,
		source_date TEXT NOT NULL,
		target_calendar TEXT NOT NULL,
		target_date TEXT NOT NULL,
		formatted_date TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// recordConversion stores one successful conversion. A missing config
// directory disables history silently; history is a convenience, not part of
// the conversion result.
func recordConversion(ctx context.Context, rec historyRecord) error {
	db, err := openHistoryDB(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return nil
	}
	defer db.Close()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO conversions (id, at, source_calendar, source_date, target_calendar, target_date, formatted_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.At.Format(time.RFC3339), string(rec.SourceCalendar), rec.SourceDate,
		string(rec.TargetCalendar), rec.TargetDate, rec.FormattedDate)
	return err
}

func listConversions(ctx context.Context, limit int) ([]historyRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	db, err := openHistoryDB(ctx)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, nil
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx,
		`SELECT id, at, source_calendar, source_date, target_calendar, target_date, formatted_date
		 FROM conversions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []historyRecord
	for rows.Next() {
		var rec historyRecord
		var at, src, tgt string
		if err := rows.Scan(&rec.ID, &at, &src, &rec.SourceDate, &tgt, &rec.TargetDate, &rec.FormattedDate); err != nil {
			return nil, err
		}
		rec.SourceCalendar = contract.CalendarKind(src)
		rec.TargetCalendar = contract.CalendarKind(tgt)
		if ts, err := time.Parse(time.RFC3339, at); err == nil {
			rec.At = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func clearConversions(ctx context.Context) (int64, error) {
	db, err := openHistoryDB(ctx)
	if err != nil {
		return 0, err
	}
	if db == nil {
		return 0, nil
	}
	defer db.Close()
	res, err := db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
