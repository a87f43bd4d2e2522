package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	m "github.com/campuskit/calsync/pkg/repositories/mapping"
)

type SQLiteRepo struct{ db *sql.DB }

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (s *SQLiteRepo) Disconnect() { _ = s.db.Close() }

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS calendar_mappings (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  kkh TEXT NOT NULL UNIQUE,
	  calendar_id TEXT NOT NULL,
	  active INTEGER NOT NULL DEFAULT 1,
	  updated_at TIMESTAMP NOT NULL
	);
	`)
	return err
}

func (s *SQLiteRepo) GetValidCalendarMappings(ctx context.Context) ([]m.CalendarMapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kkh, calendar_id FROM calendar_mappings WHERE active = 1 ORDER BY kkh ASC`)
	if err != nil {
		return nil, fmt.Errorf("query calendar mappings: %w", err)
	}
	defer rows.Close()
	var out []m.CalendarMapping
	for rows.Next() {
		var cm m.CalendarMapping
		if err := rows.Scan(&cm.CourseCode, &cm.CalendarID); err != nil {
			return nil, fmt.Errorf("scan calendar mapping: %w", err)
		}
		cm.CourseCode = strings.TrimSpace(cm.CourseCode)
		cm.CalendarID = strings.TrimSpace(cm.CalendarID)
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (s *SQLiteRepo) GetMapping(ctx context.Context, courseCode string) (*m.CalendarMapping, error) {
	var cm m.CalendarMapping
	err := s.db.QueryRowContext(ctx, `SELECT kkh, calendar_id FROM calendar_mappings WHERE kkh = ? AND active = 1`, courseCode).
		Scan(&cm.CourseCode, &cm.CalendarID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar mapping %s: %w", courseCode, err)
	}
	return &cm, nil
}

func (s *SQLiteRepo) UpsertMapping(ctx context.Context, cm m.CalendarMapping) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO calendar_mappings (kkh, calendar_id, active, updated_at)
	VALUES (?, ?, 1, ?)
	ON CONFLICT(kkh)
	DO UPDATE SET calendar_id = excluded.calendar_id, active = 1, updated_at = excluded.updated_at
	`, cm.CourseCode, cm.CalendarID, time.Now().UTC())
	return err
}

func (s *SQLiteRepo) DeleteMapping(ctx context.Context, courseCode string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM calendar_mappings WHERE kkh = ?`, courseCode)
	return err
}
