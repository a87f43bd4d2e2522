package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	r "github.com/campuskit/calsync/pkg/repositories/roster"
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
	CREATE TABLE IF NOT EXISTS course_teachers (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  kkh TEXT NOT NULL,
	  user_id TEXT NOT NULL,
	  user_name TEXT,
	  updated_at TIMESTAMP NOT NULL,
	  UNIQUE(kkh, user_id)
	);
	CREATE TABLE IF NOT EXISTS course_students (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  kkh TEXT NOT NULL,
	  user_id TEXT NOT NULL,
	  user_name TEXT,
	  updated_at TIMESTAMP NOT NULL,
	  UNIQUE(kkh, user_id)
	);
	`)
	return err
}

// GetCourseParticipants issues the teachers query, then the students query,
// tagging rows with the domain role. A student who is also listed as a
// teacher keeps the teacher row only, so the desired set stays unique by
// user_id.
func (s *SQLiteRepo) GetCourseParticipants(ctx context.Context, courseCode string) ([]r.Participant, error) {
	if strings.TrimSpace(courseCode) == "" {
		return nil, r.ErrEmptyCourseCode
	}

	teachers, err := s.queryMembers(ctx, `SELECT user_id, user_name FROM course_teachers WHERE kkh = ? ORDER BY id ASC`, courseCode, r.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("query course teachers: %w", err)
	}
	students, err := s.queryMembers(ctx, `
	SELECT user_id, user_name FROM course_students
	WHERE kkh = ? AND user_id NOT IN (SELECT user_id FROM course_teachers WHERE kkh = ?)
	ORDER BY id ASC`, courseCode, r.RoleStudent, courseCode)
	if err != nil {
		return nil, fmt.Errorf("query course students: %w", err)
	}
	return append(teachers, students...), nil
}

func (s *SQLiteRepo) queryMembers(ctx context.Context, q, courseCode, role string, extra ...any) ([]r.Participant, error) {
	args := append([]any{courseCode}, extra...)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []r.Participant
	for rows.Next() {
		var p r.Participant
		var name sql.NullString
		if err := rows.Scan(&p.UserID, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			p.UserName = name.String
		}
		p.Role = role
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteRepo) UpsertTeacher(ctx context.Context, courseCode string, p r.Participant) error {
	return s.upsertMember(ctx, "course_teachers", courseCode, p)
}

func (s *SQLiteRepo) UpsertStudent(ctx context.Context, courseCode string, p r.Participant) error {
	return s.upsertMember(ctx, "course_students", courseCode, p)
}

func (s *SQLiteRepo) upsertMember(ctx context.Context, table, courseCode string, p r.Participant) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO `+table+` (kkh, user_id, user_name, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(kkh, user_id)
	DO UPDATE SET user_name = excluded.user_name, updated_at = excluded.updated_at
	`, courseCode, p.UserID, p.UserName, time.Now().UTC())
	return err
}

func (s *SQLiteRepo) RemoveMember(ctx context.Context, courseCode, userID string) error {
	for _, table := range []string{"course_teachers", "course_students"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE kkh = ? AND user_id = ?`, courseCode, userID); err != nil {
			return err
		}
	}
	return nil
}
