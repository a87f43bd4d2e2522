package roster

import (
	"context"
	"errors"
)

// Domain roles carried by the course roster. These are distinct from the
// calendar ACL vocabulary; the mapping happens at apply time.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// ErrEmptyCourseCode is returned before any query is issued when the caller
// supplies an empty or whitespace-only course code.
var ErrEmptyCourseCode = errors.New("course code must not be empty")

// Participant is one desired member of a course calendar, tagged with the
// domain role that decides the ACL role it will be granted.
type Participant struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

type Source interface {
	// GetCourseParticipants returns the desired participant set for a course:
	// teachers first, then students, each tagged with its role. Uniqueness by
	// UserID is guaranteed at the query level. An empty courseCode fails with
	// ErrEmptyCourseCode without touching the store.
	GetCourseParticipants(ctx context.Context, courseCode string) ([]Participant, error)

	// Roster administration, used by seeding and tests.
	UpsertTeacher(ctx context.Context, courseCode string, p Participant) error
	UpsertStudent(ctx context.Context, courseCode string, p Participant) error
	RemoveMember(ctx context.Context, courseCode, userID string) error
	Disconnect()
}
