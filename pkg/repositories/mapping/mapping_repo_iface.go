package mapping

import (
	"context"
)

// CalendarMapping binds a course code (kkh) to the external calendar that
// carries the course schedule. Only active mappings take part in sync runs.
type CalendarMapping struct {
	CourseCode string `json:"kkh"`
	CalendarID string `json:"calendar_id"`
}

type Repository interface {
	// GetValidCalendarMappings returns every active course-to-calendar binding.
	// Store failures propagate to the caller; the batch cannot start without
	// the mapping set, so there is no per-course absorption at this level.
	GetValidCalendarMappings(ctx context.Context) ([]CalendarMapping, error)
	GetMapping(ctx context.Context, courseCode string) (*CalendarMapping, error)
	UpsertMapping(ctx context.Context, m CalendarMapping) error
	DeleteMapping(ctx context.Context, courseCode string) error
	Disconnect()
}
