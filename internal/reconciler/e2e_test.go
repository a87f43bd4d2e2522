package reconciler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mappingSqlite "github.com/campuskit/calsync/internal/repositories/mapping/sqlite"
	rosterSqlite "github.com/campuskit/calsync/internal/repositories/roster/sqlite"
	"github.com/campuskit/calsync/pkg/common/logger"
	m "github.com/campuskit/calsync/pkg/repositories/mapping"
	r "github.com/campuskit/calsync/pkg/repositories/roster"
)

// Full pipeline against real sqlite stores and an in-memory ACL double:
// two mapped courses, empty calendars, one teacher per course.
func TestBatchSyncEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	mappings, err := mappingSqlite.NewSQLiteRepo(filepath.Join(dir, "mappings.db"))
	require.NoError(t, err)
	defer mappings.Disconnect()
	roster, err := rosterSqlite.NewSQLiteRepo(filepath.Join(dir, "roster.db"))
	require.NoError(t, err)
	defer roster.Disconnect()

	require.NoError(t, mappings.UpsertMapping(ctx, m.CalendarMapping{CourseCode: "COURSE001", CalendarID: "cal-001"}))
	require.NoError(t, mappings.UpsertMapping(ctx, m.CalendarMapping{CourseCode: "COURSE002", CalendarID: "cal-002"}))
	require.NoError(t, roster.UpsertTeacher(ctx, "COURSE001", r.Participant{UserID: "t1", UserName: "Prof One"}))
	require.NoError(t, roster.UpsertTeacher(ctx, "COURSE002", r.Participant{UserID: "t2", UserName: "Prof Two"}))

	acl := newFakeACL()
	rec := NewReconciler(roster, acl, Options{}, logger.Nop())
	batch := NewBatchReconciler(rec, 2, logger.Nop())

	ms, err := mappings.GetValidCalendarMappings(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2)

	results := batch.SyncMultipleCourses(ctx, ms)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Success)
		assert.Equal(t, 1, res.AddedCount)
		assert.Zero(t, res.FailedCount)
	}

	// Second run converges to a no-op.
	again := batch.SyncMultipleCourses(ctx, ms)
	for _, res := range again {
		assert.True(t, res.Success)
		assert.Zero(t, res.AddedCount)
	}
}
