package reconciler

import (
	"context"
	"sync"

	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/repositories/roster"
)

// fakeSource serves fixed participant sets per course code.
type fakeSource struct {
	participants map[string][]roster.Participant
	err          error
	calls        int
}

func (f *fakeSource) GetCourseParticipants(_ context.Context, courseCode string) ([]roster.Participant, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.participants[courseCode], nil
}

func (f *fakeSource) UpsertTeacher(context.Context, string, roster.Participant) error { return nil }
func (f *fakeSource) UpsertStudent(context.Context, string, roster.Participant) error { return nil }
func (f *fakeSource) RemoveMember(context.Context, string, string) error              { return nil }
func (f *fakeSource) Disconnect()                                                     {}

// fakeACL is an in-memory calendar ACL that actually applies grants and
// revokes, so consecutive runs observe converged state.
type fakeACL struct {
	mu       sync.Mutex
	perms    map[string][]cal.CurrentPermission
	fetchErr error
	applyErr error
	itemErrs map[string]string // userID -> per-item error message

	created []cal.PermissionItem
	deleted []string
}

func newFakeACL() *fakeACL {
	return &fakeACL{perms: map[string][]cal.CurrentPermission{}}
}

func (f *fakeACL) GetAllCalendarPermissions(_ context.Context, calendarID string) ([]cal.CurrentPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]cal.CurrentPermission(nil), f.perms[calendarID]...), nil
}

func (f *fakeACL) GetCalendarPermissionList(ctx context.Context, calendarID, _ string, _ int) (cal.PermissionPage, error) {
	items, err := f.GetAllCalendarPermissions(ctx, calendarID)
	return cal.PermissionPage{Items: items}, err
}

func (f *fakeACL) BatchCreateCalendarPermissionsLimit(_ context.Context, calendarID string, items []cal.PermissionItem) (cal.BatchCreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return cal.BatchCreateResult{}, f.applyErr
	}
	var res cal.BatchCreateResult
	for _, item := range items {
		out := cal.BatchCreateItem{UserID: item.UserID, Role: item.Role}
		if msg, ok := f.itemErrs[item.UserID]; ok {
			out.Error = msg
			res.Items = append(res.Items, out)
			continue
		}
		f.created = append(f.created, item)
		f.perms[calendarID] = upsertPerm(f.perms[calendarID], cal.CurrentPermission{
			UserID:      item.UserID,
			Role:        item.Role,
			DisplayName: item.DisplayName,
		})
		res.Items = append(res.Items, out)
	}
	return res, nil
}

func (f *fakeACL) DeleteCalendarPermission(_ context.Context, calendarID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	kept := f.perms[calendarID][:0]
	for _, p := range f.perms[calendarID] {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	f.perms[calendarID] = kept
	return nil
}

func upsertPerm(perms []cal.CurrentPermission, p cal.CurrentPermission) []cal.CurrentPermission {
	for i := range perms {
		if perms[i].UserID == p.UserID {
			perms[i] = p
			return perms
		}
	}
	return append(perms, p)
}
