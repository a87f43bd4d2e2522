package reconciler

import (
	"context"
	"fmt"

	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/common/logger"
	"github.com/campuskit/calsync/pkg/repositories/roster"
)

// RoleToAccess maps a domain roster role to the calendar ACL vocabulary.
// Unknown roles get reader access.
func RoleToAccess(role string) string {
	if role == roster.RoleTeacher {
		return cal.AccessWriter
	}
	return cal.AccessReader
}

// ApplyResult reports how many mutations the calendar service accepted plus
// any per-item errors it surfaced.
type ApplyResult struct {
	AppliedCount int
	Errors       []error
}

// BatchApplier pushes grant and revoke mutations through the ACL client.
// Chunking to the service's batch limit lives in the client; retries, if
// any, are the service's policy, not ours.
type BatchApplier struct {
	acl cal.Client
	log logger.Logger
}

func NewBatchApplier(acl cal.Client, log logger.Logger) *BatchApplier {
	return &BatchApplier{acl: acl, log: log.Child(map[string]any{"component": "batch_applier"})}
}

// ApplyAdditions grants calendar access for each addition, translating the
// roster role into the ACL role.
func (a *BatchApplier) ApplyAdditions(ctx context.Context, calendarID string, additions []roster.Participant) (ApplyResult, error) {
	if len(additions) == 0 {
		return ApplyResult{}, nil
	}
	items := make([]cal.PermissionItem, 0, len(additions))
	for _, p := range additions {
		items = append(items, cal.PermissionItem{
			UserID:      p.UserID,
			Role:        RoleToAccess(p.Role),
			DisplayName: p.UserName,
		})
	}
	a.log.Debug("granting %d permissions on %s", len(items), calendarID)
	res, err := a.acl.BatchCreateCalendarPermissionsLimit(ctx, calendarID, items)
	if err != nil {
		return ApplyResult{}, err
	}
	out := ApplyResult{}
	for _, item := range res.Items {
		if item.Error != "" {
			out.Errors = append(out.Errors, fmt.Errorf("grant %s: %s", item.UserID, item.Error))
			continue
		}
		out.AppliedCount++
	}
	return out, nil
}

// ApplyRemovals revokes access for each stale permission, one call per user.
// A failed revoke is collected, not fatal; the next run sees the entry again.
func (a *BatchApplier) ApplyRemovals(ctx context.Context, calendarID string, removals []cal.CurrentPermission) (ApplyResult, error) {
	out := ApplyResult{}
	for _, p := range removals {
		if err := a.acl.DeleteCalendarPermission(ctx, calendarID, p.UserID); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.Errors = append(out.Errors, fmt.Errorf("revoke %s: %w", p.UserID, err))
			continue
		}
		out.AppliedCount++
	}
	return out, nil
}
