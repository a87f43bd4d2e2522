package reconciler

import (
	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/repositories/roster"
)

// Diff is the minimal mutation set between the desired roster and the
// calendar's current ACL. Derived fresh on every run, never persisted.
type Diff struct {
	ToAdd    []roster.Participant
	ToRemove []cal.CurrentPermission
}

// ComputeDiff compares current ACL entries against the desired participant
// set, keyed by user id only. ToAdd preserves desired order, ToRemove
// preserves current order. Role mismatches for a user present on both sides
// are ignored here; see roleDrift.
func ComputeDiff(current []cal.CurrentPermission, desired []roster.Participant) Diff {
	currentIDs := make(map[string]struct{}, len(current))
	for _, p := range current {
		currentIDs[p.UserID] = struct{}{}
	}
	desiredIDs := make(map[string]struct{}, len(desired))
	for _, p := range desired {
		desiredIDs[p.UserID] = struct{}{}
	}

	var d Diff
	for _, p := range desired {
		if _, ok := currentIDs[p.UserID]; !ok {
			d.ToAdd = append(d.ToAdd, p)
		}
	}
	for _, p := range current {
		if _, ok := desiredIDs[p.UserID]; !ok {
			d.ToRemove = append(d.ToRemove, p)
		}
	}
	return d
}

// roleDrift returns desired participants present on both sides whose mapped
// ACL role no longer matches the current grant. Only consulted when role
// reconciliation is switched on; the calendar API upserts on create, so
// re-granting converges the role.
func roleDrift(current []cal.CurrentPermission, desired []roster.Participant) []roster.Participant {
	currentRole := make(map[string]string, len(current))
	for _, p := range current {
		currentRole[p.UserID] = p.Role
	}
	var drifted []roster.Participant
	for _, p := range desired {
		role, ok := currentRole[p.UserID]
		if ok && role != RoleToAccess(p.Role) {
			drifted = append(drifted, p)
		}
	}
	return drifted
}
