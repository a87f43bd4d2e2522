package reconciler

import (
	"context"
	"fmt"

	cal "github.com/campuskit/calsync/pkg/calendar"
	"github.com/campuskit/calsync/pkg/common/logger"
	"github.com/campuskit/calsync/pkg/repositories/roster"
)

// Options controls reconciliation policy.
type Options struct {
	// EnableRemovals applies the computed ToRemove set. Off by default:
	// stale grants are computed and logged but left in place.
	EnableRemovals bool

	// ReconcileRoles re-grants users whose ACL role drifted from their
	// roster role (e.g. a student promoted to teacher). Off by default:
	// the diff is keyed by user id only.
	ReconcileRoles bool

	// Concurrency bounds how many courses a batch run syncs in parallel.
	Concurrency int
}

// Reconciler converges one course's calendar ACL with its roster. It is
// stateless: every run reads both sides fresh, so repeated runs against
// unchanged inputs are no-ops.
type Reconciler struct {
	source  roster.Source
	acl     cal.Client
	applier *BatchApplier
	opts    Options
	log     logger.Logger
}

func NewReconciler(source roster.Source, acl cal.Client, opts Options, log logger.Logger) *Reconciler {
	return &Reconciler{
		source:  source,
		acl:     acl,
		applier: NewBatchApplier(acl, log),
		opts:    opts,
		log:     log,
	}
}

// SyncCourseParticipants runs one course's sync cycle: fetch current ACL,
// fetch desired roster, diff, apply. Every stage failure is absorbed into
// the returned result; this method never returns an error and never panics
// out.
func (r *Reconciler) SyncCourseParticipants(ctx context.Context, courseCode, calendarID string) (result SyncResult) {
	log := r.log.Child(map[string]any{"kkh": courseCode, "calendar_id": calendarID})
	log.Info("syncing course participants")

	defer func() {
		if rec := recover(); rec != nil {
			result = failedResult(courseCode, calendarID, StagePanic, fmt.Errorf("panic: %v", rec))
			log.Error("sync panicked: %v", rec)
		}
	}()

	current, err := r.acl.GetAllCalendarPermissions(ctx, calendarID)
	if err != nil {
		log.Error("fetch current permissions: %v", err)
		return failedResult(courseCode, calendarID, StageFetchCurrent, err)
	}

	desired, err := r.source.GetCourseParticipants(ctx, courseCode)
	if err != nil {
		log.Error("fetch desired participants: %v", err)
		return failedResult(courseCode, calendarID, StageFetchDesired, err)
	}

	diff := ComputeDiff(current, desired)
	if r.opts.ReconcileRoles {
		diff.ToAdd = append(diff.ToAdd, roleDrift(current, desired)...)
	}
	log.Debug("diff: current=%d desired=%d to_add=%d to_remove=%d",
		len(current), len(desired), len(diff.ToAdd), len(diff.ToRemove))

	applied, err := r.applier.ApplyAdditions(ctx, calendarID, diff.ToAdd)
	if err != nil {
		log.Error("apply additions: %v", err)
		return failedResult(courseCode, calendarID, StageApply, err)
	}

	result = SyncResult{
		CourseCode: courseCode,
		CalendarID: calendarID,
		Success:    true,
		AddedCount: applied.AppliedCount,
	}
	for _, e := range applied.Errors {
		result.Errors = append(result.Errors, StageError{Stage: StageApply, Message: e.Error()})
	}

	if len(diff.ToRemove) > 0 && !r.opts.EnableRemovals {
		log.Debug("removals disabled, leaving %d stale grants", len(diff.ToRemove))
	}
	if r.opts.EnableRemovals {
		removed, err := r.applier.ApplyRemovals(ctx, calendarID, diff.ToRemove)
		if err != nil {
			log.Error("apply removals: %v", err)
			return failedResult(courseCode, calendarID, StageApplyRemovals, err)
		}
		result.RemovedCount = removed.AppliedCount
		for _, e := range removed.Errors {
			result.Errors = append(result.Errors, StageError{Stage: StageApplyRemovals, Message: e.Error()})
		}
	}

	log.Info("course sync done: added=%d removed=%d item_errors=%d",
		result.AddedCount, result.RemovedCount, len(result.Errors))
	return result
}
