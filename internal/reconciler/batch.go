package reconciler

import (
	"context"
	"sync"

	"github.com/campuskit/calsync/pkg/common/logger"
	"github.com/campuskit/calsync/pkg/repositories/mapping"
)

// CourseSyncer is the single-course contract fanned out by BatchReconciler.
type CourseSyncer interface {
	SyncCourseParticipants(ctx context.Context, courseCode, calendarID string) SyncResult
}

// BatchReconciler runs one sync per mapping with bounded concurrency.
// Results land in index slots so output order always matches input order,
// and one course's failure never touches another's.
type BatchReconciler struct {
	syncer      CourseSyncer
	concurrency int
	log         logger.Logger
}

func NewBatchReconciler(syncer CourseSyncer, concurrency int, log logger.Logger) *BatchReconciler {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchReconciler{syncer: syncer, concurrency: concurrency, log: log}
}

// SyncMultipleCourses returns exactly one result per mapping, in input
// order. Per-course failures surface as Success=false entries; this method
// itself never fails.
func (b *BatchReconciler) SyncMultipleCourses(ctx context.Context, mappings []mapping.CalendarMapping) []SyncResult {
	results := make([]SyncResult, len(mappings))
	if len(mappings) == 0 {
		return results
	}
	b.log.Info("batch sync: %d mappings, concurrency %d", len(mappings), b.concurrency)

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	for i, m := range mappings {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, m mapping.CalendarMapping) {
			defer func() { <-sem; wg.Done() }()
			results[i] = b.syncer.SyncCourseParticipants(ctx, m.CourseCode, m.CalendarID)
		}(i, m)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		failed += r.FailedCount
	}
	if failed > 0 {
		b.log.Warn("batch sync finished: %d of %d courses failed", failed, len(mappings))
	} else {
		b.log.Info("batch sync finished: all %d courses ok", len(mappings))
	}
	return results
}
