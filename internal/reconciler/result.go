package reconciler

// Stages of a single course sync attempt, recorded on failures.
const (
	StageFetchCurrent  = "fetch_current"
	StageFetchDesired  = "fetch_desired"
	StageApply         = "apply"
	StageApplyRemovals = "apply_removals"
	StagePanic         = "panic"
)

// StageError records which stage of a course sync failed and why.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// SyncResult is the outcome of one course's sync attempt. A course is an
// all-or-nothing unit: any stage failure marks the whole course failed
// (FailedCount = 1) regardless of how many participants were involved.
type SyncResult struct {
	CourseCode   string       `json:"kkh"`
	CalendarID   string       `json:"calendar_id"`
	Success      bool         `json:"success"`
	AddedCount   int          `json:"added_count"`
	RemovedCount int          `json:"removed_count"`
	FailedCount  int          `json:"failed_count"`
	Errors       []StageError `json:"errors,omitempty"`
}

func failedResult(courseCode, calendarID, stage string, err error) SyncResult {
	return SyncResult{
		CourseCode:  courseCode,
		CalendarID:  calendarID,
		Success:     false,
		FailedCount: 1,
		Errors:      []StageError{{Stage: stage, Message: err.Error()}},
	}
}
