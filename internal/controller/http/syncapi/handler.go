package syncapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuskit/calsync/internal/reconciler"
	"github.com/campuskit/calsync/pkg/common/logger"
	mappingRepo "github.com/campuskit/calsync/pkg/repositories/mapping"
	rosterRepo "github.com/campuskit/calsync/pkg/repositories/roster"
)

type Handler struct {
	mappings mappingRepo.Repository
	roster   rosterRepo.Source
	syncer   reconciler.CourseSyncer
	batch    *reconciler.BatchReconciler
	log      logger.Logger
}

func NewHandler(mappings mappingRepo.Repository, roster rosterRepo.Source, syncer reconciler.CourseSyncer, batch *reconciler.BatchReconciler, log logger.Logger) *Handler {
	return &Handler{
		mappings: mappings,
		roster:   roster,
		syncer:   syncer,
		batch:    batch,
		log:      log.Child(map[string]any{"component": "syncapi"}),
	}
}

// Router returns a chi-based router for the /api endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", h.health)

	// Sync triggers (normally driven by an external scheduler)
	r.Post("/api/sync/run", h.runBatchSync)
	r.Post("/api/sync/courses/{kkh}", h.runCourseSync)

	// Mapping administration
	r.Get("/api/mappings", h.listMappings)
	r.Post("/api/mappings", h.upsertMapping)
	r.Delete("/api/mappings/{kkh}", h.deleteMapping)

	// Roster inspection
	r.Get("/api/courses/{kkh}/participants", h.listParticipants)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runBatchSync POST /api/sync/run
// Fetches every active mapping and reconciles all of them. Only the mapping
// fetch can fail the request; per-course failures come back inside results.
func (h *Handler) runBatchSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := uuid.NewString()
	log := h.log.Child(map[string]any{"run_id": runID})

	mappings, err := h.mappings.GetValidCalendarMappings(ctx)
	if err != nil {
		log.Error("fetch mappings: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Info("sync run started: %d mappings", len(mappings))
	results := h.batch.SyncMultipleCourses(ctx, mappings)
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"results": results,
	})
}

// runCourseSync POST /api/sync/courses/{kkh}
func (h *Handler) runCourseSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseCode := chi.URLParam(r, "kkh")
	m, err := h.mappings.GetMapping(ctx, courseCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.Error(w, "noMappingForCourse", http.StatusNotFound)
		return
	}
	result := h.syncer.SyncCourseParticipants(ctx, m.CourseCode, m.CalendarID)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappings.GetValidCalendarMappings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if mappings == nil {
		mappings = []mappingRepo.CalendarMapping{}
	}
	writeJSON(w, http.StatusOK, mappings)
}

func (h *Handler) upsertMapping(w http.ResponseWriter, r *http.Request) {
	var m mappingRepo.CalendarMapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalidJson", http.StatusBadRequest)
		return
	}
	m.CourseCode = strings.TrimSpace(m.CourseCode)
	m.CalendarID = strings.TrimSpace(m.CalendarID)
	if m.CourseCode == "" || m.CalendarID == "" {
		http.Error(w, "kkhAndCalendarIdRequired", http.StatusBadRequest)
		return
	}
	if err := h.mappings.UpsertMapping(r.Context(), m); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := h.mappings.DeleteMapping(r.Context(), chi.URLParam(r, "kkh")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.roster.GetCourseParticipants(r.Context(), chi.URLParam(r, "kkh"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rosterRepo.ErrEmptyCourseCode) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if participants == nil {
		participants = []rosterRepo.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
