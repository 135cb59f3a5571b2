package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/infra/logging"
)

const internalErrorDetail = "internal error"

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorResponse{Detail: detail})
}

// fail maps use-case errors to a status code. Store faults are logged and
// rendered without their text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var lerr *model.LineError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &lerr):
		writeError(w, http.StatusBadRequest, lerr.Message)
	case errors.Is(err, domain.ErrQueueClosed):
		writeError(w, http.StatusServiceUnavailable, "ingestion is shutting down")
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "App running successfully"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestResponse struct {
	Message string `json:"message"`
	JobID   int64  `json:"job_id"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "multipart form with a 'file' field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	jobID, err := s.ingestUC.Upload(r.Context(), header.Filename, content)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusAccepted, ingestResponse{
		Message: fmt.Sprintf("File '%s' has been queued for processing.", model.CleanFileName(header.Filename)),
		JobID:   jobID,
	})
}

func parseJobID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "job_id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleIngestionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "job_id must be an integer")
		return
	}
	report, err := s.ingestUC.Status(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type staleJobsResponse struct {
	OlderThan string       `json:"older_than,omitempty"`
	Jobs      []*model.Job `json:"jobs"`
}

func (s *Server) handleStaleJobs(w http.ResponseWriter, r *http.Request) {
	var olderThan time.Duration
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "older_than must be a positive duration such as 30m or 2h")
			return
		}
		olderThan = d
	}
	jobs, err := s.ingestUC.ListStale(r.Context(), olderThan)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	resp := staleJobsResponse{Jobs: jobs}
	if olderThan > 0 {
		resp.OlderThan = olderThan.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "job_id must be an integer")
		return
	}
	if err := s.ingestUC.DeleteJob(r.Context(), id); err != nil {
		s.fail(w, r, err, "Job not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type timelineResponse struct {
	RootEventID     string                 `json:"root_event_id"`
	EventName       string                 `json:"event_name"`
	StartDate       time.Time              `json:"start_date"`
	EndDate         time.Time              `json:"end_date"`
	DurationMinutes int                    `json:"duration_minutes"`
	ParentID        *string                `json:"parent_id"`
	Description     string                 `json:"description"`
	Parents         []*model.HierarchyNode `json:"parents"`
	Children        []*model.HierarchyNode `json:"children"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := s.eventsUC.Timeline(r.Context(), chi.URLParam(r, "root_event_id"))
	if err != nil {
		s.fail(w, r, err, "Event not found")
		return
	}
	root := tl.Root
	writeJSON(w, http.StatusOK, timelineResponse{
		RootEventID:     root.EventID,
		EventName:       root.EventName,
		StartDate:       root.StartDate,
		EndDate:         root.EndDate,
		DurationMinutes: root.DurationMinutes,
		ParentID:        root.ParentID,
		Description:     root.Description,
		Parents:         tl.Parents,
		Children:        tl.Children,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := model.EventSearch{
		NameContains:   q.Get("event_name"),
		SortBy:         model.ParseSortField(q.Get("sort_by")),
		SortDescending: strings.EqualFold(q.Get("sort_order"), "desc"),
	}

	var err error
	if search.Limit, err = intParam(q.Get("limit"), model.DefaultSearchLimit); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if search.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	if search.StartAfter, err = timeParam(q.Get("start_date_after")); err != nil {
		writeError(w, http.StatusBadRequest, "start_date_after must be an ISO-8601 timestamp")
		return
	}
	if search.EndBefore, err = timeParam(q.Get("end_date_before")); err != nil {
		writeError(w, http.StatusBadRequest, "end_date_before must be an ISO-8601 timestamp")
		return
	}

	page, err := s.eventsUC.Search(r.Context(), search)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type overlapEvent struct {
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type overlapResponse struct {
	Pair            [2]overlapEvent `json:"overlappingEventPairs"`
	OverlapDuration int             `json:"overlap_duration_minutes"`
}

func toOverlapEvent(e *model.Event) overlapEvent {
	return overlapEvent{EventID: e.EventID, EventName: e.EventName, StartDate: e.StartDate, EndDate: e.EndDate}
}

func (s *Server) handleOverlaps(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.eventsUC.Overlaps(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	out := make([]overlapResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, overlapResponse{
			Pair:            [2]overlapEvent{toOverlapEvent(p.First), toOverlapEvent(p.Second)},
			OverlapDuration: p.OverlapMinutes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func timeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := model.ParseISOTimestamp(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
