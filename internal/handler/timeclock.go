package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/service"
)

// TimeclockHandler handles time-entry lifecycle HTTP requests, for single
// entries and for groups.
type TimeclockHandler struct {
	timeclock *service.TimeclockService
}

// NewTimeclockHandler creates a new TimeclockHandler.
func NewTimeclockHandler(timeclock *service.TimeclockService) *TimeclockHandler {
	return &TimeclockHandler{timeclock: timeclock}
}

// HandleStart opens a new time entry for the authenticated user.
// POST /api/entries
// Request: {"orderId":1,"processId":2,"notes":"..."}
func (h *TimeclockHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		OrderID   int64  `json:"orderId"`
		ProcessID *int64 `json:"processId"`
		Notes     string `json:"notes"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	entry, err := h.timeclock.Start(r.Context(), user.ID, req.OrderID, service.StartOptions{
		ProcessID: req.ProcessID,
		Notes:     req.Notes,
	})
	if err != nil {
		writeTimeclockError(w, err, "start entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"entry": toTimeEntryDTO(entry)})
}

// HandleListOpen lists the authenticated user's open entries with live
// elapsed values.
// GET /api/entries/open
func (h *TimeclockHandler) HandleListOpen(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	entries, err := h.timeclock.ListOpenByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list open entries", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	now := time.Now().UTC()
	open := make([]OpenEntryDTO, len(entries))
	for i := range entries {
		open[i] = toOpenEntryDTO(&entries[i], now)
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": open})
}

// HandleGet returns a single entry owned by the authenticated user.
// GET /api/entries/{id}
func (h *TimeclockHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found.")
		return
	}

	entry, err := h.timeclock.GetByID(r.Context(), id, user.ID)
	if err != nil {
		writeTimeclockError(w, err, "get entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entry": toTimeEntryDTO(entry)})
}

// HandlePause pauses an active entry.
// POST /api/entries/{id}/pause
func (h *TimeclockHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timeclock.Pause, "pause entry")
}

// HandleResume resumes a paused entry.
// POST /api/entries/{id}/resume
func (h *TimeclockHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.timeclock.Resume, "resume entry")
}

func (h *TimeclockHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, entryID, userID int64) (*domain.TimeEntry, error),
	name string,
) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found.")
		return
	}

	entry, err := op(r.Context(), id, user.ID)
	if err != nil {
		writeTimeclockError(w, err, name)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entry": toTimeEntryDTO(entry)})
}

// HandleStop completes an entry.
// POST /api/entries/{id}/stop
// Request (all optional): {"endedAt":"...","notes":"..."}
func (h *TimeclockHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Entry not found.")
		return
	}

	opts, err := readStopOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	entry, err := h.timeclock.Stop(r.Context(), id, user.ID, opts)
	if err != nil {
		writeTimeclockError(w, err, "stop entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entry": toTimeEntryDTO(entry)})
}

// HandleMyTotal reports the authenticated user's completed time, optionally
// bounded by from/to query parameters (RFC 3339, matched against start time).
// GET /api/me/total?from=...&to=...
func (h *TimeclockHandler) HandleMyTotal(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	from, err := queryTime(r, "from")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "from must be RFC 3339.")
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "to must be RFC 3339.")
		return
	}

	total, err := h.timeclock.TotalForUser(r.Context(), user.ID, from, to)
	if err != nil {
		slog.Error("total for user", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalSeconds": total,
		"totalDisplay": service.FormatCoarse(total),
	})
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// HandleStartGroup starts one entry per order under a shared group ID.
// POST /api/groups
// Request: {"orderIds":[1,2,3],"notes":"..."}
func (h *TimeclockHandler) HandleStartGroup(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		OrderIDs []int64 `json:"orderIds"`
		Notes    string  `json:"notes"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.timeclock.StartGroup(r.Context(), user.ID, req.OrderIDs, service.StartOptions{Notes: req.Notes})
	if err != nil {
		writeTimeclockError(w, err, "start group")
		return
	}

	writeJSON(w, groupStatusCode(result, http.StatusCreated), map[string]any{"result": toGroupResultDTO(result)})
}

// HandleGetGroup returns the members of a group plus its derived status.
// GET /api/groups/{groupId}
func (h *TimeclockHandler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	groupID := r.PathValue("groupId")

	entries, status, err := h.timeclock.GetGroup(r.Context(), groupID, user.ID)
	if err != nil {
		writeTimeclockError(w, err, "get group")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"groupId": groupID,
		"status":  status,
		"entries": toTimeEntryDTOs(entries),
	})
}

// HandlePauseGroup pauses every active member of a group.
// POST /api/groups/{groupId}/pause
func (h *TimeclockHandler) HandlePauseGroup(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	groupID := r.PathValue("groupId")

	result, err := h.timeclock.PauseGroup(r.Context(), groupID, user.ID)
	if err != nil {
		writeTimeclockError(w, err, "pause group")
		return
	}

	writeJSON(w, groupStatusCode(result, http.StatusOK), map[string]any{"result": toGroupResultDTO(result)})
}

// HandleResumeGroup resumes every paused member of a group.
// POST /api/groups/{groupId}/resume
func (h *TimeclockHandler) HandleResumeGroup(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	groupID := r.PathValue("groupId")

	result, err := h.timeclock.ResumeGroup(r.Context(), groupID, user.ID)
	if err != nil {
		writeTimeclockError(w, err, "resume group")
		return
	}

	writeJSON(w, groupStatusCode(result, http.StatusOK), map[string]any{"result": toGroupResultDTO(result)})
}

// HandleStopGroup completes every open member of a group.
// POST /api/groups/{groupId}/stop
// Request (all optional): {"endedAt":"...","notes":"..."}
func (h *TimeclockHandler) HandleStopGroup(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	groupID := r.PathValue("groupId")

	opts, err := readStopOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.timeclock.StopGroup(r.Context(), groupID, user.ID, opts)
	if err != nil {
		writeTimeclockError(w, err, "stop group")
		return
	}

	writeJSON(w, groupStatusCode(result, http.StatusOK), map[string]any{"result": toGroupResultDTO(result)})
}

// readStopOptions decodes the optional stop body. An empty body is valid.
func readStopOptions(r *http.Request) (service.StopOptions, error) {
	var req struct {
		EndedAt *string `json:"endedAt"`
		Notes   *string `json:"notes"`
	}
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return service.StopOptions{}, err
	}

	opts := service.StopOptions{Notes: req.Notes}
	if req.EndedAt != nil {
		ended, err := time.Parse(time.RFC3339, *req.EndedAt)
		if err != nil {
			return service.StopOptions{}, err
		}
		opts.EndedAt = &ended
	}
	return opts, nil
}

// groupStatusCode picks the response code for a group operation: the happy
// code when every member succeeded, 207 when the result is partial.
func groupStatusCode(result *service.GroupResult, ok int) int {
	if len(result.Failed) > 0 {
		return http.StatusMultiStatus
	}
	return ok
}

// writeTimeclockError maps timeclock service errors to HTTP responses.
func writeTimeclockError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrUnauthorized):
		// Entries of other users read as absent, not forbidden.
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrDuplicateActiveEntry):
		writeError(w, http.StatusConflict, "An open entry for this order already exists.")
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrMissingPauseTimestamp):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
