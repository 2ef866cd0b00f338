package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/service"
)

// ProcessHandler handles process-step HTTP requests.
type ProcessHandler struct {
	processes *service.ProcessService
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(processes *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{processes: processes}
}

type processRequest struct {
	SortOrder      int     `json:"sortOrder"`
	Name           string  `json:"name"`
	PlannedStart   *string `json:"plannedStart"`
	PlannedEnd     *string `json:"plannedEnd"`
	AssignedUserID *int64  `json:"assignedUserId"`
}

func (req *processRequest) apply(process *domain.Process) error {
	process.SortOrder = req.SortOrder
	process.Name = req.Name
	process.AssignedUserID = req.AssignedUserID

	var err error
	if process.PlannedStart, err = parseOptionalTime(req.PlannedStart); err != nil {
		return err
	}
	if process.PlannedEnd, err = parseOptionalTime(req.PlannedEnd); err != nil {
		return err
	}
	return nil
}

// HandleCreate creates a process step on an order.
// POST /api/orders/{id}/processes
func (h *ProcessHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	var req processRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	process := &domain.Process{OrderID: orderID}
	if err := req.apply(process); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Planned times must be RFC 3339.")
		return
	}

	if err := h.processes.Create(r.Context(), process); err != nil {
		h.writeServiceError(w, err, "create process")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"process": toProcessDTO(process)})
}

// HandleList lists the process steps of an order.
// GET /api/orders/{id}/processes
func (h *ProcessHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	processes, err := h.processes.ListByOrder(r.Context(), orderID)
	if err != nil {
		h.writeServiceError(w, err, "list processes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"processes": toProcessDTOs(processes)})
}

// HandleUpdate updates a process step.
// PUT /api/processes/{id}
func (h *ProcessHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Process not found.")
		return
	}

	process, err := h.processes.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "get process for update")
		return
	}

	var req processRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := req.apply(process); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Planned times must be RFC 3339.")
		return
	}

	if err := h.processes.Update(r.Context(), process); err != nil {
		h.writeServiceError(w, err, "update process")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"process": toProcessDTO(process)})
}

// HandleAssign assigns a process step to a worker, or clears the assignment.
// PUT /api/processes/{id}/assign
// Request: {"userId": 3} or {"userId": null}
func (h *ProcessHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Process not found.")
		return
	}

	var req struct {
		UserID *int64 `json:"userId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	process, err := h.processes.Assign(r.Context(), id, req.UserID)
	if err != nil {
		h.writeServiceError(w, err, "assign process")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"process": toProcessDTO(process)})
}

// HandleDelete removes a process step.
// DELETE /api/processes/{id}
func (h *ProcessHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Process not found.")
		return
	}

	if err := h.processes.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "delete process")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProcessHandler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
