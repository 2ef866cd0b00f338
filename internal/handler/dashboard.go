package handler

import (
	"log/slog"
	"net/http"
	"time"

	datastar "github.com/starfederation/datastar-go/datastar"
	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/service"
)

// DashboardHandler serves the worker dashboard: a snapshot of the user's
// open entries and totals, plus a server-sent-events stream that keeps the
// timers ticking without client-side clock math.
type DashboardHandler struct {
	timeclock *service.TimeclockService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(timeclock *service.TimeclockService) *DashboardHandler {
	return &DashboardHandler{timeclock: timeclock}
}

// HandleDashboard returns the dashboard snapshot.
// GET /api/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	dto, err := h.snapshot(r, user.ID, time.Now().UTC())
	if err != nil {
		slog.Error("dashboard snapshot", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// HandleLive streams dashboard updates over SSE. Timer signals are patched
// once per second; every thirtieth tick re-reads the entry list so changes
// made in another tab show up without a reload. The stream ends when the
// client disconnects.
// GET /api/dashboard/live
func (h *DashboardHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sse := datastar.NewSSE(w, r)

	entries, err := h.timeclock.ListOpenByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list open entries for live stream", "error", err, "user_id", user.ID)
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	tick := 0
	for {
		if err := patchTimerSignals(sse, entries, time.Now().UTC()); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		tick++
		if tick%30 == 0 {
			entries, err = h.timeclock.ListOpenByUser(r.Context(), user.ID)
			if err != nil {
				slog.Error("refresh open entries for live stream", "error", err, "user_id", user.ID)
				return
			}
		}
	}
}

// timerSignals is the per-tick SSE payload keyed by entry ID.
type timerSignals struct {
	Timers     map[int64]timerSignal `json:"timers"`
	ServerTime string                `json:"serverTime"`
}

type timerSignal struct {
	Status         string `json:"status"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
	ElapsedDisplay string `json:"elapsedDisplay"`
}

func patchTimerSignals(sse *datastar.ServerSentEventGenerator, entries []domain.TimeEntry, now time.Time) error {
	signals := timerSignals{
		Timers:     make(map[int64]timerSignal, len(entries)),
		ServerTime: now.Format(time.RFC3339),
	}
	for i := range entries {
		e := &entries[i]
		elapsed := service.LiveElapsed(e, now)
		signals.Timers[e.ID] = timerSignal{
			Status:         e.Status,
			ElapsedSeconds: elapsed,
			ElapsedDisplay: service.FormatClock(elapsed),
		}
	}
	return sse.MarshalAndPatchSignals(signals)
}

func (h *DashboardHandler) snapshot(r *http.Request, userID int64, now time.Time) (*DashboardDTO, error) {
	entries, err := h.timeclock.ListOpenByUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	open := make([]OpenEntryDTO, len(entries))
	for i := range entries {
		open[i] = toOpenEntryDTO(&entries[i], now)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	total, err := h.timeclock.TotalForUser(r.Context(), userID, &dayStart, &now)
	if err != nil {
		return nil, err
	}

	return &DashboardDTO{
		OpenEntries:       open,
		TotalTodaySeconds: total,
		TotalTodayDisplay: service.FormatCoarse(total),
		ServerTime:        now.Format(time.RFC3339),
	}, nil
}
