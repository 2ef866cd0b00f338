package handler

import (
	"time"

	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// OrderDTO is the JSON representation of a work order.
type OrderDTO struct {
	ID          int64   `json:"id"`
	OrderNumber string  `json:"orderNumber"`
	Name        string  `json:"name"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Name:        o.Name,
		Customer:    o.Customer,
		Status:      string(o.Status),
		DueDate:     formatOptionalTime(o.DueDate),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = toOrderDTO(&orders[i])
	}
	return dtos
}

// ProcessDTO is the JSON representation of a process step.
type ProcessDTO struct {
	ID             int64   `json:"id"`
	OrderID        int64   `json:"orderId"`
	SortOrder      int     `json:"sortOrder"`
	Name           string  `json:"name"`
	PlannedStart   *string `json:"plannedStart"`
	PlannedEnd     *string `json:"plannedEnd"`
	AssignedUserID *int64  `json:"assignedUserId"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func toProcessDTO(p *domain.Process) ProcessDTO {
	return ProcessDTO{
		ID:             p.ID,
		OrderID:        p.OrderID,
		SortOrder:      p.SortOrder,
		Name:           p.Name,
		PlannedStart:   formatOptionalTime(p.PlannedStart),
		PlannedEnd:     formatOptionalTime(p.PlannedEnd),
		AssignedUserID: p.AssignedUserID,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProcessDTOs(processes []domain.Process) []ProcessDTO {
	dtos := make([]ProcessDTO, len(processes))
	for i := range processes {
		dtos[i] = toProcessDTO(&processes[i])
	}
	return dtos
}

// TimeEntryDTO is the JSON representation of a time entry.
type TimeEntryDTO struct {
	ID              int64    `json:"id"`
	UserID          int64    `json:"userId"`
	OrderID         int64    `json:"orderId"`
	ProcessID       *int64   `json:"processId"`
	GroupID         *string  `json:"groupId"`
	Status          string   `json:"status"`
	StartedAt       string   `json:"startedAt"`
	EndedAt         *string  `json:"endedAt"`
	PausedAt        *string  `json:"pausedAt"`
	PausedSeconds   int64    `json:"pausedSeconds"`
	ResumedAt       []string `json:"resumedAt"`
	DurationSeconds *int64   `json:"durationSeconds"`
	Notes           string   `json:"notes"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

func toTimeEntryDTO(e *domain.TimeEntry) TimeEntryDTO {
	resumed := make([]string, len(e.ResumedAt))
	for i, t := range e.ResumedAt {
		resumed[i] = t.Format(time.RFC3339)
	}
	return TimeEntryDTO{
		ID:              e.ID,
		UserID:          e.UserID,
		OrderID:         e.OrderID,
		ProcessID:       e.ProcessID,
		GroupID:         e.GroupID,
		Status:          e.Status,
		StartedAt:       e.StartedAt.Format(time.RFC3339),
		EndedAt:         formatOptionalTime(e.EndedAt),
		PausedAt:        formatOptionalTime(e.PausedAt),
		PausedSeconds:   e.PausedSeconds,
		ResumedAt:       resumed,
		DurationSeconds: e.DurationSeconds,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
}

func toTimeEntryDTOs(entries []domain.TimeEntry) []TimeEntryDTO {
	dtos := make([]TimeEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toTimeEntryDTO(&entries[i])
	}
	return dtos
}

// GroupResultDTO is the JSON representation of a group operation outcome.
type GroupResultDTO struct {
	GroupID   string            `json:"groupId"`
	Succeeded []int64           `json:"succeeded"`
	Failed    []GroupFailureDTO `json:"failed"`
	Entries   []TimeEntryDTO    `json:"entries"`
}

// GroupFailureDTO names one member sub-operation that failed so the caller
// can retry exactly that subset.
type GroupFailureDTO struct {
	EntryID int64  `json:"entryId"`
	OrderID int64  `json:"orderId"`
	Error   string `json:"error"`
}

func toGroupResultDTO(r *service.GroupResult) GroupResultDTO {
	failed := make([]GroupFailureDTO, len(r.Failed))
	for i, f := range r.Failed {
		failed[i] = GroupFailureDTO{EntryID: f.EntryID, OrderID: f.OrderID, Error: f.Err.Error()}
	}
	return GroupResultDTO{
		GroupID:   r.GroupID,
		Succeeded: r.Succeeded,
		Failed:    failed,
		Entries:   toTimeEntryDTOs(r.Entries),
	}
}

// OpenEntryDTO pairs a running entry with its live timer values.
type OpenEntryDTO struct {
	Entry          TimeEntryDTO `json:"entry"`
	ElapsedSeconds int64        `json:"elapsedSeconds"`
	ElapsedDisplay string       `json:"elapsedDisplay"`
}

func toOpenEntryDTO(e *domain.TimeEntry, now time.Time) OpenEntryDTO {
	elapsed := service.LiveElapsed(e, now)
	return OpenEntryDTO{
		Entry:          toTimeEntryDTO(e),
		ElapsedSeconds: elapsed,
		ElapsedDisplay: service.FormatClock(elapsed),
	}
}

// DashboardDTO is the JSON payload of the dashboard summary.
type DashboardDTO struct {
	OpenEntries       []OpenEntryDTO `json:"openEntries"`
	TotalTodaySeconds int64          `json:"totalTodaySeconds"`
	TotalTodayDisplay string         `json:"totalTodayDisplay"`
	ServerTime        string         `json:"serverTime"`
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
