package service

import (
	"context"
	"fmt"

	"github.com/werktag/shopfloor/internal/domain"
)

// ProcessService handles process step CRUD and resource assignment.
type ProcessService struct {
	processes domain.ProcessRepository
	orders    domain.OrderRepository
	users     domain.UserRepository
}

// NewProcessService creates a new ProcessService.
func NewProcessService(processes domain.ProcessRepository, orders domain.OrderRepository, users domain.UserRepository) *ProcessService {
	return &ProcessService{processes: processes, orders: orders, users: users}
}

// Create validates and persists a new process step for an order.
func (s *ProcessService) Create(ctx context.Context, process *domain.Process) error {
	if process.Name == "" {
		return fmt.Errorf("%w: process name is required", domain.ErrInvalidInput)
	}
	if _, err := s.orders.GetByID(ctx, process.OrderID); err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if err := s.validatePlanning(process); err != nil {
		return err
	}
	return s.processes.Create(ctx, process)
}

// GetByID returns a process step by ID.
func (s *ProcessService) GetByID(ctx context.Context, id int64) (*domain.Process, error) {
	return s.processes.GetByID(ctx, id)
}

// ListByOrder returns the process steps of an order in schedule order.
func (s *ProcessService) ListByOrder(ctx context.Context, orderID int64) ([]domain.Process, error) {
	return s.processes.ListByOrder(ctx, orderID)
}

// Update validates and persists changes to a process step.
func (s *ProcessService) Update(ctx context.Context, process *domain.Process) error {
	if process.Name == "" {
		return fmt.Errorf("%w: process name is required", domain.ErrInvalidInput)
	}
	if err := s.validatePlanning(process); err != nil {
		return err
	}
	return s.processes.Update(ctx, process)
}

// Assign sets or clears the worker assigned to a process step.
func (s *ProcessService) Assign(ctx context.Context, processID int64, userID *int64) (*domain.Process, error) {
	process, err := s.processes.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		if _, err := s.users.GetByID(ctx, *userID); err != nil {
			return nil, fmt.Errorf("get assignee: %w", err)
		}
	}
	process.AssignedUserID = userID
	if err := s.processes.Update(ctx, process); err != nil {
		return nil, fmt.Errorf("update process: %w", err)
	}
	return process, nil
}

// Delete removes a process step.
func (s *ProcessService) Delete(ctx context.Context, id int64) error {
	return s.processes.Delete(ctx, id)
}

func (s *ProcessService) validatePlanning(process *domain.Process) error {
	if process.PlannedStart != nil && process.PlannedEnd != nil &&
		process.PlannedEnd.Before(*process.PlannedStart) {
		return fmt.Errorf("%w: planned end is before planned start", domain.ErrInvalidInput)
	}
	return nil
}
