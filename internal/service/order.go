package service

import (
	"context"
	"fmt"

	"github.com/werktag/shopfloor/internal/domain"
)

// OrderService handles work order CRUD and validation. Orders are shared
// across all users of the shop floor rather than owned per user.
type OrderService struct {
	orders domain.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders domain.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// Create validates and persists a new work order.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) error {
	if order.OrderNumber == "" || order.Name == "" {
		return fmt.Errorf("%w: order number and name are required", domain.ErrInvalidInput)
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusOpen
	}
	if !validOrderStatus(order.Status) {
		return fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, order.Status)
	}
	return s.orders.Create(ctx, order)
}

// GetByID returns a work order by ID.
func (s *OrderService) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all work orders ordered by order number.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Update validates and persists changes to a work order.
func (s *OrderService) Update(ctx context.Context, order *domain.Order) error {
	if order.OrderNumber == "" || order.Name == "" {
		return fmt.Errorf("%w: order number and name are required", domain.ErrInvalidInput)
	}
	if !validOrderStatus(order.Status) {
		return fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, order.Status)
	}
	return s.orders.Update(ctx, order)
}

// Delete removes a work order and, via the schema, its process steps.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

func validOrderStatus(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusOpen, domain.OrderStatusInProgress, domain.OrderStatusDone:
		return true
	}
	return false
}
