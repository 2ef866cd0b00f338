package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "open"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDone       OrderStatus = "done"
)

// Order represents a manufacturing work order.
type Order struct {
	ID          int64
	OrderNumber string
	Name        string
	Customer    string
	Status      OrderStatus
	DueDate     *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderRepository defines persistence operations for work orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id int64) error
}
