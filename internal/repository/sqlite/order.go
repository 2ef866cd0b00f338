package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
)

// OrderRepository implements domain.OrderRepository using SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new SQLite-backed OrderRepository.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db.SqlDB}
}

const orderColumns = `id, order_number, name, customer, status, due_date, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *domain.Order) error {
	return row.Scan(&o.ID, &o.OrderNumber, &o.Name, &o.Customer, &o.Status,
		&o.DueDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	if order.Status == "" {
		order.Status = domain.OrderStatusOpen
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (order_number, name, customer, status, due_date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNumber, order.Name, order.Customer, order.Status,
		order.DueDate, order.Notes, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get order id: %w", err)
	}

	order.ID = id
	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id), o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	o := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, orderNumber), o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query order by number: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY order_number`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET order_number = ?, name = ?, customer = ?, status = ?,
		 due_date = ?, notes = ?, updated_at = ? WHERE id = ?`,
		order.OrderNumber, order.Name, order.Customer, order.Status,
		order.DueDate, order.Notes, now, order.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateOrderNumber
		}
		return fmt.Errorf("update order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
