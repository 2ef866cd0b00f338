package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
	"github.com/werktag/shopfloor/internal/service"
)

// OrderHandler handles work-order HTTP requests.
type OrderHandler struct {
	orders    *service.OrderService
	timeclock *service.TimeclockService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, timeclock *service.TimeclockService) *OrderHandler {
	return &OrderHandler{orders: orders, timeclock: timeclock}
}

type orderRequest struct {
	OrderNumber string  `json:"orderNumber"`
	Name        string  `json:"name"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
	Notes       string  `json:"notes"`
}

func (req *orderRequest) apply(order *domain.Order) error {
	order.OrderNumber = req.OrderNumber
	order.Name = req.Name
	order.Customer = req.Customer
	if req.Status != "" {
		order.Status = domain.OrderStatus(req.Status)
	}
	order.Notes = req.Notes
	if req.DueDate == nil {
		order.DueDate = nil
		return nil
	}
	due, err := time.Parse(time.RFC3339, *req.DueDate)
	if err != nil {
		return err
	}
	order.DueDate = &due
	return nil
}

// HandleCreate creates a work order.
// POST /api/orders
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	order := &domain.Order{Status: domain.OrderStatusOpen}
	if err := req.apply(order); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "dueDate must be RFC 3339.")
		return
	}

	if err := h.orders.Create(r.Context(), order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrderNumber) {
			writeError(w, http.StatusConflict, "An order with that number already exists.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create order", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": toOrderDTO(order)})
}

// HandleList lists all work orders.
// GET /api/orders
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		slog.Error("list orders", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": toOrderDTOs(orders)})
}

// HandleGet returns a single work order.
// GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("get order", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": toOrderDTO(order)})
}

// HandleUpdate updates a work order.
// PUT /api/orders/{id}
func (h *OrderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("get order for update", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	var req orderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := req.apply(order); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "dueDate must be RFC 3339.")
		return
	}

	if err := h.orders.Update(r.Context(), order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrderNumber) {
			writeError(w, http.StatusConflict, "An order with that number already exists.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("update order", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": toOrderDTO(order)})
}

// HandleDelete removes a work order.
// DELETE /api/orders/{id}
func (h *OrderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("delete order", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTotal returns the accumulated completed time for an order.
// GET /api/orders/{id}/total
func (h *OrderHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	if _, err := h.orders.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found.")
			return
		}
		slog.Error("get order for total", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	total, err := h.timeclock.TotalForOrder(r.Context(), id)
	if err != nil {
		slog.Error("total for order", "error", err, "order_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orderId":      id,
		"totalSeconds": total,
		"totalDisplay": service.FormatCoarse(total),
	})
}

// pathID parses an int64 path value.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
