package handler

import (
	"net/http"

	"github.com/werktag/shopfloor/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	orders *service.OrderService,
	processes *service.ProcessService,
	timeclock *service.TimeclockService,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	orderHandler := NewOrderHandler(orders, timeclock)
	processHandler := NewProcessHandler(processes)
	timeclockHandler := NewTimeclockHandler(timeclock)
	dashboardHandler := NewDashboardHandler(timeclock)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authHandler.HandleMe))

	mux.Handle("POST /api/orders", protected(orderHandler.HandleCreate))
	mux.Handle("GET /api/orders", protected(orderHandler.HandleList))
	mux.Handle("GET /api/orders/{id}", protected(orderHandler.HandleGet))
	mux.Handle("PUT /api/orders/{id}", protected(orderHandler.HandleUpdate))
	mux.Handle("DELETE /api/orders/{id}", protected(orderHandler.HandleDelete))
	mux.Handle("GET /api/orders/{id}/total", protected(orderHandler.HandleTotal))

	mux.Handle("POST /api/orders/{id}/processes", protected(processHandler.HandleCreate))
	mux.Handle("GET /api/orders/{id}/processes", protected(processHandler.HandleList))
	mux.Handle("PUT /api/processes/{id}", protected(processHandler.HandleUpdate))
	mux.Handle("PUT /api/processes/{id}/assign", protected(processHandler.HandleAssign))
	mux.Handle("DELETE /api/processes/{id}", protected(processHandler.HandleDelete))

	mux.Handle("POST /api/entries", protected(timeclockHandler.HandleStart))
	mux.Handle("GET /api/entries/open", protected(timeclockHandler.HandleListOpen))
	mux.Handle("GET /api/entries/{id}", protected(timeclockHandler.HandleGet))
	mux.Handle("POST /api/entries/{id}/pause", protected(timeclockHandler.HandlePause))
	mux.Handle("POST /api/entries/{id}/resume", protected(timeclockHandler.HandleResume))
	mux.Handle("POST /api/entries/{id}/stop", protected(timeclockHandler.HandleStop))

	mux.Handle("POST /api/groups", protected(timeclockHandler.HandleStartGroup))
	mux.Handle("GET /api/groups/{groupId}", protected(timeclockHandler.HandleGetGroup))
	mux.Handle("POST /api/groups/{groupId}/pause", protected(timeclockHandler.HandlePauseGroup))
	mux.Handle("POST /api/groups/{groupId}/resume", protected(timeclockHandler.HandleResumeGroup))
	mux.Handle("POST /api/groups/{groupId}/stop", protected(timeclockHandler.HandleStopGroup))

	mux.Handle("GET /api/me/total", protected(timeclockHandler.HandleMyTotal))

	mux.Handle("GET /api/dashboard", protected(dashboardHandler.HandleDashboard))
	mux.Handle("GET /api/dashboard/live", protected(dashboardHandler.HandleLive))
}
