package router

import (
	"github.com/gorilla/mux"

	"pc-control-dashboard/internal/config"
	"pc-control-dashboard/internal/handler"
	"pc-control-dashboard/internal/middleware"
)

// NewRouter creates a new router and sets up the routes with security middleware.
func NewRouter(h handler.DashboardHandlerInterface, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Initialize security middleware
	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)

	// Apply global middleware in order
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.TrustedProxy)
	r.Use(securityMW.RateLimit)
	r.Use(securityMW.RequestTimeout)

	api := r.PathPrefix("/api/v1").Subrouter()

	// PC CRUD operations
	api.HandleFunc("/pcs", h.CreatePCHandler).Methods("POST")
	api.HandleFunc("/pcs", h.ListPCsHandler).Methods("GET")
	api.HandleFunc("/pcs/{id}", h.GetPCHandler).Methods("GET")
	api.HandleFunc("/pcs/{id}", h.UpdatePCHandler).Methods("PUT")
	api.HandleFunc("/pcs/{id}", h.DeletePCHandler).Methods("DELETE")

	// Schedule operations, keyed by the owning PC
	api.HandleFunc("/pcs/{id}/schedule", h.GetScheduleHandler).Methods("GET")
	api.HandleFunc("/pcs/{id}/schedule", h.UpsertScheduleHandler).Methods("PUT")
	api.HandleFunc("/pcs/{id}/schedule/enabled", h.ToggleScheduleHandler).Methods("PATCH")
	api.HandleFunc("/pcs/{id}/schedule/sync", h.SyncScheduleHandler).Methods("POST")
	api.HandleFunc("/pcs/{id}/schedule/activity", h.ScheduleActivityHandler).Methods("GET")

	// Health check
	api.HandleFunc("/health", h.HealthHandler).Methods("GET")

	// Browser-facing proxy to device agents. These sit outside /api/v1 so
	// the paths match what the dashboard UI calls.
	proxy := r.PathPrefix("/pc-proxy").Subrouter()
	proxy.HandleFunc("/lock", h.ProxyLockHandler).Methods("POST")
	proxy.HandleFunc("/unlock", h.ProxyUnlockHandler).Methods("POST")
	proxy.HandleFunc("/status", h.ProxyStatusHandler).Methods("POST")
	proxy.HandleFunc("/schedule", h.ProxyScheduleHandler).Methods("POST")

	return r
}
