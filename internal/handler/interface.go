package handler

import (
	"net/http"
)

// DashboardHandlerInterface defines the contract for the dashboard's HTTP
// handlers. This interface enables easy testing, mocking, and dependency
// injection.
type DashboardHandlerInterface interface {
	// PC CRUD operations
	CreatePCHandler(w http.ResponseWriter, r *http.Request)
	ListPCsHandler(w http.ResponseWriter, r *http.Request)
	GetPCHandler(w http.ResponseWriter, r *http.Request)
	UpdatePCHandler(w http.ResponseWriter, r *http.Request)
	DeletePCHandler(w http.ResponseWriter, r *http.Request)

	// Schedule operations
	GetScheduleHandler(w http.ResponseWriter, r *http.Request)
	UpsertScheduleHandler(w http.ResponseWriter, r *http.Request)
	ToggleScheduleHandler(w http.ResponseWriter, r *http.Request)
	SyncScheduleHandler(w http.ResponseWriter, r *http.Request)
	ScheduleActivityHandler(w http.ResponseWriter, r *http.Request)

	// Proxy forwarding to device agents
	ProxyLockHandler(w http.ResponseWriter, r *http.Request)
	ProxyUnlockHandler(w http.ResponseWriter, r *http.Request)
	ProxyStatusHandler(w http.ResponseWriter, r *http.Request)
	ProxyScheduleHandler(w http.ResponseWriter, r *http.Request)

	// Health and monitoring
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure DashboardHandler implements DashboardHandlerInterface at compile time
var _ DashboardHandlerInterface = (*DashboardHandler)(nil)
