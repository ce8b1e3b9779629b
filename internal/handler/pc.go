package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pc-control-dashboard/internal/agent"
	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/service"
)

// Constants for request timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
)

// ErrorResponse is the consistent JSON error shape for API endpoints
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is the consistent JSON success shape for API endpoints
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DashboardHandler handles the HTTP requests for the dashboard.
type DashboardHandler struct {
	PCs       *service.PCService
	Schedules *service.ScheduleService
	Agent     agent.Client
	Logger    *log.Logger

	// Helper components for cleaner code organization
	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewDashboardHandler creates a new DashboardHandler with dependencies and helpers
func NewDashboardHandler(pcs *service.PCService, schedules *service.ScheduleService, agentClient agent.Client, logger *log.Logger) *DashboardHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &DashboardHandler{
		PCs:            pcs,
		Schedules:      schedules,
		Agent:          agentClient,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreatePCHandler handles the registration of a new PC.
func (h *DashboardHandler) CreatePCHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var input model.PCInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	pc, err := h.PCs.CreatePC(ctx, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "create pc")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "PC created successfully", pc)
}

// ListPCsHandler handles the retrieval of all PCs, ordered by name and
// including their schedules.
func (h *DashboardHandler) ListPCsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	pcs, err := h.PCs.ListPCs(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list pcs")
		return
	}

	if pcs == nil {
		pcs = []model.PC{}
	}

	responseData := h.ResponseHelper.CreateListResponseData(pcs, len(pcs))
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, responseData)
}

// GetPCHandler handles the retrieval of a single PC by ID.
func (h *DashboardHandler) GetPCHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	pc, err := h.PCs.GetPCByID(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get pc")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, pc)
}

// UpdatePCHandler handles a partial update of a PC.
func (h *DashboardHandler) UpdatePCHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	var update model.PCUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	pc, err := h.PCs.UpdatePC(ctx, id, update)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update pc")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "PC updated successfully", pc)
}

// DeletePCHandler handles the deregistration of a PC.
func (h *DashboardHandler) DeletePCHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	if err := h.PCs.DeletePC(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete pc")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "PC deleted successfully", map[string]string{"id": id.String()})
}

// HealthHandler provides a health check endpoint
func (h *DashboardHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := h.ResponseHelper.CreateHealthCheckData()
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Service is healthy", healthData)
}
