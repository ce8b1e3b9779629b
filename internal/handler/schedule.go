package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/schedule"
	"pc-control-dashboard/internal/service"
)

// scheduleRequest is the body for upserting a schedule; the PC id comes
// from the path.
type scheduleRequest struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// toggleRequest is the body for toggling a schedule. Enabled is a pointer
// so a missing field is distinguishable from false.
type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// GetScheduleHandler returns the schedule for a PC. A PC without a schedule
// yields 200 with a null schedule: absence is not an error.
func (h *DashboardHandler) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	pcID, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	sched, err := h.Schedules.GetScheduleByPCID(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get schedule")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"schedule": sched,
	})
}

// UpsertScheduleHandler creates or replaces the schedule for a PC and
// pushes it to the device agent. When the push fails the response still
// reports the stored schedule, flagged sync-pending alongside the agent
// error.
func (h *DashboardHandler) UpsertScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	vars := mux.Vars(r)
	pcID, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	result, err := h.Schedules.UpsertSchedule(ctx, model.ScheduleInput{
		PCID:      pcID,
		Enabled:   req.Enabled,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "upsert schedule")
		return
	}

	h.sendScheduleSyncResponse(w, "Schedule saved", result)
}

// ToggleScheduleHandler flips the enabled flag on an existing schedule.
// There is no implicit creation: a PC without a schedule yields 404.
func (h *DashboardHandler) ToggleScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	vars := mux.Vars(r)
	pcID, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}
	if req.Enabled == nil {
		h.ErrorHandler.SendErrorResponse(w, http.StatusBadRequest, "Missing enabled flag", "BAD_REQUEST", nil)
		return
	}

	result, err := h.Schedules.ToggleScheduleEnabled(ctx, pcID, *req.Enabled)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "toggle schedule")
		return
	}

	h.sendScheduleSyncResponse(w, "Schedule toggled", result)
}

// SyncScheduleHandler re-pushes a stored schedule to its device agent, for
// reconciling a schedule left pending by an earlier failed push.
func (h *DashboardHandler) SyncScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	vars := mux.Vars(r)
	pcID, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	result, err := h.Schedules.SyncSchedule(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "sync schedule")
		return
	}

	h.sendScheduleSyncResponse(w, "Schedule synced", result)
}

// ScheduleActivityHandler reports whether the PC's lock window covers the
// current wall-clock time. Display-only derived state; a PC without a
// schedule is simply never active.
func (h *DashboardHandler) ScheduleActivityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	pcID, valid := h.ErrorHandler.ParseAndValidateUUID(w, vars["id"])
	if !valid {
		return
	}

	sched, err := h.Schedules.GetScheduleByPCID(ctx, pcID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get schedule activity")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"active":    schedule.IsActiveAt(sched, time.Now()),
		"checkedAt": time.Now().UTC(),
	})
}

// sendScheduleSyncResponse reports a two-phase schedule write. The store
// write already succeeded; an unconfirmed agent push rides along instead of
// failing the response.
func (h *DashboardHandler) sendScheduleSyncResponse(w http.ResponseWriter, message string, result *service.ScheduleSyncResult) {
	data := map[string]interface{}{
		"schedule": result.Schedule,
	}
	if result.AgentError != nil {
		message = message + ", but the device agent did not confirm"
		data["agentError"] = result.AgentError.Message
	}
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, message, data)
}
