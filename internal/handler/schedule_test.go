package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pc-control-dashboard/internal/agent"
	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/repository"
)

func sampleSchedule(pcID uuid.UUID) *model.Schedule {
	now := time.Now()
	return &model.Schedule{
		ID:          uuid.New(),
		PCID:        pcID,
		Enabled:     true,
		StartTime:   "22:00",
		EndTime:     "07:00",
		SyncPending: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestGetScheduleHandler_Success(t *testing.T) {
	pcID := uuid.New()
	schedRepo := &MockScheduleRepository{
		GetByPCIDFunc: func(ctx context.Context, gotID uuid.UUID) (*model.Schedule, error) {
			assert.Equal(t, pcID, gotID)
			return sampleSchedule(gotID), nil
		},
	}
	h := newTestHandler(&MockPCRepository{}, schedRepo, &MockAgentClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pcs/"+pcID.String()+"/schedule", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.GetScheduleHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pcID.String(), resp["schedule"]["pcId"])
	assert.Equal(t, "22:00", resp["schedule"]["startTime"])
}

func TestGetScheduleHandler_NoneIsNullNotError(t *testing.T) {
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, &MockAgentClient{})

	pcID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pcs/"+pcID.String()+"/schedule", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.GetScheduleHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	value, present := resp["schedule"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestUpsertScheduleHandler_Synced(t *testing.T) {
	pcID := uuid.New()
	markSynced := false

	pcRepo := &MockPCRepository{
		GetPCByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.PC, error) {
			return samplePC(id), nil
		},
	}
	schedRepo := &MockScheduleRepository{
		UpsertFunc: func(ctx context.Context, sched model.Schedule) (*model.Schedule, error) {
			assert.True(t, sched.SyncPending)
			stored := sched
			return &stored, nil
		},
		MarkSyncedFunc: func(ctx context.Context, gotID uuid.UUID) error {
			markSynced = true
			return nil
		},
	}
	agentClient := &MockAgentClient{
		SetScheduleFunc: func(ctx context.Context, ip string, port int, password string, sched agent.ScheduleConfig) (agent.Response, error) {
			assert.Equal(t, "192.168.1.50", ip)
			assert.Equal(t, "secret", password)
			assert.Equal(t, "22:00", sched.Start)
			return agent.Response{"status": "ok"}, nil
		},
	}
	h := newTestHandler(pcRepo, schedRepo, agentClient)

	body := `{"enabled": true, "startTime": "22:00", "endTime": "07:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pcs/"+pcID.String()+"/schedule", bytes.NewBufferString(body))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.UpsertScheduleHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, markSynced)

	message, data := decodeSuccess(t, rec)
	assert.Equal(t, "Schedule saved", message)
	assert.NotContains(t, data, "agentError")

	sched := data["schedule"].(map[string]interface{})
	assert.Equal(t, false, sched["syncPending"])
}

func TestUpsertScheduleHandler_AgentDownStaysPending(t *testing.T) {
	pcID := uuid.New()
	markSynced := false

	pcRepo := &MockPCRepository{
		GetPCByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.PC, error) {
			return samplePC(id), nil
		},
	}
	schedRepo := &MockScheduleRepository{
		MarkSyncedFunc: func(ctx context.Context, gotID uuid.UUID) error {
			markSynced = true
			return nil
		},
	}
	agentClient := &MockAgentClient{
		SetScheduleFunc: func(ctx context.Context, ip string, port int, password string, sched agent.ScheduleConfig) (agent.Response, error) {
			return nil, &agent.UnreachableError{Cause: errors.New("connection refused")}
		},
	}
	h := newTestHandler(pcRepo, schedRepo, agentClient)

	body := `{"enabled": true, "startTime": "22:00", "endTime": "07:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pcs/"+pcID.String()+"/schedule", bytes.NewBufferString(body))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.UpsertScheduleHandler(rec, req)

	// The store write succeeded, so the response is still a 200; the
	// unconfirmed push rides along.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, markSynced)

	message, data := decodeSuccess(t, rec)
	assert.Contains(t, message, "did not confirm")
	assert.Contains(t, data, "agentError")

	sched := data["schedule"].(map[string]interface{})
	assert.Equal(t, true, sched["syncPending"])
}

func TestUpsertScheduleHandler_ValidationError(t *testing.T) {
	agentClient := &MockAgentClient{}
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, agentClient)

	pcID := uuid.New()
	body := `{"enabled": true, "startTime": "25:00", "endTime": "07:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pcs/"+pcID.String()+"/schedule", bytes.NewBufferString(body))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.UpsertScheduleHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, agentClient.Calls)

	resp := decodeError(t, rec)
	assert.Contains(t, resp.Details, "startTime")
}

func TestUpsertScheduleHandler_PCNotFound(t *testing.T) {
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, &MockAgentClient{})

	pcID := uuid.New()
	body := `{"enabled": true, "startTime": "22:00", "endTime": "07:00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pcs/"+pcID.String()+"/schedule", bytes.NewBufferString(body))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.UpsertScheduleHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleScheduleHandler_Success(t *testing.T) {
	pcID := uuid.New()
	var toggledTo *bool

	pcRepo := &MockPCRepository{
		GetPCByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.PC, error) {
			return samplePC(id), nil
		},
	}
	schedRepo := &MockScheduleRepository{
		ToggleEnabledFunc: func(ctx context.Context, gotID uuid.UUID, enabled bool) error {
			toggledTo = &enabled
			return nil
		},
		GetByPCIDFunc: func(ctx context.Context, gotID uuid.UUID) (*model.Schedule, error) {
			sched := sampleSchedule(gotID)
			sched.Enabled = false
			return sched, nil
		},
	}
	h := newTestHandler(pcRepo, schedRepo, &MockAgentClient{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pcs/"+pcID.String()+"/schedule/enabled", bytes.NewBufferString(`{"enabled": false}`))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.ToggleScheduleHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, toggledTo)
	assert.False(t, *toggledTo)

	message, _ := decodeSuccess(t, rec)
	assert.Equal(t, "Schedule toggled", message)
}

func TestToggleScheduleHandler_MissingEnabledFlag(t *testing.T) {
	agentClient := &MockAgentClient{}
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, agentClient)

	pcID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pcs/"+pcID.String()+"/schedule/enabled", bytes.NewBufferString(`{}`))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.ToggleScheduleHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, agentClient.Calls)

	resp := decodeError(t, rec)
	assert.Equal(t, "Missing enabled flag", resp.Error)
}

func TestToggleScheduleHandler_NoScheduleIs404(t *testing.T) {
	schedRepo := &MockScheduleRepository{
		ToggleEnabledFunc: func(ctx context.Context, pcID uuid.UUID, enabled bool) error {
			return repository.ErrScheduleNotFound
		},
	}
	h := newTestHandler(&MockPCRepository{}, schedRepo, &MockAgentClient{})

	pcID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pcs/"+pcID.String()+"/schedule/enabled", bytes.NewBufferString(`{"enabled": true}`))
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.ToggleScheduleHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestSyncScheduleHandler_Success(t *testing.T) {
	pcID := uuid.New()
	markSynced := false

	pcRepo := &MockPCRepository{
		GetPCByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.PC, error) {
			return samplePC(id), nil
		},
	}
	schedRepo := &MockScheduleRepository{
		GetByPCIDFunc: func(ctx context.Context, gotID uuid.UUID) (*model.Schedule, error) {
			return sampleSchedule(gotID), nil
		},
		MarkSyncedFunc: func(ctx context.Context, gotID uuid.UUID) error {
			markSynced = true
			return nil
		},
	}
	h := newTestHandler(pcRepo, schedRepo, &MockAgentClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pcs/"+pcID.String()+"/schedule/sync", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.SyncScheduleHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, markSynced)

	message, _ := decodeSuccess(t, rec)
	assert.Equal(t, "Schedule synced", message)
}

func TestSyncScheduleHandler_NoSchedule(t *testing.T) {
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, &MockAgentClient{})

	pcID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pcs/"+pcID.String()+"/schedule/sync", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.SyncScheduleHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleActivityHandler_ActiveWindow(t *testing.T) {
	pcID := uuid.New()
	schedRepo := &MockScheduleRepository{
		GetByPCIDFunc: func(ctx context.Context, gotID uuid.UUID) (*model.Schedule, error) {
			sched := sampleSchedule(gotID)
			sched.StartTime = "00:00"
			sched.EndTime = "23:59"
			return sched, nil
		},
	}
	h := newTestHandler(&MockPCRepository{}, schedRepo, &MockAgentClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pcs/"+pcID.String()+"/schedule/activity", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.ScheduleActivityHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["active"])
	assert.NotEmpty(t, resp["checkedAt"])
}

func TestScheduleActivityHandler_NoScheduleNeverActive(t *testing.T) {
	h := newTestHandler(&MockPCRepository{}, &MockScheduleRepository{}, &MockAgentClient{})

	pcID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pcs/"+pcID.String()+"/schedule/activity", nil)
	req = mux.SetURLVars(req, map[string]string{"id": pcID.String()})
	rec := httptest.NewRecorder()

	h.ScheduleActivityHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["active"])
}
