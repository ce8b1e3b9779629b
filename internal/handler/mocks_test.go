package handler

import (
	"context"
	"log"

	"github.com/google/uuid"

	"pc-control-dashboard/internal/agent"
	"pc-control-dashboard/internal/events"
	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/notification"
	"pc-control-dashboard/internal/repository"
	"pc-control-dashboard/internal/service"
)

// Mock implementations for testing

// MockPCRepository is a mock implementation of repository.PCRepository
type MockPCRepository struct {
	CreatePCFunc  func(ctx context.Context, pc model.PC) error
	GetAllPCsFunc func(ctx context.Context) ([]model.PC, error)
	GetPCByIDFunc func(ctx context.Context, id uuid.UUID) (*model.PC, error)
	UpdatePCFunc  func(ctx context.Context, id uuid.UUID, update model.PCUpdate) error
	DeletePCFunc  func(ctx context.Context, id uuid.UUID) error
}

func (m *MockPCRepository) CreatePC(ctx context.Context, pc model.PC) error {
	if m.CreatePCFunc != nil {
		return m.CreatePCFunc(ctx, pc)
	}
	return nil
}

func (m *MockPCRepository) GetAllPCs(ctx context.Context) ([]model.PC, error) {
	if m.GetAllPCsFunc != nil {
		return m.GetAllPCsFunc(ctx)
	}
	return []model.PC{}, nil
}

func (m *MockPCRepository) GetPCByID(ctx context.Context, id uuid.UUID) (*model.PC, error) {
	if m.GetPCByIDFunc != nil {
		return m.GetPCByIDFunc(ctx, id)
	}
	return nil, repository.ErrPCNotFound
}

func (m *MockPCRepository) UpdatePC(ctx context.Context, id uuid.UUID, update model.PCUpdate) error {
	if m.UpdatePCFunc != nil {
		return m.UpdatePCFunc(ctx, id, update)
	}
	return nil
}

func (m *MockPCRepository) DeletePC(ctx context.Context, id uuid.UUID) error {
	if m.DeletePCFunc != nil {
		return m.DeletePCFunc(ctx, id)
	}
	return nil
}

// MockScheduleRepository is a mock implementation of repository.ScheduleRepository
type MockScheduleRepository struct {
	GetByPCIDFunc     func(ctx context.Context, pcID uuid.UUID) (*model.Schedule, error)
	UpsertFunc        func(ctx context.Context, schedule model.Schedule) (*model.Schedule, error)
	ToggleEnabledFunc func(ctx context.Context, pcID uuid.UUID, enabled bool) error
	MarkSyncedFunc    func(ctx context.Context, pcID uuid.UUID) error
}

func (m *MockScheduleRepository) GetByPCID(ctx context.Context, pcID uuid.UUID) (*model.Schedule, error) {
	if m.GetByPCIDFunc != nil {
		return m.GetByPCIDFunc(ctx, pcID)
	}
	return nil, repository.ErrScheduleNotFound
}

func (m *MockScheduleRepository) Upsert(ctx context.Context, schedule model.Schedule) (*model.Schedule, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, schedule)
	}
	stored := schedule
	return &stored, nil
}

func (m *MockScheduleRepository) ToggleEnabled(ctx context.Context, pcID uuid.UUID, enabled bool) error {
	if m.ToggleEnabledFunc != nil {
		return m.ToggleEnabledFunc(ctx, pcID, enabled)
	}
	return nil
}

func (m *MockScheduleRepository) MarkSynced(ctx context.Context, pcID uuid.UUID) error {
	if m.MarkSyncedFunc != nil {
		return m.MarkSyncedFunc(ctx, pcID)
	}
	return nil
}

// MockAgentClient is a mock implementation of agent.Client. Calls counts
// outbound attempts so tests can assert none happened.
type MockAgentClient struct {
	Calls           int
	LockFunc        func(ctx context.Context, ip string, port int, password string) (agent.Response, error)
	UnlockFunc      func(ctx context.Context, ip string, port int, password string) (agent.Response, error)
	StatusFunc      func(ctx context.Context, ip string, port int) (agent.Response, error)
	SetScheduleFunc func(ctx context.Context, ip string, port int, password string, schedule agent.ScheduleConfig) (agent.Response, error)
}

func (m *MockAgentClient) Lock(ctx context.Context, ip string, port int, password string) (agent.Response, error) {
	m.Calls++
	if m.LockFunc != nil {
		return m.LockFunc(ctx, ip, port, password)
	}
	return agent.Response{"status": "locked"}, nil
}

func (m *MockAgentClient) Unlock(ctx context.Context, ip string, port int, password string) (agent.Response, error) {
	m.Calls++
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, ip, port, password)
	}
	return agent.Response{"status": "unlocked"}, nil
}

func (m *MockAgentClient) Status(ctx context.Context, ip string, port int) (agent.Response, error) {
	m.Calls++
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, ip, port)
	}
	return agent.Response{"locked": false}, nil
}

func (m *MockAgentClient) SetSchedule(ctx context.Context, ip string, port int, password string, schedule agent.ScheduleConfig) (agent.Response, error) {
	m.Calls++
	if m.SetScheduleFunc != nil {
		return m.SetScheduleFunc(ctx, ip, port, password, schedule)
	}
	return agent.Response{"status": "ok"}, nil
}

// newTestHandler wires mocks through real services into a handler, the way
// main does with real dependencies.
func newTestHandler(pcRepo *MockPCRepository, schedRepo *MockScheduleRepository, agentClient *MockAgentClient) *DashboardHandler {
	logger := log.Default()
	hub := events.NewHub()
	notifier := notification.NewNotifier(notification.Config{}, logger)

	pcService := service.NewPCService(pcRepo, hub, notifier, logger)
	scheduleService := service.NewScheduleService(schedRepo, pcRepo, agentClient, hub, notifier, logger)

	return NewDashboardHandler(pcService, scheduleService, agentClient, logger)
}
