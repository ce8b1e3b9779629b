package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"pc-control-dashboard/internal/agent"
	"pc-control-dashboard/internal/events"
	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/notification"
	"pc-control-dashboard/internal/repository"
	errs "pc-control-dashboard/pkg/errors"
	"pc-control-dashboard/pkg/validation"
)

// ScheduleService gatekeeps schedule writes and coordinates the two-phase
// write: the record store first, then the device agent. When the second
// phase fails the stored row stays sync-pending and the result carries the
// agent error instead of pretending the write converged.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	pcs       repository.PCRepository
	agent     agent.Client
	hub       *events.Hub
	notifier  notification.Notifier
	logger    *log.Logger
}

// ScheduleSyncResult is the outcome of a schedule write. AgentError is
// non-nil when the store accepted the schedule but the device agent did
// not confirm it; Schedule.SyncPending is true in that case.
type ScheduleSyncResult struct {
	Schedule   *model.Schedule
	AgentError *errs.AppError
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	schedules repository.ScheduleRepository,
	pcs repository.PCRepository,
	agentClient agent.Client,
	hub *events.Hub,
	notifier notification.Notifier,
	logger *log.Logger,
) *ScheduleService {
	if logger == nil {
		logger = log.Default()
	}
	return &ScheduleService{
		schedules: schedules,
		pcs:       pcs,
		agent:     agentClient,
		hub:       hub,
		notifier:  notifier,
		logger:    logger,
	}
}

// GetScheduleByPCID returns the schedule for a PC, or (nil, nil) when none
// is configured. Absence is not an error; store failures are.
func (s *ScheduleService) GetScheduleByPCID(ctx context.Context, pcID uuid.UUID) (*model.Schedule, error) {
	sched, err := s.schedules.GetByPCID(ctx, pcID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, nil
		}
		s.logger.Printf("Error fetching schedule for PC %s: %v", pcID, err)
		return nil, errs.StoreError("Failed to fetch schedule", err)
	}
	return sched, nil
}

// UpsertSchedule validates the input and creates or updates the schedule
// keyed by pcId, then pushes it to the device agent.
func (s *ScheduleService) UpsertSchedule(ctx context.Context, input model.ScheduleInput) (*ScheduleSyncResult, error) {
	if fieldErrors := validation.ValidateScheduleInput(input); len(fieldErrors) > 0 {
		s.logger.Printf("Schedule validation failed for PC %s: %v", input.PCID, fieldErrors)
		return nil, errs.ValidationError(fieldErrors)
	}

	pc, err := s.pcs.GetPCByID(ctx, input.PCID)
	if err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return nil, errs.NotFoundError("PC")
		}
		s.logger.Printf("Error fetching PC %s for schedule upsert: %v", input.PCID, err)
		return nil, errs.StoreError("Failed to save schedule", err)
	}

	stored, err := s.schedules.Upsert(ctx, model.Schedule{
		ID:          uuid.New(),
		PCID:        input.PCID,
		Enabled:     input.Enabled,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		SyncPending: true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrPCMissing) {
			return nil, errs.NotFoundError("PC")
		}
		s.logger.Printf("Error upserting schedule for PC %s: %v", input.PCID, err)
		return nil, errs.StoreError("Failed to save schedule", err)
	}

	// The store write succeeded; the list view is stale either way.
	s.hub.Publish("schedule", "upsert")

	result := s.pushToAgent(ctx, pc, stored)

	s.logger.Printf("Schedule saved for PC %s (%s-%s, enabled=%t, pending=%t)",
		pc.ID, stored.StartTime, stored.EndTime, stored.Enabled, result.Schedule.SyncPending)

	return result, nil
}

// ToggleScheduleEnabled flips only the enabled flag on an existing
// schedule. It never creates one, then pushes the new state to the agent.
func (s *ScheduleService) ToggleScheduleEnabled(ctx context.Context, pcID uuid.UUID, enabled bool) (*ScheduleSyncResult, error) {
	if err := s.schedules.ToggleEnabled(ctx, pcID, enabled); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, errs.NotFoundError("Schedule")
		}
		s.logger.Printf("Error toggling schedule for PC %s: %v", pcID, err)
		return nil, errs.StoreError("Failed to toggle schedule status", err)
	}

	s.hub.Publish("schedule", "toggle")

	stored, err := s.schedules.GetByPCID(ctx, pcID)
	if err != nil {
		s.logger.Printf("Error fetching toggled schedule for PC %s: %v", pcID, err)
		return nil, errs.StoreError("Failed to fetch schedule", err)
	}

	pc, err := s.pcs.GetPCByID(ctx, pcID)
	if err != nil {
		s.logger.Printf("Error fetching PC %s for schedule toggle: %v", pcID, err)
		return nil, errs.StoreError("Failed to fetch PC", err)
	}

	result := s.pushToAgent(ctx, pc, stored)

	s.logger.Printf("Schedule for PC %s toggled to enabled=%t (pending=%t)",
		pcID, enabled, result.Schedule.SyncPending)

	return result, nil
}

// SyncSchedule re-pushes a stored schedule to the device agent. It exists
// so a schedule left pending by a failed second phase can be reconciled
// explicitly; nothing retries automatically.
func (s *ScheduleService) SyncSchedule(ctx context.Context, pcID uuid.UUID) (*ScheduleSyncResult, error) {
	stored, err := s.schedules.GetByPCID(ctx, pcID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, errs.NotFoundError("Schedule")
		}
		s.logger.Printf("Error fetching schedule for PC %s: %v", pcID, err)
		return nil, errs.StoreError("Failed to fetch schedule", err)
	}

	pc, err := s.pcs.GetPCByID(ctx, pcID)
	if err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return nil, errs.NotFoundError("PC")
		}
		s.logger.Printf("Error fetching PC %s for schedule sync: %v", pcID, err)
		return nil, errs.StoreError("Failed to fetch PC", err)
	}

	result := s.pushToAgent(ctx, pc, stored)
	if result.AgentError == nil {
		s.hub.Publish("schedule", "sync")
	}

	return result, nil
}

// pushToAgent performs the second phase of a schedule write. On agent
// confirmation the row is marked synced; on failure it stays pending and
// the operator gets a warning.
func (s *ScheduleService) pushToAgent(ctx context.Context, pc *model.PC, stored *model.Schedule) *ScheduleSyncResult {
	_, err := s.agent.SetSchedule(ctx, pc.IPAddress, pc.Port, pc.Password.Reveal(), agent.ScheduleConfig{
		Enabled: stored.Enabled,
		Start:   stored.StartTime,
		End:     stored.EndTime,
	})
	if err != nil {
		appErr := translateAgentError(err)
		s.logger.Printf("Schedule push to agent %s:%d failed, schedule stays pending: %v", pc.IPAddress, pc.Port, appErr)
		go s.notifyPending(pc.Name)
		return &ScheduleSyncResult{Schedule: stored, AgentError: appErr}
	}

	if err := s.schedules.MarkSynced(ctx, pc.ID); err != nil {
		s.logger.Printf("Error marking schedule synced for PC %s: %v", pc.ID, err)
		return &ScheduleSyncResult{Schedule: stored, AgentError: errs.StoreError("Failed to mark schedule synced", err)}
	}
	stored.SyncPending = false

	return &ScheduleSyncResult{Schedule: stored}
}

// translateAgentError maps agent client errors into the error taxonomy.
func translateAgentError(err error) *errs.AppError {
	var agentErr *agent.Error
	if errors.As(err, &agentErr) {
		return errs.AgentError(agentErr.StatusCode, agentErr.Message)
	}
	var unreachable *agent.UnreachableError
	if errors.As(err, &unreachable) {
		return errs.AgentUnreachableError(unreachable.Cause)
	}
	return errs.WrapError(err, "device agent call failed")
}

func (s *ScheduleService) notifyPending(pcName string) {
	n := notification.Notification{
		Level:   notification.LevelWarning,
		PCName:  pcName,
		Message: fmt.Sprintf("Schedule for PC %q saved but not confirmed by its device agent", pcName),
	}
	if err := s.notifier.SendNotification(n); err != nil {
		s.logger.Printf("Failed to send pending-sync notification for PC %s: %v", pcName, err)
	}
}
