package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"pc-control-dashboard/internal/events"
	"pc-control-dashboard/internal/model"
	"pc-control-dashboard/internal/notification"
	"pc-control-dashboard/internal/repository"
	errs "pc-control-dashboard/pkg/errors"
	"pc-control-dashboard/pkg/validation"
)

// Default device agent port, applied when a registration omits the port.
const DefaultAgentPort = 8080

// PCService gatekeeps all writes to PC records with schema validation and
// raises the view-invalidation signal after every successful write.
type PCService struct {
	repo     repository.PCRepository
	hub      *events.Hub
	notifier notification.Notifier
	logger   *log.Logger
}

// NewPCService creates a new PC service
func NewPCService(repo repository.PCRepository, hub *events.Hub, notifier notification.Notifier, logger *log.Logger) *PCService {
	if logger == nil {
		logger = log.Default()
	}
	return &PCService{
		repo:     repo,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
	}
}

// ListPCs retrieves all PCs ordered by name, schedules included.
func (s *PCService) ListPCs(ctx context.Context) ([]model.PC, error) {
	pcs, err := s.repo.GetAllPCs(ctx)
	if err != nil {
		s.logger.Printf("Error fetching PCs: %v", err)
		return nil, errs.StoreError("Failed to fetch PCs", err)
	}
	return pcs, nil
}

// GetPCByID retrieves a single PC by its ID.
func (s *PCService) GetPCByID(ctx context.Context, id uuid.UUID) (*model.PC, error) {
	pc, err := s.repo.GetPCByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return nil, errs.NotFoundError("PC")
		}
		s.logger.Printf("Error fetching PC %s: %v", id, err)
		return nil, errs.StoreError("Failed to fetch PC", err)
	}
	return pc, nil
}

// CreatePC validates the input and inserts a new PC record. A zero port
// defaults to 8080. Validation failures never touch the store.
func (s *PCService) CreatePC(ctx context.Context, input model.PCInput) (*model.PC, error) {
	if fieldErrors := validation.ValidatePCInput(input); len(fieldErrors) > 0 {
		s.logger.Printf("PC creation validation failed: %v", fieldErrors)
		return nil, errs.ValidationError(fieldErrors)
	}

	if input.Port == 0 {
		input.Port = DefaultAgentPort
	}

	pc := model.PC{
		ID:        uuid.New(),
		Name:      input.Name,
		IPAddress: input.IPAddress,
		Port:      input.Port,
		Password:  input.Password,
	}

	if err := s.repo.CreatePC(ctx, pc); err != nil {
		s.logger.Printf("Error creating PC: %v", err)
		return nil, errs.StoreError("Failed to create PC", err)
	}

	created, err := s.repo.GetPCByID(ctx, pc.ID)
	if err != nil {
		s.logger.Printf("Error fetching created PC %s: %v", pc.ID, err)
		return nil, errs.StoreError("Failed to fetch created PC", err)
	}

	s.hub.Publish("pc", "create")
	go s.notify(notification.LevelInfo, created.Name,
		fmt.Sprintf("PC %q registered at %s:%d", created.Name, created.IPAddress, created.Port))

	s.logger.Printf("PC created: ID=%s, Name=%s, Address=%s:%d", created.ID, created.Name, created.IPAddress, created.Port)

	return created, nil
}

// UpdatePC applies a partial update. Supplied fields are validated with the
// same rules as create; absent fields are left untouched.
func (s *PCService) UpdatePC(ctx context.Context, id uuid.UUID, update model.PCUpdate) (*model.PC, error) {
	if fieldErrors := validation.ValidatePCUpdate(update); len(fieldErrors) > 0 {
		s.logger.Printf("PC update validation failed for %s: %v", id, fieldErrors)
		return nil, errs.ValidationError(fieldErrors)
	}

	if err := s.repo.UpdatePC(ctx, id, update); err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return nil, errs.NotFoundError("PC")
		}
		s.logger.Printf("Error updating PC %s: %v", id, err)
		return nil, errs.StoreError("Failed to update PC", err)
	}

	updated, err := s.repo.GetPCByID(ctx, id)
	if err != nil {
		s.logger.Printf("Error fetching updated PC %s: %v", id, err)
		return nil, errs.StoreError("Failed to fetch updated PC", err)
	}

	s.hub.Publish("pc", "update")

	s.logger.Printf("PC updated: ID=%s", id)

	return updated, nil
}

// DeletePC removes a PC. Its schedule goes with it: the store cascades the
// delete through the pc_id constraint.
func (s *PCService) DeletePC(ctx context.Context, id uuid.UUID) error {
	pc, err := s.repo.GetPCByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return errs.NotFoundError("PC")
		}
		s.logger.Printf("Error fetching PC %s for deletion: %v", id, err)
		return errs.StoreError("Failed to delete PC", err)
	}

	if err := s.repo.DeletePC(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPCNotFound) {
			return errs.NotFoundError("PC")
		}
		s.logger.Printf("Error deleting PC %s: %v", id, err)
		return errs.StoreError("Failed to delete PC", err)
	}

	s.hub.Publish("pc", "delete")
	go s.notify(notification.LevelWarning, pc.Name,
		fmt.Sprintf("PC %q deregistered", pc.Name))

	s.logger.Printf("PC deleted: ID=%s", id)

	return nil
}

// notify sends an operator alert, logging failures instead of surfacing
// them; notification problems never fail a write.
func (s *PCService) notify(level notification.Level, pcName, message string) {
	n := notification.Notification{
		Level:   level,
		PCName:  pcName,
		Message: message,
	}
	if err := s.notifier.SendNotification(n); err != nil {
		s.logger.Printf("Failed to send notification for PC %s: %v", pcName, err)
	}
}
