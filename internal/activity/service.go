package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
)

// maxListed caps the activity feed at the most recent entries.
const maxListed = 50

// Service records and lists audit entries. Actor attribution is always an
// explicit parameter carried from the request; there is no ambient user state.
type Service interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
	List(ctx context.Context, logType *enums.ActivityType) ([]EntryDTO, error)
}

type service struct {
	repo Repository
}

// EntryDTO is the API shape of a single activity log entry.
type EntryDTO struct {
	ID          uuid.UUID          `json:"id"`
	Type        enums.ActivityType `json:"type"`
	Message     string             `json:"message"`
	Details     *string            `json:"details,omitempty"`
	ActorUserID *uuid.UUID         `json:"actor_user_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewService wires an activity service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error {
	if !logType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid activity type %q", logType))
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	entry := &models.ActivityLog{
		Type:        logType,
		Message:     message,
		Details:     details,
		ActorUserID: actorUserID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create activity entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, logType *enums.ActivityType) ([]EntryDTO, error) {
	if logType != nil && !logType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid activity type %q", *logType))
	}

	entries, err := s.repo.ListLatest(ctx, logType, maxListed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list activity entries")
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, EntryDTO{
			ID:          entry.ID,
			Type:        entry.Type,
			Message:     entry.Message,
			Details:     entry.Details,
			ActorUserID: entry.ActorUserID,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return dtos, nil
}
