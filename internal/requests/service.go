package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

// Service runs the internal product request workflow: submit, approve or
// reject, mark ready, collect. Requests never debit the stock ledger; the
// quantity is only checked against available stock at submission.
type Service interface {
	CreateRequest(ctx context.Context, input CreateInput) (*RequestDTO, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*RequestDTO, error)
	ListRequests(ctx context.Context, status *enums.RequestStatus) ([]RequestDTO, error)
	Approve(ctx context.Context, requestID uuid.UUID, input ApproveInput) (*RequestDTO, error)
	Reject(ctx context.Context, requestID uuid.UUID, input RejectInput) (*RequestDTO, error)
	MarkReady(ctx context.Context, requestID uuid.UUID, input ReadyInput) (*RequestDTO, error)
	MarkCollected(ctx context.Context, requestID uuid.UUID, actorUserID *uuid.UUID) (*RequestDTO, error)
}

// CreateInput holds the validated payload to submit a request.
type CreateInput struct {
	ProductID       uuid.UUID
	Quantity        int
	Reason          string
	RequesterName   string
	RequesterEmail  string
	RequesterUserID *uuid.UUID
	ApproverName    string
	ApproverEmail   string
	ApproverUserID  *uuid.UUID
	ActorUserID     *uuid.UUID
}

// ApproveInput assigns the request to someone for dispatch.
type ApproveInput struct {
	AssignedToName   string
	AssignedToUserID *uuid.UUID
	ActorUserID      *uuid.UUID
}

// RejectInput carries the mandatory rejection reason.
type RejectInput struct {
	Reason      string
	ActorUserID *uuid.UUID
}

// ReadyInput carries the mandatory collection point.
type ReadyInput struct {
	CollectionPoint string
	ActorUserID     *uuid.UUID
}

// RequestDTO is the API shape of a product request.
type RequestDTO struct {
	ID               uuid.UUID           `json:"id"`
	Reference        string              `json:"reference"`
	ProductID        uuid.UUID           `json:"product_id"`
	ProductName      string              `json:"product_name"`
	Quantity         int                 `json:"quantity"`
	Reason           string              `json:"reason"`
	RequesterName    string              `json:"requester_name"`
	RequesterEmail   string              `json:"requester_email,omitempty"`
	RequesterUserID  *uuid.UUID          `json:"requester_user_id,omitempty"`
	ApproverName     string              `json:"approver_name"`
	ApproverEmail    string              `json:"approver_email,omitempty"`
	ApproverUserID   *uuid.UUID          `json:"approver_user_id,omitempty"`
	Status           enums.RequestStatus `json:"status"`
	AssignedToName   *string             `json:"assigned_to_name,omitempty"`
	AssignedToUserID *uuid.UUID          `json:"assigned_to_user_id,omitempty"`
	RejectionReason  *string             `json:"rejection_reason,omitempty"`
	CollectionPoint  *string             `json:"collection_point,omitempty"`
	ApprovedAt       *time.Time          `json:"approved_at,omitempty"`
	ReadyAt          *time.Time          `json:"ready_at,omitempty"`
	CollectedAt      *time.Time          `json:"collected_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

type service struct {
	repo          Repository
	inventoryRepo *inventory.Repository
	dbClient      *db.Client
	activity      activityRecorder
	logg          *logger.Logger
}

// NewService builds the request service.
func NewService(repo Repository, inventoryRepo *inventory.Repository, dbClient *db.Client, activity activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		dbClient:      dbClient,
		activity:      activity,
		logg:          logg,
	}, nil
}

// CreateRequest validates the payload against the product catalog and inserts
// the request in pending approval. The quantity must not exceed the product's
// available stock at submission time.
func (s *service) CreateRequest(ctx context.Context, input CreateInput) (*RequestDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if strings.TrimSpace(input.RequesterName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester_name is required")
	}
	if strings.TrimSpace(input.ApproverName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver_name is required")
	}

	var created *models.ProductRequest
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.inventoryRepo.WithTx(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			if inventory.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		if input.Quantity > product.AvailableStock {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d exceeds available stock %d", input.Quantity, product.AvailableStock))
		}

		request := &models.ProductRequest{
			Reference:       newReference(),
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        input.Quantity,
			Reason:          strings.TrimSpace(input.Reason),
			RequesterName:   strings.TrimSpace(input.RequesterName),
			RequesterEmail:  strings.TrimSpace(input.RequesterEmail),
			RequesterUserID: input.RequesterUserID,
			ApproverName:    strings.TrimSpace(input.ApproverName),
			ApproverEmail:   strings.TrimSpace(input.ApproverEmail),
			ApproverUserID:  input.ApproverUserID,
			Status:          enums.RequestStatusPendingApproval,
		}
		if created, err = s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert request")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}

	details := fmt.Sprintf("%s - %dx %s", created.Reference, created.Quantity, created.ProductName)
	s.record(ctx, "New product request submitted", &details, input.ActorUserID)

	return newDTO(created), nil
}

// GetRequest loads one request.
func (s *service) GetRequest(ctx context.Context, requestID uuid.UUID) (*RequestDTO, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load request")
	}
	return newDTO(request), nil
}

// ListRequests returns requests newest first, optionally scoped to a status.
func (s *service) ListRequests(ctx context.Context, status *enums.RequestStatus) ([]RequestDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid request status %q", *status))
	}

	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list requests")
	}

	dtos := make([]RequestDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *newDTO(&list[i]))
	}
	return dtos, nil
}

// Approve assigns the request for dispatch. Only pending requests can be
// approved.
func (s *service) Approve(ctx context.Context, requestID uuid.UUID, input ApproveInput) (*RequestDTO, error) {
	if strings.TrimSpace(input.AssignedToName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned_to_name is required")
	}

	updated, err := s.transition(ctx, requestID, enums.RequestStatusPendingApproval, func(request *models.ProductRequest) {
		now := time.Now().UTC()
		assigned := strings.TrimSpace(input.AssignedToName)
		request.Status = enums.RequestStatusApproved
		request.AssignedToName = &assigned
		request.AssignedToUserID = input.AssignedToUserID
		request.ApprovedAt = &now
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s assigned to %s", updated.Reference, *updated.AssignedToName)
	s.record(ctx, "Product request approved", &details, input.ActorUserID)
	return newDTO(updated), nil
}

// Reject closes the request with a reason. Only pending requests can be
// rejected.
func (s *service) Reject(ctx context.Context, requestID uuid.UUID, input RejectInput) (*RequestDTO, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	updated, err := s.transition(ctx, requestID, enums.RequestStatusPendingApproval, func(request *models.ProductRequest) {
		request.Status = enums.RequestStatusRejected
		request.RejectionReason = &reason
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s - Reason: %s", updated.Reference, reason)
	s.record(ctx, "Product request rejected", &details, input.ActorUserID)
	return newDTO(updated), nil
}

// MarkReady records where the approved request can be picked up.
func (s *service) MarkReady(ctx context.Context, requestID uuid.UUID, input ReadyInput) (*RequestDTO, error) {
	point := strings.TrimSpace(input.CollectionPoint)
	if point == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection_point is required")
	}

	updated, err := s.transition(ctx, requestID, enums.RequestStatusApproved, func(request *models.ProductRequest) {
		now := time.Now().UTC()
		request.Status = enums.RequestStatusReadyForCollection
		request.CollectionPoint = &point
		request.ReadyAt = &now
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s - Collection point: %s", updated.Reference, point)
	s.record(ctx, "Products ready for collection", &details, input.ActorUserID)
	return newDTO(updated), nil
}

// MarkCollected closes the workflow once the requester has picked up the
// items.
func (s *service) MarkCollected(ctx context.Context, requestID uuid.UUID, actorUserID *uuid.UUID) (*RequestDTO, error) {
	updated, err := s.transition(ctx, requestID, enums.RequestStatusReadyForCollection, func(request *models.ProductRequest) {
		now := time.Now().UTC()
		request.Status = enums.RequestStatusCollected
		request.CollectedAt = &now
	})
	if err != nil {
		return nil, err
	}

	details := updated.Reference
	s.record(ctx, "Product request collected", &details, actorUserID)
	return newDTO(updated), nil
}

// transition loads the request, checks the expected current status and saves
// the mutation in one transaction.
func (s *service) transition(ctx context.Context, requestID uuid.UUID, from enums.RequestStatus, mutate func(*models.ProductRequest)) (*models.ProductRequest, error) {
	var updated *models.ProductRequest
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		request, err := txRepo.FindByID(ctx, requestID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load request")
		}
		if request.Status != from {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("request is %s, expected %s", request.Status, from))
		}

		mutate(request)
		if updated, err = txRepo.Save(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save request")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition request")
	}
	return updated, nil
}

func (s *service) record(ctx context.Context, message string, details *string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, enums.ActivityTypeRequest, message, details, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

func newReference() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func newDTO(request *models.ProductRequest) *RequestDTO {
	return &RequestDTO{
		ID:               request.ID,
		Reference:        request.Reference,
		ProductID:        request.ProductID,
		ProductName:      request.ProductName,
		Quantity:         request.Quantity,
		Reason:           request.Reason,
		RequesterName:    request.RequesterName,
		RequesterEmail:   request.RequesterEmail,
		RequesterUserID:  request.RequesterUserID,
		ApproverName:     request.ApproverName,
		ApproverEmail:    request.ApproverEmail,
		ApproverUserID:   request.ApproverUserID,
		Status:           request.Status,
		AssignedToName:   request.AssignedToName,
		AssignedToUserID: request.AssignedToUserID,
		RejectionReason:  request.RejectionReason,
		CollectionPoint:  request.CollectionPoint,
		ApprovedAt:       request.ApprovedAt,
		ReadyAt:          request.ReadyAt,
		CollectedAt:      request.CollectedAt,
		CreatedAt:        request.CreatedAt,
		UpdatedAt:        request.UpdatedAt,
	}
}
