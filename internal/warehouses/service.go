package warehouses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
)

// Service defines warehouse operations. Warehouses carry no stock counts;
// occupancy is derived by summing the stock of the products assigned to them.
type Service interface {
	CreateWarehouse(ctx context.Context, input CreateInput) (*WarehouseDTO, error)
	UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, input UpdateInput) (*WarehouseDTO, error)
	DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID, actorUserID *uuid.UUID) error
	GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*WarehouseDTO, error)
	ListWarehouses(ctx context.Context, region *enums.Region) ([]WarehouseDTO, error)
	Summary(ctx context.Context) ([]OccupancyDTO, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
}

// CreateInput holds the validated payload to create a warehouse.
type CreateInput struct {
	Name             string
	Location         string
	Region           enums.Region
	Capacity         int
	ManagerName      string
	ManagerUserID    *uuid.UUID
	DeliveryPlatform enums.DeliveryPlatform
	ActorUserID      *uuid.UUID
}

// UpdateInput holds optional mutation values for a warehouse.
type UpdateInput struct {
	Name             *string
	Location         *string
	Capacity         *int
	ManagerName      *string
	ManagerUserID    *uuid.UUID
	Status           *enums.WarehouseStatus
	DeliveryPlatform *enums.DeliveryPlatform
	LastAuditAt      *time.Time
	ActorUserID      *uuid.UUID
}

// WarehouseDTO is the API shape of a warehouse.
type WarehouseDTO struct {
	ID               uuid.UUID              `json:"id"`
	Name             string                 `json:"name"`
	Location         string                 `json:"location"`
	Region           enums.Region           `json:"region"`
	Capacity         int                    `json:"capacity"`
	ManagerName      string                 `json:"manager_name,omitempty"`
	ManagerUserID    *uuid.UUID             `json:"manager_user_id,omitempty"`
	Status           enums.WarehouseStatus  `json:"status"`
	DeliveryPlatform enums.DeliveryPlatform `json:"delivery_platform"`
	LastAuditAt      *time.Time             `json:"last_audit_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// OccupancyDTO is one row of the capacity summary.
type OccupancyDTO struct {
	WarehouseID uuid.UUID             `json:"warehouse_id"`
	Name        string                `json:"name"`
	Region      enums.Region          `json:"region"`
	Capacity    int                   `json:"capacity"`
	UnitsStored int64                 `json:"units_stored"`
	Utilization float64               `json:"utilization"`
	Status      enums.WarehouseStatus `json:"status"`
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

type service struct {
	repo          Repository
	inventoryRepo *inventory.Repository
	activity      activityRecorder
	logg          *logger.Logger
}

// NewService builds the warehouse service.
func NewService(repo Repository, inventoryRepo *inventory.Repository, activity activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		activity:      activity,
		logg:          logg,
	}, nil
}

func (s *service) CreateWarehouse(ctx context.Context, input CreateInput) (*WarehouseDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}
	if !input.Region.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid region %q", input.Region))
	}
	if input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
	}
	if input.DeliveryPlatform != "" && !input.DeliveryPlatform.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery platform %q", input.DeliveryPlatform))
	}

	warehouse := &models.Warehouse{
		Name:             strings.TrimSpace(input.Name),
		Location:         strings.TrimSpace(input.Location),
		Region:           input.Region,
		Capacity:         input.Capacity,
		ManagerName:      strings.TrimSpace(input.ManagerName),
		ManagerUserID:    input.ManagerUserID,
		Status:           enums.WarehouseStatusActive,
		DeliveryPlatform: input.DeliveryPlatform,
	}
	if warehouse.DeliveryPlatform == "" {
		warehouse.DeliveryPlatform = enums.DeliveryPlatformNone
	}

	created, err := s.repo.Create(ctx, warehouse)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert warehouse")
	}

	s.record(ctx, fmt.Sprintf("Warehouse %s created in %s", created.Name, created.Region), input.ActorUserID)
	return newDTO(created), nil
}

func (s *service) UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, input UpdateInput) (*WarehouseDTO, error) {
	warehouse, err := s.repo.FindByID(ctx, warehouseID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}

	if input.Name != nil {
		warehouse.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		warehouse.Location = strings.TrimSpace(*input.Location)
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
		}
		warehouse.Capacity = *input.Capacity
	}
	if input.ManagerName != nil {
		warehouse.ManagerName = strings.TrimSpace(*input.ManagerName)
	}
	if input.ManagerUserID != nil {
		warehouse.ManagerUserID = input.ManagerUserID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid warehouse status %q", *input.Status))
		}
		warehouse.Status = *input.Status
	}
	if input.DeliveryPlatform != nil {
		if !input.DeliveryPlatform.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery platform %q", *input.DeliveryPlatform))
		}
		warehouse.DeliveryPlatform = *input.DeliveryPlatform
	}
	if input.LastAuditAt != nil {
		warehouse.LastAuditAt = input.LastAuditAt
	}

	saved, err := s.repo.Save(ctx, warehouse)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save warehouse")
	}

	s.record(ctx, fmt.Sprintf("Warehouse %s updated", saved.Name), input.ActorUserID)
	return newDTO(saved), nil
}

// DeleteWarehouse removes the warehouse. Products assigned to it keep their
// counts and fall back to unassigned.
func (s *service) DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID, actorUserID *uuid.UUID) error {
	warehouse, err := s.repo.FindByID(ctx, warehouseID)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}

	if err := s.repo.Delete(ctx, warehouseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete warehouse")
	}

	s.record(ctx, fmt.Sprintf("Warehouse %s deleted", warehouse.Name), actorUserID)
	return nil
}

func (s *service) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*WarehouseDTO, error) {
	warehouse, err := s.repo.FindByID(ctx, warehouseID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}
	return newDTO(warehouse), nil
}

func (s *service) ListWarehouses(ctx context.Context, region *enums.Region) ([]WarehouseDTO, error) {
	if region != nil && !region.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid region %q", *region))
	}

	warehouses, err := s.repo.List(ctx, region)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list warehouses")
	}

	dtos := make([]WarehouseDTO, 0, len(warehouses))
	for i := range warehouses {
		dtos = append(dtos, *newDTO(&warehouses[i]))
	}
	return dtos, nil
}

// Summary reports stored units and utilization per warehouse.
func (s *service) Summary(ctx context.Context) ([]OccupancyDTO, error) {
	warehouses, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list warehouses")
	}
	stored, err := s.inventoryRepo.SumStockByWarehouse(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum stock")
	}

	summary := make([]OccupancyDTO, 0, len(warehouses))
	for i := range warehouses {
		warehouse := &warehouses[i]
		units := stored[warehouse.ID]
		utilization := 0.0
		if warehouse.Capacity > 0 {
			utilization = float64(units) / float64(warehouse.Capacity)
		}
		summary = append(summary, OccupancyDTO{
			WarehouseID: warehouse.ID,
			Name:        warehouse.Name,
			Region:      warehouse.Region,
			Capacity:    warehouse.Capacity,
			UnitsStored: units,
			Utilization: utilization,
			Status:      warehouse.Status,
		})
	}
	return summary, nil
}

// FindByID exposes the raw model for collaborators that only need a lookup,
// such as the transfer engine.
func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) record(ctx context.Context, message string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, enums.ActivityTypeInventory, message, nil, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

func newDTO(warehouse *models.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:               warehouse.ID,
		Name:             warehouse.Name,
		Location:         warehouse.Location,
		Region:           warehouse.Region,
		Capacity:         warehouse.Capacity,
		ManagerName:      warehouse.ManagerName,
		ManagerUserID:    warehouse.ManagerUserID,
		Status:           warehouse.Status,
		DeliveryPlatform: warehouse.DeliveryPlatform,
		LastAuditAt:      warehouse.LastAuditAt,
		CreatedAt:        warehouse.CreatedAt,
		UpdatedAt:        warehouse.UpdatedAt,
	}
}
