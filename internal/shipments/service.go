package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/fulfillment"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// Service defines the inbound shipment operations. Status moves forward only;
// the received state is reachable solely through Receive, which is what makes
// the stock credit fire exactly once per shipment.
type Service interface {
	CreateShipment(ctx context.Context, input CreateInput) (*ShipmentDTO, error)
	GetShipment(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error)
	ListShipments(ctx context.Context, params pagination.Params, filters ListFilters) ([]ShipmentDTO, string, error)
	Advance(ctx context.Context, shipmentID uuid.UUID, target enums.ShipmentStatus, actorUserID *uuid.UUID) (*ShipmentDTO, error)
	Receive(ctx context.Context, shipmentID uuid.UUID, actorUserID *uuid.UUID) (*ReceiveOutcome, error)
}

// CreateItemInput is one requested shipment line.
type CreateItemInput struct {
	ProductID     uuid.UUID
	Quantity      int
	UnitCostCents int
}

// CreateInput holds the validated payload to create a shipment.
type CreateInput struct {
	Supplier               string
	Origin                 string
	DestinationWarehouseID uuid.UUID
	Currency               enums.Currency
	Carrier                string
	TrackingNumber         *string
	ContainerNumber        *string
	EstimatedArrival       *time.Time
	Notes                  *string
	Items                  []CreateItemInput
	ActorUserID            *uuid.UUID
}

// ReceiveOutcome pairs the received shipment with its per-line credit report.
type ReceiveOutcome struct {
	Shipment *ShipmentDTO        `json:"shipment"`
	Credit   *fulfillment.Result `json:"credit"`
}

type stockCreditor interface {
	CreditLines(ctx context.Context, tx *gorm.DB, lines []fulfillment.Line) (*fulfillment.Result, error)
}

type warehouseLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

type service struct {
	repo          Repository
	inventoryRepo *inventory.Repository
	warehouses    warehouseLoader
	dbClient      *db.Client
	creditor      stockCreditor
	activity      activityRecorder
	logg          *logger.Logger
}

// NewService builds the shipment service with the required dependencies.
func NewService(repo Repository, inventoryRepo *inventory.Repository, warehouses warehouseLoader, dbClient *db.Client, creditor stockCreditor, activity activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse loader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if creditor == nil {
		return nil, fmt.Errorf("stock creditor required")
	}
	return &service{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		warehouses:    warehouses,
		dbClient:      dbClient,
		creditor:      creditor,
		activity:      activity,
		logg:          logg,
	}, nil
}

// CreateShipment validates the payload, denormalizes line details and inserts
// the shipment in created status.
func (s *service) CreateShipment(ctx context.Context, input CreateInput) (*ShipmentDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	if _, err := s.warehouses.FindByID(ctx, input.DestinationWarehouseID); err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "destination warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load warehouse")
	}

	var created *models.Shipment
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txInventory := s.inventoryRepo.WithTx(tx)

		shipment := &models.Shipment{
			Reference:              newReference(),
			Supplier:               strings.TrimSpace(input.Supplier),
			Origin:                 strings.TrimSpace(input.Origin),
			DestinationWarehouseID: input.DestinationWarehouseID,
			Currency:               input.Currency,
			Status:                 enums.ShipmentStatusCreated,
			Carrier:                strings.TrimSpace(input.Carrier),
			TrackingNumber:         input.TrackingNumber,
			ContainerNumber:        input.ContainerNumber,
			EstimatedArrival:       input.EstimatedArrival,
			CreatedByUserID:        input.ActorUserID,
			Notes:                  input.Notes,
		}

		for _, line := range input.Items {
			product, err := txInventory.FindByID(ctx, line.ProductID)
			if err != nil {
				if inventory.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("product %s not found", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}

			total := line.UnitCostCents * line.Quantity
			shipment.TotalUnits += line.Quantity
			shipment.TotalValueCents += total
			shipment.Items = append(shipment.Items, models.ShipmentItem{
				ProductID:      product.ID,
				SKU:            product.SKU,
				ProductName:    product.Name,
				Quantity:       line.Quantity,
				UnitCostCents:  line.UnitCostCents,
				TotalCostCents: total,
			})
		}

		var err error
		created, err = s.repo.WithTx(tx).Create(ctx, shipment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert shipment")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
	}

	s.record(ctx, enums.ActivityTypeShipment,
		fmt.Sprintf("Shipment %s created from %s (%d units)", created.Reference, created.Supplier, created.TotalUnits),
		nil, input.ActorUserID)

	return NewShipmentDTO(created), nil
}

// GetShipment loads one shipment with its items.
func (s *service) GetShipment(ctx context.Context, shipmentID uuid.UUID) (*ShipmentDTO, error) {
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shipment")
	}
	return NewShipmentDTO(shipment), nil
}

// ListShipments returns a filtered page plus the next cursor.
func (s *service) ListShipments(ctx context.Context, params pagination.Params, filters ListFilters) ([]ShipmentDTO, string, error) {
	shipments, nextCursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list shipments")
	}

	dtos := make([]ShipmentDTO, 0, len(shipments))
	for i := range shipments {
		dtos = append(dtos, *NewShipmentDTO(&shipments[i]))
	}
	return dtos, nextCursor, nil
}

// Advance steps the shipment forward. Any forward jump short of received is
// allowed; backward moves and received are rejected.
func (s *service) Advance(ctx context.Context, shipmentID uuid.UUID, target enums.ShipmentStatus, actorUserID *uuid.UUID) (*ShipmentDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", target))
	}
	if target == enums.ShipmentStatusReceived {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipments are received through the receive operation")
	}

	var updated *models.Shipment
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		shipment, err := txRepo.FindByID(ctx, shipmentID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shipment")
		}

		if target.Rank() <= shipment.Status.Rank() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move shipment from %s to %s", shipment.Status, target))
		}

		shipment.Status = target
		if updated, err = txRepo.Save(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save shipment")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance shipment")
	}

	s.record(ctx, enums.ActivityTypeShipment,
		fmt.Sprintf("Shipment %s moved to %s", updated.Reference, target),
		nil, actorUserID)

	return NewShipmentDTO(updated), nil
}

// Receive marks the shipment received and credits stock for every item.
func (s *service) Receive(ctx context.Context, shipmentID uuid.UUID, actorUserID *uuid.UUID) (*ReceiveOutcome, error) {
	var (
		updated *models.Shipment
		credit  *fulfillment.Result
	)
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		shipment, err := txRepo.FindByID(ctx, shipmentID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shipment")
		}

		if shipment.Status == enums.ShipmentStatusReceived {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment already received")
		}

		lines := make([]fulfillment.Line, 0, len(shipment.Items))
		for _, item := range shipment.Items {
			lines = append(lines, fulfillment.Line{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Quantity:  item.Quantity,
			})
		}
		if credit, err = s.creditor.CreditLines(ctx, tx, lines); err != nil {
			return err
		}
		if credit.Problems != nil && s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"shipment_id": shipment.ID.String(),
				"problems":    credit.Problems.Error(),
			})
			s.logg.Warn(lctx, "shipment received with skipped lines")
		}

		now := time.Now().UTC()
		shipment.Status = enums.ShipmentStatusReceived
		shipment.ReceivedAt = &now
		shipment.ActualArrival = &now
		shipment.ReceivedByUserID = actorUserID

		if updated, err = txRepo.Save(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save shipment")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "receive shipment")
	}

	s.record(ctx, enums.ActivityTypeShipment,
		fmt.Sprintf("Shipment %s received, %d units credited", updated.Reference, credit.TotalApplied),
		nil, actorUserID)

	return &ReceiveOutcome{Shipment: NewShipmentDTO(updated), Credit: credit}, nil
}

func (s *service) record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, logType, message, details, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Supplier) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier is required")
	}
	if strings.TrimSpace(input.Origin) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "origin is required")
	}
	if input.DestinationWarehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "destination_warehouse_id is required")
	}
	if !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product_id is required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if line.UnitCostCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item unit_cost_cents cannot be negative")
		}
	}
	return nil
}

func newReference() string {
	return "SHP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
