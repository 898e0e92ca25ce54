package mappings

import (
	"context"
	"fmt"
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

// Service maintains the per-market platform identifiers of products. Upserts
// are keyed by product and market; omitted fields keep their stored values.
type Service interface {
	UpsertMapping(ctx context.Context, productID uuid.UUID, market enums.Region, input UpsertInput) (*MappingDTO, error)
	ListMappings(ctx context.Context, productID uuid.UUID) ([]MappingDTO, error)
}

// UpsertInput carries partial platform identifiers. Nil fields are untouched.
type UpsertInput struct {
	ShopifyID      *string
	ShopifyHandle  *string
	OdooID         *string
	OdooName       *string
	QuickbooksID   *string
	QuickbooksName *string
	LetaAiID       *string
	LetaAiName     *string
	RendaID        *string
	RendaName      *string
	ActorUserID    *uuid.UUID
}

// MappingDTO is the API shape of a product mapping.
type MappingDTO struct {
	ID             uuid.UUID    `json:"id"`
	ProductID      uuid.UUID    `json:"product_id"`
	Market         enums.Region `json:"market"`
	ShopifyID      *string      `json:"shopify_id,omitempty"`
	ShopifyHandle  *string      `json:"shopify_handle,omitempty"`
	OdooID         *string      `json:"odoo_id,omitempty"`
	OdooName       *string      `json:"odoo_name,omitempty"`
	QuickbooksID   *string      `json:"quickbooks_id,omitempty"`
	QuickbooksName *string      `json:"quickbooks_name,omitempty"`
	LetaAiID       *string      `json:"leta_ai_id,omitempty"`
	LetaAiName     *string      `json:"leta_ai_name,omitempty"`
	RendaID        *string      `json:"renda_id,omitempty"`
	RendaName      *string      `json:"renda_name,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
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

// NewService builds the mapping service.
func NewService(repo Repository, inventoryRepo *inventory.Repository, dbClient *db.Client, activity activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mapping repository required")
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

// UpsertMapping creates or updates the mapping row for one product and market.
func (s *service) UpsertMapping(ctx context.Context, productID uuid.UUID, market enums.Region, input UpsertInput) (*MappingDTO, error) {
	if !market.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid market %q", market))
	}

	product, err := s.inventoryRepo.FindByID(ctx, productID)
	if err != nil {
		if inventory.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	var saved *models.ProductMapping
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		mapping, findErr := txRepo.FindByProductAndMarket(ctx, productID, market)
		if findErr != nil {
			if !IsNotFound(findErr) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: load mapping")
			}
			mapping = &models.ProductMapping{ProductID: productID, Market: market}
			applyUpsert(mapping, input)
			if saved, findErr = txRepo.Create(ctx, mapping); findErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: insert mapping")
			}
			return nil
		}

		applyUpsert(mapping, input)
		var saveErr error
		if saved, saveErr = txRepo.Save(ctx, mapping); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "db: save mapping")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert mapping")
	}

	details := fmt.Sprintf("%s - %s", product.Name, market)
	s.record(ctx, fmt.Sprintf("Product mapping updated for %s", product.SKU), &details, input.ActorUserID)

	return newDTO(saved), nil
}

// ListMappings returns every market mapping of one product.
func (s *service) ListMappings(ctx context.Context, productID uuid.UUID) ([]MappingDTO, error) {
	if _, err := s.inventoryRepo.FindByID(ctx, productID); err != nil {
		if inventory.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	list, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list mappings")
	}

	dtos := make([]MappingDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *newDTO(&list[i]))
	}
	return dtos, nil
}

func (s *service) record(ctx context.Context, message string, details *string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, enums.ActivityTypeSync, message, details, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

func applyUpsert(mapping *models.ProductMapping, input UpsertInput) {
	if input.ShopifyID != nil {
		mapping.ShopifyID = input.ShopifyID
	}
	if input.ShopifyHandle != nil {
		mapping.ShopifyHandle = input.ShopifyHandle
	}
	if input.OdooID != nil {
		mapping.OdooID = input.OdooID
	}
	if input.OdooName != nil {
		mapping.OdooName = input.OdooName
	}
	if input.QuickbooksID != nil {
		mapping.QuickbooksID = input.QuickbooksID
	}
	if input.QuickbooksName != nil {
		mapping.QuickbooksName = input.QuickbooksName
	}
	if input.LetaAiID != nil {
		mapping.LetaAiID = input.LetaAiID
	}
	if input.LetaAiName != nil {
		mapping.LetaAiName = input.LetaAiName
	}
	if input.RendaID != nil {
		mapping.RendaID = input.RendaID
	}
	if input.RendaName != nil {
		mapping.RendaName = input.RendaName
	}
}

func newDTO(mapping *models.ProductMapping) *MappingDTO {
	return &MappingDTO{
		ID:             mapping.ID,
		ProductID:      mapping.ProductID,
		Market:         mapping.Market,
		ShopifyID:      mapping.ShopifyID,
		ShopifyHandle:  mapping.ShopifyHandle,
		OdooID:         mapping.OdooID,
		OdooName:       mapping.OdooName,
		QuickbooksID:   mapping.QuickbooksID,
		QuickbooksName: mapping.QuickbooksName,
		LetaAiID:       mapping.LetaAiID,
		LetaAiName:     mapping.LetaAiName,
		RendaID:        mapping.RendaID,
		RendaName:      mapping.RendaName,
		UpdatedAt:      mapping.UpdatedAt,
	}
}
