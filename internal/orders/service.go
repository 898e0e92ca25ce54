package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/fulfillment"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/pkg/currency"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// orderTransitions is the full lifecycle graph. Entering in_transit is the
// fulfillment edge; it is only reachable from processing, which is what makes
// the stock debit fire exactly once per order.
var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled, enums.OrderStatusFailed},
	enums.OrderStatusProcessing: {enums.OrderStatusInTransit, enums.OrderStatusCancelled, enums.OrderStatusFailed},
	enums.OrderStatusInTransit:  {enums.OrderStatusDelivered, enums.OrderStatusFailed},
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) ([]OrderDTO, string, error)
	Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID *uuid.UUID) (*OrderDTO, error)
	Fulfill(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*FulfillOutcome, error)
	Deliver(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*OrderDTO, error)
	UpdateSync(ctx context.Context, orderID uuid.UUID, input SyncInput, actorUserID *uuid.UUID) (*OrderDTO, error)
}

// CreateLineInput is one requested order line. SKU, name and unit price are
// denormalized from the product at creation time.
type CreateLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInput holds the validated payload to create an order.
type CreateInput struct {
	Source           enums.OrderSource
	Type             enums.OrderType
	Currency         enums.Currency
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    *string
	CustomerAddress  *string
	ShippingCents    int
	DeliveryPlatform enums.DeliveryPlatform
	DeliveryNotes    *string
	ShopifyOrderID   *string
	Items            []CreateLineInput
	ActorUserID      *uuid.UUID
}

// SyncInput carries the bookkeeping updates for downstream platform handoffs.
// Nil fields are left untouched.
type SyncInput struct {
	OdooSOSync      *enums.SyncState
	OdooInvoiceSync *enums.SyncState
	QBInvoiceSync   *enums.SyncState
	DeliverySync    *enums.SyncState
	OdooInvoiceID   *string
}

// FulfillOutcome pairs the transitioned order with its per-line debit report.
type FulfillOutcome struct {
	Order *OrderDTO           `json:"order"`
	Debit *fulfillment.Result `json:"debit"`
}

type stockDebitor interface {
	DebitLines(ctx context.Context, tx *gorm.DB, lines []fulfillment.Line) (*fulfillment.Result, error)
}

type activityRecorder interface {
	Record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) error
}

type service struct {
	repo          Repository
	inventoryRepo *inventory.Repository
	dbClient      *db.Client
	debitor       stockDebitor
	converter     *currency.Converter
	activity      activityRecorder
	logg          *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, inventoryRepo *inventory.Repository, dbClient *db.Client, debitor stockDebitor, converter *currency.Converter, activity activityRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if debitor == nil {
		return nil, fmt.Errorf("stock debitor required")
	}
	return &service{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		dbClient:      dbClient,
		debitor:       debitor,
		converter:     converter,
		activity:      activity,
		logg:          logg,
	}, nil
}

// CreateOrder validates the payload, denormalizes line details from the
// product catalog and inserts the order in pending status.
func (s *service) CreateOrder(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txInventory := s.inventoryRepo.WithTx(tx)

		order := &models.Order{
			Reference:        newReference(),
			ShopifyOrderID:   input.ShopifyOrderID,
			Source:           input.Source,
			Type:             input.Type,
			CustomerName:     strings.TrimSpace(input.CustomerName),
			CustomerEmail:    strings.TrimSpace(input.CustomerEmail),
			CustomerPhone:    input.CustomerPhone,
			CustomerAddress:  input.CustomerAddress,
			ShippingCents:    input.ShippingCents,
			Currency:         input.Currency,
			Status:           enums.OrderStatusPending,
			OdooSOSync:       enums.SyncStatePending,
			OdooInvoiceSync:  enums.SyncStatePending,
			QBInvoiceSync:    enums.SyncStatePending,
			DeliverySync:     enums.SyncStatePending,
			DeliveryPlatform: input.DeliveryPlatform,
			DeliveryNotes:    input.DeliveryNotes,
		}
		if order.DeliveryPlatform == "" {
			order.DeliveryPlatform = enums.DeliveryPlatformNone
		}

		subtotal := 0
		for _, line := range input.Items {
			product, err := txInventory.FindByID(ctx, line.ProductID)
			if err != nil {
				if inventory.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("product %s not found", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}

			unitPrice := s.priceFor(product, input.Currency)
			total := unitPrice * line.Quantity
			subtotal += total
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID:      product.ID,
				SKU:            product.SKU,
				ProductName:    product.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: unitPrice,
				TotalCents:     total,
			})
		}
		order.SubtotalCents = subtotal
		order.TotalCents = subtotal + order.ShippingCents

		var err error
		created, err = s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	details := fmt.Sprintf("%s - %s - %s %s", created.Reference, created.CustomerName,
		strings.ToUpper(created.Currency.String()), currency.FormatCents(created.TotalCents))
	s.record(ctx, enums.ActivityTypeOrder,
		fmt.Sprintf("Order %s created for %s (%d items)", created.Reference, created.CustomerName, len(created.Items)),
		&details, input.ActorUserID)

	return s.toDTO(created), nil
}

// GetOrder loads one order with its line items.
func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return s.toDTO(order), nil
}

// ListOrders returns a filtered page plus the next cursor.
func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) ([]OrderDTO, string, error) {
	orders, nextCursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *s.toDTO(&orders[i]))
	}
	return dtos, nextCursor, nil
}

// Transition moves the order along the lifecycle graph. Illegal and repeated
// transitions are rejected with a state conflict.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID *uuid.UUID) (*OrderDTO, error) {
	order, _, err := s.transition(ctx, orderID, target, actorUserID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(order), nil
}

// Fulfill moves a processing order to in_transit, debiting stock for every
// line exactly once.
func (s *service) Fulfill(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*FulfillOutcome, error) {
	order, debit, err := s.transition(ctx, orderID, enums.OrderStatusInTransit, actorUserID)
	if err != nil {
		return nil, err
	}
	return &FulfillOutcome{Order: s.toDTO(order), Debit: debit}, nil
}

// Deliver marks an in-transit order as delivered.
func (s *service) Deliver(ctx context.Context, orderID uuid.UUID, actorUserID *uuid.UUID) (*OrderDTO, error) {
	order, _, err := s.transition(ctx, orderID, enums.OrderStatusDelivered, actorUserID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(order), nil
}

// UpdateSync records platform handoff bookkeeping. The handoffs themselves run
// outside this service; only their status lives here.
func (s *service) UpdateSync(ctx context.Context, orderID uuid.UUID, input SyncInput, actorUserID *uuid.UUID) (*OrderDTO, error) {
	for _, state := range []*enums.SyncState{input.OdooSOSync, input.OdooInvoiceSync, input.QBInvoiceSync, input.DeliverySync} {
		if state != nil && !state.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sync state %q", *state))
		}
	}

	var updated *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		if input.OdooSOSync != nil {
			order.OdooSOSync = *input.OdooSOSync
		}
		if input.OdooInvoiceSync != nil {
			order.OdooInvoiceSync = *input.OdooInvoiceSync
		}
		if input.QBInvoiceSync != nil {
			order.QBInvoiceSync = *input.QBInvoiceSync
		}
		if input.DeliverySync != nil {
			order.DeliverySync = *input.DeliverySync
		}
		if input.OdooInvoiceID != nil {
			order.OdooInvoiceID = input.OdooInvoiceID
		}

		if updated, err = txRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order sync")
	}

	s.record(ctx, enums.ActivityTypeSync,
		fmt.Sprintf("Order %s sync state updated", updated.Reference),
		nil, actorUserID)

	return s.toDTO(updated), nil
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID *uuid.UUID) (*models.Order, *fulfillment.Result, error) {
	if !target.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
	}

	var (
		updated *models.Order
		debit   *fulfillment.Result
	)
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		if !transitionAllowed(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
		}

		now := time.Now().UTC()
		switch target {
		case enums.OrderStatusInTransit:
			lines := make([]fulfillment.Line, 0, len(order.Items))
			for _, item := range order.Items {
				lines = append(lines, fulfillment.Line{
					ProductID: item.ProductID,
					SKU:       item.SKU,
					Quantity:  item.Quantity,
				})
			}
			if debit, err = s.debitor.DebitLines(ctx, tx, lines); err != nil {
				return err
			}
			if debit.Problems != nil && s.logg != nil {
				lctx := s.logg.WithFields(ctx, map[string]any{
					"order_id": order.ID.String(),
					"problems": debit.Problems.Error(),
				})
				s.logg.Warn(lctx, "order fulfilled with skipped lines")
			}
			order.FulfilledAt = &now
			if order.TrackingNumber == nil {
				tracking := newTrackingNumber()
				order.TrackingNumber = &tracking
			}
		case enums.OrderStatusDelivered:
			order.DeliveredAt = &now
		}

		order.Status = target
		if updated, err = txRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order")
	}

	message := fmt.Sprintf("Order %s moved to %s", updated.Reference, target)
	if target == enums.OrderStatusInTransit && debit != nil {
		message = fmt.Sprintf("Order %s fulfilled, %d units debited", updated.Reference, debit.TotalApplied)
	}
	s.record(ctx, enums.ActivityTypeOrder, message, nil, actorUserID)

	return updated, debit, nil
}

func (s *service) toDTO(order *models.Order) *OrderDTO {
	usdCents := 0
	if s.converter != nil {
		if converted, err := s.converter.ConvertToUSDCents(order.TotalCents, order.Currency); err == nil {
			usdCents = converted
		}
	}
	return NewOrderDTO(order, usdCents)
}

func (s *service) record(ctx context.Context, logType enums.ActivityType, message string, details *string, actorUserID *uuid.UUID) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, logType, message, details, actorUserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"activity_error": err.Error()}), "activity record failed")
	}
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range orderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func validateCreate(input CreateInput) error {
	if !input.Source.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order source %q", input.Source))
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", input.Type))
	}
	if !input.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer_name is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer_email is required")
	}
	if input.ShippingCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping_cents cannot be negative")
	}
	if input.DeliveryPlatform != "" && !input.DeliveryPlatform.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery platform %q", input.DeliveryPlatform))
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item product_id is required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
	}
	return nil
}

// priceFor picks the list price for the order currency. A product without a
// local price falls back to the USD base price converted at the configured
// rate.
func (s *service) priceFor(product *models.Product, cur enums.Currency) int {
	var price int
	switch cur {
	case enums.CurrencyKES:
		price = product.PriceKESCents
	case enums.CurrencyNGN:
		price = product.PriceNGNCents
	default:
		return product.PriceUSDCents
	}
	if price == 0 && s.converter != nil {
		if converted, err := s.converter.ConvertUSDCents(product.PriceUSDCents, cur); err == nil {
			price = converted
		}
	}
	return price
}

func newReference() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func newTrackingNumber() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
