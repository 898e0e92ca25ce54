package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/internal/inventory"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/metrics"
)

// Line is one product movement request, debit or credit.
type Line struct {
	ProductID uuid.UUID
	SKU       string
	Quantity  int
}

// LineOutcome reports what actually happened to one line.
type LineOutcome struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Requested int       `json:"requested"`
	Applied   int       `json:"applied"`
	Clamped   bool      `json:"clamped"`
}

// Result aggregates the per-line outcomes of a fulfillment or receiving pass.
// Problems collects the non-fatal per-line failures; callers log it and carry
// on, since one missing product must not hold up the rest of the order.
type Result struct {
	Lines           []LineOutcome `json:"lines"`
	MissingProducts []uuid.UUID   `json:"missing_products,omitempty"`
	TotalRequested  int           `json:"total_requested"`
	TotalApplied    int           `json:"total_applied"`
	Problems        error         `json:"-"`
}

// Debitor applies best-effort stock movements for order fulfillment and
// shipment receiving. It runs inside the caller's transaction so the state
// transition and its stock effect commit together. Reserved stock is never
// consumed here; reservations belong to the ledger's own operations.
type Debitor struct {
	repo    *inventory.Repository
	metrics *metrics.InventoryMetrics
	logg    *logger.Logger
}

// NewDebitor constructs the fulfillment debitor.
func NewDebitor(repo *inventory.Repository, m *metrics.InventoryMetrics, logg *logger.Logger) (*Debitor, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Debitor{repo: repo, metrics: m, logg: logg}, nil
}

// DebitLines subtracts each line's quantity from on-hand stock, clamping at
// zero per line.
func (d *Debitor) DebitLines(ctx context.Context, tx *gorm.DB, lines []Line) (*Result, error) {
	return d.applyLines(ctx, tx, lines, -1)
}

// CreditLines adds each line's quantity to on-hand stock.
func (d *Debitor) CreditLines(ctx context.Context, tx *gorm.DB, lines []Line) (*Result, error) {
	return d.applyLines(ctx, tx, lines, +1)
}

func (d *Debitor) applyLines(ctx context.Context, tx *gorm.DB, lines []Line, sign int) (*Result, error) {
	txRepo := d.repo.WithTx(tx)
	result := &Result{}

	for _, line := range lines {
		result.TotalRequested += line.Quantity

		if line.Quantity <= 0 {
			result.Problems = multierr.Append(result.Problems,
				fmt.Errorf("line %s: quantity %d is not positive", line.SKU, line.Quantity))
			continue
		}

		product, err := txRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if inventory.IsNotFound(err) {
				result.MissingProducts = append(result.MissingProducts, line.ProductID)
				result.Problems = multierr.Append(result.Problems,
					fmt.Errorf("line %s: product %s not found", line.SKU, line.ProductID))
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		applied, clamped := inventory.ApplyDelta(product, sign*line.Quantity)
		if _, err := txRepo.Save(ctx, product); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save product")
		}

		result.Lines = append(result.Lines, LineOutcome{
			ProductID: product.ID,
			SKU:       product.SKU,
			Requested: line.Quantity,
			Applied:   sign * applied,
			Clamped:   clamped,
		})
		result.TotalApplied += sign * applied

		direction := "credit"
		if sign < 0 {
			direction = "debit"
		}
		d.metrics.IncAdjustment(direction)
		if clamped {
			d.metrics.IncClampedDebit()
			if d.logg != nil {
				lctx := d.logg.WithFields(ctx, map[string]any{
					"product_id": product.ID.String(),
					"sku":        product.SKU,
					"requested":  line.Quantity,
					"applied":    sign * applied,
				})
				d.logg.Warn(lctx, "stock debit clamped at zero")
			}
		}
	}

	return result, nil
}
