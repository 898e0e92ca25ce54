package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
)

// ProductDTO is the public product shape returned by the API.
type ProductDTO struct {
	ID             uuid.UUID  `json:"id"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	PriceUSDCents  int        `json:"price_usd_cents"`
	PriceKESCents  int        `json:"price_kes_cents"`
	PriceNGNCents  int        `json:"price_ngn_cents"`
	CostCents      int        `json:"cost_cents"`
	Stock          int        `json:"stock"`
	ReservedStock  int        `json:"reserved_stock"`
	AvailableStock int        `json:"available_stock"`
	ReorderLevel   int        `json:"reorder_level"`
	Status         string     `json:"status"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Description    *string    `json:"description,omitempty"`
	WarehouseID    *uuid.UUID `json:"warehouse_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewProductDTO maps the model to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:             product.ID,
		SKU:            product.SKU,
		Name:           product.Name,
		Category:       product.Category,
		PriceUSDCents:  product.PriceUSDCents,
		PriceKESCents:  product.PriceKESCents,
		PriceNGNCents:  product.PriceNGNCents,
		CostCents:      product.CostCents,
		Stock:          product.Stock,
		ReservedStock:  product.ReservedStock,
		AvailableStock: product.AvailableStock,
		ReorderLevel:   product.ReorderLevel,
		Status:         product.Status.String(),
		ImageURL:       product.ImageURL,
		Description:    product.Description,
		WarehouseID:    product.WarehouseID,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// NewProductDTOs maps a model slice.
func NewProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
