package shipments

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// ItemDTO is the API shape of one shipment line.
type ItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitCostCents  int       `json:"unit_cost_cents"`
	TotalCostCents int       `json:"total_cost_cents"`
}

// ShipmentDTO is the API shape of an inbound shipment.
type ShipmentDTO struct {
	ID                     uuid.UUID            `json:"id"`
	Reference              string               `json:"reference"`
	Supplier               string               `json:"supplier"`
	Origin                 string               `json:"origin"`
	DestinationWarehouseID uuid.UUID            `json:"destination_warehouse_id"`
	TotalUnits             int                  `json:"total_units"`
	TotalValueCents        int                  `json:"total_value_cents"`
	Currency               enums.Currency       `json:"currency"`
	Status                 enums.ShipmentStatus `json:"status"`
	Carrier                string               `json:"carrier,omitempty"`
	TrackingNumber         *string              `json:"tracking_number,omitempty"`
	ContainerNumber        *string              `json:"container_number,omitempty"`
	EstimatedArrival       *time.Time           `json:"estimated_arrival,omitempty"`
	ActualArrival          *time.Time           `json:"actual_arrival,omitempty"`
	ReceivedByUserID       *uuid.UUID           `json:"received_by_user_id,omitempty"`
	ReceivedAt             *time.Time           `json:"received_at,omitempty"`
	Notes                  *string              `json:"notes,omitempty"`
	Items                  []ItemDTO            `json:"items"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
}

// NewShipmentDTO maps a shipment model to its API shape.
func NewShipmentDTO(shipment *models.Shipment) *ShipmentDTO {
	items := make([]ItemDTO, 0, len(shipment.Items))
	for _, item := range shipment.Items {
		items = append(items, ItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SKU:            item.SKU,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitCostCents:  item.UnitCostCents,
			TotalCostCents: item.TotalCostCents,
		})
	}

	return &ShipmentDTO{
		ID:                     shipment.ID,
		Reference:              shipment.Reference,
		Supplier:               shipment.Supplier,
		Origin:                 shipment.Origin,
		DestinationWarehouseID: shipment.DestinationWarehouseID,
		TotalUnits:             shipment.TotalUnits,
		TotalValueCents:        shipment.TotalValueCents,
		Currency:               shipment.Currency,
		Status:                 shipment.Status,
		Carrier:                shipment.Carrier,
		TrackingNumber:         shipment.TrackingNumber,
		ContainerNumber:        shipment.ContainerNumber,
		EstimatedArrival:       shipment.EstimatedArrival,
		ActualArrival:          shipment.ActualArrival,
		ReceivedByUserID:       shipment.ReceivedByUserID,
		ReceivedAt:             shipment.ReceivedAt,
		Notes:                  shipment.Notes,
		Items:                  items,
		CreatedAt:              shipment.CreatedAt,
		UpdatedAt:              shipment.UpdatedAt,
	}
}
