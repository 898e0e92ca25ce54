package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Shipment is an inbound purchase shipment headed for one warehouse. Receiving
// it credits stock for every listed item exactly once.
type Shipment struct {
	ID                     uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference              string               `gorm:"column:reference;not null;uniqueIndex"`
	Supplier               string               `gorm:"column:supplier;not null"`
	Origin                 string               `gorm:"column:origin;not null"`
	DestinationWarehouseID uuid.UUID            `gorm:"column:destination_warehouse_id;type:uuid;not null"`
	TotalUnits             int                  `gorm:"column:total_units;not null;default:0"`
	TotalValueCents        int                  `gorm:"column:total_value_cents;not null;default:0"`
	Currency               enums.Currency       `gorm:"column:currency;not null"`
	Status                 enums.ShipmentStatus `gorm:"column:status;not null;default:'created'"`
	Carrier                string               `gorm:"column:carrier"`
	TrackingNumber         *string              `gorm:"column:tracking_number"`
	ContainerNumber        *string              `gorm:"column:container_number"`
	EstimatedArrival       *time.Time           `gorm:"column:estimated_arrival"`
	ActualArrival          *time.Time           `gorm:"column:actual_arrival"`
	CreatedByUserID        *uuid.UUID           `gorm:"column:created_by_user_id;type:uuid"`
	ReceivedByUserID       *uuid.UUID           `gorm:"column:received_by_user_id;type:uuid"`
	ReceivedAt             *time.Time           `gorm:"column:received_at"`
	Notes                  *string              `gorm:"column:notes"`
	Items                  []ShipmentItem       `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
