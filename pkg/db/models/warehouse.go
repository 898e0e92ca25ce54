package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// Warehouse is a physical storage location in one operating market. It carries
// no stock counts of its own; occupancy is derived from the products assigned
// to it.
type Warehouse struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string                 `gorm:"column:name;not null"`
	Location         string                 `gorm:"column:location;not null"`
	Region           enums.Region           `gorm:"column:region;not null"`
	Capacity         int                    `gorm:"column:capacity;not null;default:0"`
	ManagerName      string                 `gorm:"column:manager_name"`
	ManagerUserID    *uuid.UUID             `gorm:"column:manager_user_id;type:uuid"`
	Status           enums.WarehouseStatus  `gorm:"column:status;not null;default:'active'"`
	DeliveryPlatform enums.DeliveryPlatform `gorm:"column:delivery_platform;not null;default:'none'"`
	LastAuditAt      *time.Time             `gorm:"column:last_audit_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
