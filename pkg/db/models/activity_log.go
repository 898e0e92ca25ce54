package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// ActivityLog is an append-only audit entry. The actor is always an explicit
// parameter; there is no ambient current-user state.
type ActivityLog struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.ActivityType `gorm:"column:type;not null"`
	Message     string             `gorm:"column:message;not null"`
	Details     *string            `gorm:"column:details"`
	ActorUserID *uuid.UUID         `gorm:"column:actor_user_id;type:uuid"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
