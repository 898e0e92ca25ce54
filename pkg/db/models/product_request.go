package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/pkg/enums"
)

// ProductRequest is an internal stock handout request. It moves through
// pending approval, approval or rejection, readiness and collection; it never
// touches the stock ledger itself.
type ProductRequest struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference        string              `gorm:"column:reference;not null;uniqueIndex"`
	ProductID        uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName      string              `gorm:"column:product_name;not null"`
	Quantity         int                 `gorm:"column:quantity;not null"`
	Reason           string              `gorm:"column:reason;not null"`
	RequesterName    string              `gorm:"column:requester_name;not null"`
	RequesterEmail   string              `gorm:"column:requester_email"`
	RequesterUserID  *uuid.UUID          `gorm:"column:requester_user_id;type:uuid"`
	ApproverName     string              `gorm:"column:approver_name;not null"`
	ApproverEmail    string              `gorm:"column:approver_email"`
	ApproverUserID   *uuid.UUID          `gorm:"column:approver_user_id;type:uuid"`
	Status           enums.RequestStatus `gorm:"column:status;not null;default:'pending_approval'"`
	AssignedToName   *string             `gorm:"column:assigned_to_name"`
	AssignedToUserID *uuid.UUID          `gorm:"column:assigned_to_user_id;type:uuid"`
	RejectionReason  *string             `gorm:"column:rejection_reason"`
	CollectionPoint  *string             `gorm:"column:collection_point"`
	ApprovedAt       *time.Time          `gorm:"column:approved_at"`
	ReadyAt          *time.Time          `gorm:"column:ready_at"`
	CollectedAt      *time.Time          `gorm:"column:collected_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
