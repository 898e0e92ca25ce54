package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uncoverhq/ops-backend/pkg/db/models"
	"github.com/uncoverhq/ops-backend/pkg/enums"
	pkgerrors "github.com/uncoverhq/ops-backend/pkg/errors"
)

const testActivitySchema = `
CREATE TABLE IF NOT EXISTS activity_logs (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  message TEXT NOT NULL,
  details TEXT,
  actor_user_id TEXT,
  created_at DATETIME
);`

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:activity_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.Exec(testActivitySchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	actor := uuid.New()
	details := "SKU-100 moved between Nairobi warehouses"
	if err := svc.Record(ctx, enums.ActivityTypeTransfer, "Transferred 40 units", &details, &actor); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, enums.ActivityTypeInventory, "Stock adjusted", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	var found bool
	for _, entry := range entries {
		if entry.Type == enums.ActivityTypeTransfer {
			found = true
			if entry.Details == nil || *entry.Details != details {
				t.Fatalf("details lost: %+v", entry)
			}
			if entry.ActorUserID == nil || *entry.ActorUserID != actor {
				t.Fatalf("actor lost: %+v", entry)
			}
		}
	}
	if !found {
		t.Fatal("transfer entry missing from listing")
	}
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, enums.ActivityType("bogus"), "message", nil, nil); err == nil {
		t.Fatal("expected invalid type error")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Record(ctx, enums.ActivityTypeOrder, "", nil, nil); err == nil {
		t.Fatal("expected empty message error")
	}
}

func TestListFiltersByType(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Record(ctx, enums.ActivityTypeOrder, "Order created", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, enums.ActivityTypeShipment, "Shipment advanced", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	orderType := enums.ActivityTypeOrder
	entries, err := svc.List(ctx, &orderType)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != enums.ActivityTypeOrder {
		t.Fatalf("filter failed: %+v", entries)
	}

	bogus := enums.ActivityType("bogus")
	if _, err := svc.List(ctx, &bogus); err == nil {
		t.Fatal("expected invalid filter error")
	}
}

func TestListCapsAtLatestFifty(t *testing.T) {
	t.Parallel()
	svc, conn := newTestService(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		entry := &models.ActivityLog{
			ID:        uuid.New(),
			Type:      enums.ActivityTypeSync,
			Message:   fmt.Sprintf("sync run %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := conn.Create(entry).Error; err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	entries, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("expected cap of 50, got %d", len(entries))
	}
	if entries[0].Message != "sync run 59" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Message)
	}
}
