package interfaces

import (
	"context"

	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// PlanRepository defines the interface for DailyPlan data persistence
type PlanRepository interface {
	// Get returns the plan of userID for date (model.DateLayout), or nil when none exists
	Get(ctx context.Context, userID, date string) (*model.DailyPlan, error)

	// Put creates or replaces the plan identified by (UserID, Date)
	Put(ctx context.Context, plan *model.DailyPlan) error

	// ListBefore returns plans of userID dated strictly before date, oldest first
	ListBefore(ctx context.Context, userID, date string) ([]*model.DailyPlan, error)
}
