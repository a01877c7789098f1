package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

type planRepository struct {
	mu    sync.RWMutex
	plans map[string]map[string]*model.DailyPlan // userID -> date -> plan
}

func newPlanRepository() *planRepository {
	return &planRepository{
		plans: make(map[string]map[string]*model.DailyPlan),
	}
}

func copyPlan(p *model.DailyPlan) *model.DailyPlan {
	copied := *p
	copied.Tasks = slices.Clone(p.Tasks)
	for i := range copied.Tasks {
		if at := copied.Tasks[i].CompletedAt; at != nil {
			v := *at
			copied.Tasks[i].CompletedAt = &v
		}
	}
	return &copied
}

func (r *planRepository) Get(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.plans[userID][date]
	if !exists {
		return nil, nil
	}
	return copyPlan(p), nil
}

func (r *planRepository) Put(ctx context.Context, plan *model.DailyPlan) error {
	if plan.UserID == "" || plan.Date == "" {
		return goerr.New("user ID and date are required", goerr.V("user_id", plan.UserID), goerr.V("date", plan.Date))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[plan.UserID]; !exists {
		r.plans[plan.UserID] = make(map[string]*model.DailyPlan)
	}

	stored := copyPlan(plan)
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.plans[plan.UserID][plan.Date] = stored
	return nil
}

func (r *planRepository) ListBefore(ctx context.Context, userID, date string) ([]*model.DailyPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DailyPlan, 0)
	for d, p := range r.plans[userID] {
		if d < date {
			result = append(result, copyPlan(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}
