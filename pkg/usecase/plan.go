package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
)

// PlanUseCase manages daily plans and their mood memories
type PlanUseCase struct {
	repo   interfaces.Repository
	memory *MemoryStore
	now    func() time.Time
}

// NewPlanUseCase creates a PlanUseCase
func NewPlanUseCase(repo interfaces.Repository, memory *MemoryStore) *PlanUseCase {
	return &PlanUseCase{
		repo:   repo,
		memory: memory,
		now:    time.Now,
	}
}

// SaveToday creates or replaces today's plan. Tasks keep their ID and completion
// when a task with the same description already exists in today's plan.
func (uc *PlanUseCase) SaveToday(ctx context.Context, userID string, tasks []string, mood, moodNote string) (*model.DailyPlan, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidUserID, "failed to save daily plan")
	}

	now := uc.now().UTC()
	date := model.DateOf(now)

	existing, err := uc.repo.Plan().Get(ctx, userID, date)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get daily plan", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}

	previous := make(map[string]model.Task)
	plan := &model.DailyPlan{
		UserID:    userID,
		Date:      date,
		Mood:      strings.TrimSpace(mood),
		MoodNote:  strings.TrimSpace(moodNote),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		plan.CreatedAt = existing.CreatedAt
		for _, t := range existing.Tasks {
			previous[t.Description] = t
		}
	}

	for _, desc := range tasks {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}
		if t, ok := previous[desc]; ok {
			plan.Tasks = append(plan.Tasks, t)
			delete(previous, desc)
			continue
		}
		plan.Tasks = append(plan.Tasks, model.Task{
			ID:          model.NewTaskID(),
			Description: desc,
		})
	}

	if err := uc.repo.Plan().Put(ctx, plan); err != nil {
		return nil, goerr.Wrap(err, "failed to save daily plan", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}

	text := fmt.Sprintf("Today's mood: %s. Tasks: %s", orDefault(plan.Mood, notSpecified), strings.Join(plan.TaskLabels(), ", "))
	if _, err := uc.memory.Save(ctx, userID, text, []string{types.TagDailyPlan, types.TagMood}, map[string]any{
		types.MetaType: types.TagDailyPlan,
		types.MetaDate: date,
		types.MetaMood: plan.Mood,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to save daily plan memory", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}

	return plan, nil
}

// Today returns today's plan or nil
func (uc *PlanUseCase) Today(ctx context.Context, userID string) (*model.DailyPlan, error) {
	date := model.DateOf(uc.now())
	plan, err := uc.repo.Plan().Get(ctx, userID, date)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get daily plan", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}
	return plan, nil
}

// CompleteTask marks a task of the plan dated date as completed
func (uc *PlanUseCase) CompleteTask(ctx context.Context, userID, date string, taskID model.TaskID) error {
	plan, err := uc.repo.Plan().Get(ctx, userID, date)
	if err != nil {
		return goerr.Wrap(err, "failed to get daily plan", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}
	if plan == nil {
		return goerr.Wrap(ErrTaskNotFound, "daily plan not found", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}

	idx := plan.FindTask(taskID)
	if idx < 0 {
		return goerr.Wrap(ErrTaskNotFound, "task not found in plan", goerr.V(DateKey, date), goerr.V(TaskIDKey, taskID))
	}
	if plan.Tasks[idx].Completed {
		return nil
	}

	now := uc.now().UTC()
	plan.Tasks[idx].Completed = true
	plan.Tasks[idx].CompletedAt = &now
	plan.UpdatedAt = now

	if err := uc.repo.Plan().Put(ctx, plan); err != nil {
		return goerr.Wrap(err, "failed to update daily plan", goerr.V(UserIDKey, userID), goerr.V(DateKey, date))
	}
	return nil
}

// Overdue returns incomplete tasks from plans dated strictly before today.
// Plans with a malformed date are logged and skipped.
func (uc *PlanUseCase) Overdue(ctx context.Context, userID string) ([]model.OverdueTask, error) {
	today := model.DateOf(uc.now())
	plans, err := uc.repo.Plan().ListBefore(ctx, userID, today)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list past plans", goerr.V(UserIDKey, userID), goerr.V(DateKey, today))
	}

	var overdue []model.OverdueTask
	for _, plan := range plans {
		tasks, err := plan.IncompleteTasks()
		if err != nil {
			logging.From(ctx).Warn("skipping malformed daily plan",
				slog.Any("error", err),
				slog.String("user_id", userID),
			)
			continue
		}
		overdue = append(overdue, tasks...)
	}
	return overdue, nil
}
