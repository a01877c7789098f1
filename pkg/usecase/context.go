package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxConversationHistory is the number of chat turns rendered into the context
	MaxConversationHistory = 5

	// maxProfileMemories is the number of curated profile memories rendered into the context
	maxProfileMemories = 3

	notSpecified  = "Not specified"
	noneSpecified = "None specified"
)

// ContextAssembler builds the ContextBundle for one reply
type ContextAssembler struct {
	repo   interfaces.Repository
	memory *MemoryStore
	now    func() time.Time
}

// NewContextAssembler creates a ContextAssembler
func NewContextAssembler(repo interfaces.Repository, memory *MemoryStore) *ContextAssembler {
	return &ContextAssembler{
		repo:   repo,
		memory: memory,
		now:    time.Now,
	}
}

// BuildContext gathers each section concurrently. A failing section is logged and
// left empty without affecting the others. When recent is empty, chat history is
// read from the memory store.
func (a *ContextAssembler) BuildContext(ctx context.Context, userID string, recent []model.Turn) *model.ContextBundle {
	now := a.now().UTC()
	bundle := &model.ContextBundle{
		CurrentTime: now.Format(model.CurrentTimeLayout),
	}
	logger := logging.From(ctx).With(slog.String("user_id", userID))

	var eg errgroup.Group

	eg.Go(func() error {
		profile, err := a.repo.Profile().Get(ctx, userID)
		if err != nil {
			logger.Warn("failed to read profile for context", slog.Any("error", err))
			return nil
		}
		bundle.ProfileInfo = formatProfile(profile)
		bundle.Memories = formatProfileMemories(profile)
		return nil
	})

	eg.Go(func() error {
		plan, err := a.repo.Plan().Get(ctx, userID, model.DateOf(now))
		if err != nil {
			logger.Warn("failed to read daily plan for context", slog.Any("error", err))
			return nil
		}
		bundle.DailyPlan = formatPlan(plan)
		return nil
	})

	eg.Go(func() error {
		if len(recent) > 0 {
			bundle.ChatHistory = formatTurns(recent)
			return nil
		}
		results := a.memory.Query(ctx, userID, "recent conversation", MaxConversationHistory, types.TagChat)
		bundle.ChatHistory = formatChatMemories(results)
		return nil
	})

	_ = eg.Wait()
	return bundle
}

func formatProfile(profile *model.Profile) string {
	if profile == nil {
		return ""
	}
	info := profile.PersonalInfo
	return strings.Join([]string{
		"Name: " + profile.DisplayName(),
		"Location: " + orDefault(info.Location, notSpecified),
		"Occupation: " + orDefault(info.Occupation, notSpecified),
		"Interests: " + orDefault(strings.Join(info.Interests, ", "), noneSpecified),
		"Goals: " + orDefault(strings.Join(info.Goals, ", "), noneSpecified),
	}, "\n")
}

func formatProfileMemories(profile *model.Profile) string {
	if profile == nil {
		return ""
	}
	memories := profile.RelevantMemories("", maxProfileMemories)
	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, fmt.Sprintf("- %s (%s)", m.Content, orDefault(m.Type, "note")))
	}
	return strings.Join(lines, "\n")
}

func formatPlan(plan *model.DailyPlan) string {
	if plan == nil {
		return ""
	}
	lines := make([]string, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		line := "- " + t.Label()
		if t.Completed {
			line += " (done)"
		}
		lines = append(lines, line)
	}
	tasks := strings.Join(lines, "\n")
	return fmt.Sprintf("Mood: %s\nTasks:\n%s", orDefault(plan.Mood, notSpecified), orDefault(tasks, "No tasks for today"))
}

// formatTurns renders the last MaxConversationHistory turns in the given order
func formatTurns(turns []model.Turn) string {
	if len(turns) > MaxConversationHistory {
		turns = turns[len(turns)-MaxConversationHistory:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		lines = append(lines, strings.ToUpper(orDefault(string(t.Role), string(types.ChatRoleUser)))+": "+content)
	}
	return strings.Join(lines, "\n")
}

// formatChatMemories renders memory store results oldest first
func formatChatMemories(results []*model.ScoredMemory) string {
	records := make([]*model.MemoryRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.Record)
	}
	slices.SortStableFunc(records, func(a, b *model.MemoryRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	turns := make([]model.Turn, 0, len(records))
	for _, r := range records {
		turns = append(turns, model.Turn{
			Role:    types.ChatRole(r.MetaString(types.MetaRole)),
			Content: r.Text,
		})
	}
	return formatTurns(turns)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
