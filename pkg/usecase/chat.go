package usecase

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
)

const (
	// chatHistoryTurns is the number of stored messages passed to the generator
	chatHistoryTurns = 10

	// MaxHistoryLimit is the largest page returned by History
	MaxHistoryLimit = 100

	// statusMessageScan bounds the messages scanned when counting today's messages
	statusMessageScan = 100
)

// ChatUseCase runs one conversation turn and exposes the chat log
type ChatUseCase struct {
	repo      interfaces.Repository
	memory    *MemoryStore
	generator *ResponseGenerator
	now       func() time.Time
}

// NewChatUseCase creates a ChatUseCase
func NewChatUseCase(repo interfaces.Repository, memory *MemoryStore, generator *ResponseGenerator) *ChatUseCase {
	return &ChatUseCase{
		repo:      repo,
		memory:    memory,
		generator: generator,
		now:       time.Now,
	}
}

// Send stores the user message, generates the reply and stores it.
func (uc *ChatUseCase) Send(ctx context.Context, userID, message string) (*model.ChatMessage, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidUserID, "failed to send message")
	}
	if strings.TrimSpace(message) == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "failed to send message", goerr.V(UserIDKey, userID))
	}

	history, err := uc.History(ctx, userID, chatHistoryTurns)
	if err != nil {
		return nil, err
	}
	turns := make([]model.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, m.Turn())
	}

	if _, err := uc.record(ctx, userID, types.ChatRoleUser, message); err != nil {
		return nil, err
	}

	reply := uc.generator.Generate(ctx, userID, message, turns)

	return uc.record(ctx, userID, types.ChatRoleAssistant, reply)
}

func (uc *ChatUseCase) record(ctx context.Context, userID string, role types.ChatRole, content string) (*model.ChatMessage, error) {
	now := uc.now().UTC()
	msg, err := uc.repo.Chat().Create(ctx, &model.ChatMessage{
		ID:        model.NewChatMessageID(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save chat message", goerr.V(UserIDKey, userID), goerr.V("role", role))
	}

	if _, err := uc.memory.Save(ctx, userID, content, []string{types.TagChat}, map[string]any{
		types.MetaType:      "chat_message",
		types.MetaRole:      string(role),
		types.MetaTimestamp: now.Format(time.RFC3339),
	}); err != nil {
		logging.From(ctx).Warn("failed to save chat memory",
			slog.Any("error", err),
			slog.String("user_id", userID),
		)
	}
	return msg, nil
}

// History returns up to limit latest messages, oldest first
func (uc *ChatUseCase) History(ctx context.Context, userID string, limit int) ([]*model.ChatMessage, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, goerr.Wrap(ErrInvalidLimit, "invalid history limit", goerr.V("limit", limit))
	}

	msgs, err := uc.repo.Chat().ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chat messages", goerr.V(UserIDKey, userID))
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// Status reports profile and plan presence and today's message count
func (uc *ChatUseCase) Status(ctx context.Context, userID string) (*model.Status, error) {
	now := uc.now().UTC()

	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UserIDKey, userID))
	}
	plan, err := uc.repo.Plan().Get(ctx, userID, model.DateOf(now))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get daily plan", goerr.V(UserIDKey, userID))
	}
	msgs, err := uc.repo.Chat().ListRecent(ctx, userID, statusMessageScan)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chat messages", goerr.V(UserIDKey, userID))
	}

	startOfDay := model.StartOfDay(now)
	count := 0
	for _, m := range msgs {
		if !m.Timestamp.Before(startOfDay) {
			count++
		}
	}

	return &model.Status{
		HasProfile:        profile != nil,
		HasTodayPlan:      plan != nil,
		UserName:          profile.DisplayName(),
		MessageCountToday: count,
	}, nil
}
