package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/usecase"
)

func TestChatUseCase_Send(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 12, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	reply, err := env.uc.Chat.Send(ctx, userID, "how was the weather?")
	gt.NoError(t, err).Required()
	gt.Value(t, reply.Role).Equal(types.ChatRoleAssistant)
	gt.Value(t, reply.Content).Equal("remote reply")

	history, err := env.uc.Chat.History(ctx, userID, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, history).Length(2)
	gt.Value(t, history[0].Role).Equal(types.ChatRoleUser)
	gt.Value(t, history[0].Content).Equal("how was the weather?")
	gt.Value(t, history[1].Content).Equal("remote reply")

	records := env.uc.Memory.Query(ctx, userID, "weather", 5, types.TagChat)
	gt.Array(t, records).Length(2)
}

func TestChatUseCase_SendPassesHistory(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 12, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	_, err := env.uc.Chat.Send(ctx, userID, "first message")
	gt.NoError(t, err).Required()
	env.clock.Advance(time.Minute)
	_, err = env.uc.Chat.Send(ctx, userID, "second message")
	gt.NoError(t, err).Required()

	req := chatModel.lastRequest()
	gt.Array(t, req.Turns).Length(3)
	gt.Value(t, req.Turns[0]).Equal(model.Turn{Role: types.ChatRoleUser, Content: "first message"})
	gt.Value(t, req.Turns[1]).Equal(model.Turn{Role: types.ChatRoleAssistant, Content: "remote reply"})
	gt.Value(t, req.Turns[2]).Equal(model.Turn{Role: types.ChatRoleUser, Content: "second message"})
}

func TestChatUseCase_SendValidation(t *testing.T) {
	env := newTestEnv(t, 12, &mockChatModel{}, constRand{})
	ctx := context.Background()

	_, err := env.uc.Chat.Send(ctx, newUserID(), "  ")
	gt.Error(t, err).Is(usecase.ErrEmptyMessage)

	_, err = env.uc.Chat.Send(ctx, "", "hello")
	gt.Error(t, err).Is(usecase.ErrInvalidUserID)
}

func TestChatUseCase_History(t *testing.T) {
	env := newTestEnv(t, 12, &mockChatModel{}, constRand{})
	ctx := context.Background()
	userID := newUserID()

	for range 3 {
		_, err := env.uc.Chat.Send(ctx, userID, "ping message")
		gt.NoError(t, err).Required()
		env.clock.Advance(time.Second)
	}

	t.Run("limit keeps the latest messages", func(t *testing.T) {
		history, err := env.uc.Chat.History(ctx, userID, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(2)
		gt.Value(t, history[0].Role).Equal(types.ChatRoleUser)
		gt.Value(t, history[1].Role).Equal(types.ChatRoleAssistant)
		gt.Value(t, history[1].Timestamp).Equal(env.clock.Now().Add(-time.Second))
	})

	t.Run("invalid limits", func(t *testing.T) {
		for _, limit := range []int{0, -1, usecase.MaxHistoryLimit + 1} {
			_, err := env.uc.Chat.History(ctx, userID, limit)
			gt.Error(t, err).Is(usecase.ErrInvalidLimit)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		history, err := env.uc.Chat.History(ctx, newUserID(), usecase.MaxHistoryLimit)
		gt.NoError(t, err).Required()
		gt.Array(t, history).Length(0)
	})
}

func TestChatUseCase_Status(t *testing.T) {
	env := newTestEnv(t, 12, &mockChatModel{}, constRand{})
	ctx := context.Background()
	userID := newUserID()

	status, err := env.uc.Chat.Status(ctx, userID)
	gt.NoError(t, err).Required()
	gt.Bool(t, status.HasProfile).False()
	gt.Bool(t, status.HasTodayPlan).False()
	gt.Value(t, status.UserName).Equal(model.DefaultUserName)
	gt.Value(t, status.MessageCountToday).Equal(0)

	_, err = env.uc.Chat.Send(ctx, userID, "yesterday's talk")
	gt.NoError(t, err).Required()
	env.clock.Advance(24 * time.Hour)

	_, err = env.uc.Profile.SaveAnswers(ctx, userID, map[string]string{"q1": "Sam"})
	gt.NoError(t, err).Required()
	_, err = env.uc.Plan.SaveToday(ctx, userID, []string{"Buy milk"}, "calm", "")
	gt.NoError(t, err).Required()
	_, err = env.uc.Chat.Send(ctx, userID, "today's talk")
	gt.NoError(t, err).Required()

	status, err = env.uc.Chat.Status(ctx, userID)
	gt.NoError(t, err).Required()
	gt.Bool(t, status.HasProfile).True()
	gt.Bool(t, status.HasTodayPlan).True()
	gt.Value(t, status.UserName).Equal("Sam")
	gt.Value(t, status.MessageCountToday).Equal(2)
}
