package usecase_test

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/usecase"
)

func TestResponseGenerator_GreetingFallback(t *testing.T) {
	chatModel := failingChatModel()
	env := newTestEnv(t, 12, chatModel, rand.New(rand.NewPCG(1, 2)))
	ctx := context.Background()

	reply := env.uc.Generator.Generate(ctx, newUserID(), "hi", nil)

	gt.String(t, reply).NotEqual("")
	gt.Value(t, chatModel.calls()).Equal(1)
	gt.String(t, reply).NotContains("overdue")

	expected := `
# HELP lumi_generation_fallback_total Number of replies produced by the canned reply generator
# TYPE lumi_generation_fallback_total counter
lumi_generation_fallback_total 1
`
	gt.NoError(t, testutil.GatherAndCompare(env.metrics.Registry(), strings.NewReader(expected), "lumi_generation_fallback_total"))
}

func TestResponseGenerator_GreetingFallbackIsStyled(t *testing.T) {
	env := newTestEnv(t, 12, failingChatModel(), constRand{})
	reply := env.uc.Generator.Generate(context.Background(), newUserID(), "hi", nil)

	// constRand draws the firm style and the first phrase of each pool
	gt.Value(t, reply).Equal("I need to be real with you: Afternoon! How's your day treating you so far? I know you can handle this.")
}

func TestResponseGenerator_OverdueNotice(t *testing.T) {
	chatModel := failingChatModel()
	env := newTestEnv(t, 13, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.NoError(t, env.repo.Plan().Put(ctx, &model.DailyPlan{
		UserID: userID,
		Date:   "2026-03-09",
		Tasks: []model.Task{
			{ID: "t1", Description: "Buy milk"},
			{ID: "t2", Description: "Call Dana"},
			{ID: "t3", Description: "Water plants", Completed: true},
		},
	})).Required()

	reply := env.uc.Generator.Generate(ctx, userID, "", nil)

	gt.Value(t, reply).Equal("I need to be real with you: ⚠️ You have 2 overdue tasks:\n- Buy milk\n- Call Dana\n\n" +
		"I know you can do this! Which one should we tackle first? I know you can handle this.")
	gt.String(t, reply).Contains("2 overdue tasks")
	gt.String(t, reply).Contains("Buy milk")
	gt.String(t, reply).Contains("Call Dana")
	gt.Value(t, chatModel.calls()).Equal(0)
}

func TestResponseGenerator_OverdueIgnoredForRealMessage(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 13, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.NoError(t, env.repo.Plan().Put(ctx, &model.DailyPlan{
		UserID: userID,
		Date:   "2026-03-09",
		Tasks:  []model.Task{{ID: "t1", Description: "Buy milk"}},
	})).Required()

	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "what should I cook?", nil)).Equal("remote reply")
	gt.Value(t, chatModel.calls()).Equal(1)
}

func TestResponseGenerator_MorningCheckin(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 8, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.NoError(t, env.repo.Profile().Put(ctx, &model.Profile{
		UserID:       userID,
		PersonalInfo: model.PersonalInfo{Name: "Sam"},
	})).Required()

	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "", nil)).Equal("Good morning, Sam! Ready to make today amazing?")

	has, err := env.uc.Memory.HasMarkerSince(ctx, userID, types.TagCheckin, model.StartOfDay(env.clock.Now()))
	gt.NoError(t, err).Required()
	gt.Bool(t, has).True()

	// at most once per day
	env.clock.Advance(time.Hour)
	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "", nil)).Equal("remote reply")

	// the next morning fires again
	env.clock.Advance(24 * time.Hour)
	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "", nil)).Equal("Good morning, Sam! Ready to make today amazing?")
}

func TestResponseGenerator_MorningWithoutName(t *testing.T) {
	env := newTestEnv(t, 7, &mockChatModel{}, constRand{})
	gt.Value(t, env.uc.Generator.Generate(context.Background(), newUserID(), "ok", nil)).
		Equal("Good morning, friend! Ready to make today amazing?")
}

func TestResponseGenerator_MorningMarkerConsumedByRealMessage(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 9, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "good morning!", nil)).Equal("remote reply")
	gt.Value(t, env.uc.Generator.Generate(ctx, userID, "", nil)).Equal("remote reply")
}

func TestResponseGenerator_EveningReflection(t *testing.T) {
	env := newTestEnv(t, 21, &mockChatModel{}, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.Value(t, env.uc.Generator.Generate(ctx, userID, " ", nil)).Equal("How was your day? What went well?")

	has, err := env.uc.Memory.HasMarkerSince(ctx, userID, types.TagReflection, model.StartOfDay(env.clock.Now()))
	gt.NoError(t, err).Required()
	gt.Bool(t, has).True()
}

func TestResponseGenerator_OutsideWindowsWithoutOverdue(t *testing.T) {
	for _, hour := range []int{6, 10, 19, 23} {
		chatModel := &mockChatModel{}
		env := newTestEnv(t, hour, chatModel, constRand{})
		gt.Value(t, env.uc.Generator.Generate(context.Background(), newUserID(), "", nil)).Equal("remote reply")
	}
}

func TestResponseGenerator_RemotePrompt(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 12, chatModel, constRand{})
	ctx := context.Background()
	userID := newUserID()

	gt.NoError(t, env.repo.Profile().Put(ctx, &model.Profile{
		UserID:       userID,
		PersonalInfo: model.PersonalInfo{Name: "Sam", Occupation: "Engineer"},
	})).Required()
	gt.NoError(t, env.repo.Plan().Put(ctx, &model.DailyPlan{
		UserID: userID,
		Date:   "2026-03-10",
		Mood:   "happy",
		Tasks:  []model.Task{{ID: "t1", Description: "Buy milk"}},
	})).Required()

	var history []model.Turn
	for i, content := range []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"} {
		role := types.ChatRoleUser
		if i%2 == 1 {
			role = types.ChatRoleAssistant
		}
		history = append(history, model.Turn{Role: role, Content: content})
	}

	reply := env.uc.Generator.Generate(ctx, userID, "what now?", history)
	gt.Value(t, reply).Equal("remote reply")

	req := chatModel.lastRequest()
	gt.Value(t, req).NotNil()
	gt.Value(t, req.Config).Equal(model.DefaultGenerationConfig())

	gt.Array(t, req.Turns).Length(6)
	gt.Value(t, req.Turns[0]).Equal(model.Turn{Role: types.ChatRoleUser, Content: "h3"})
	gt.Value(t, req.Turns[1]).Equal(model.Turn{Role: types.ChatRoleAssistant, Content: "h4"})
	gt.Value(t, req.Turns[5]).Equal(model.Turn{Role: types.ChatRoleUser, Content: "what now?"})

	prompt := req.SystemPrompt
	gt.String(t, prompt).Contains("You are Lumi")
	gt.String(t, prompt).Contains("- warmth: 9")
	gt.String(t, prompt).Contains("Name: Sam")
	gt.String(t, prompt).Contains("Occupation: Engineer")
	gt.String(t, prompt).Contains("Mood: happy\nTasks:\n- Buy milk")
	gt.String(t, prompt).Contains("No relevant memories found.")
	gt.String(t, prompt).Contains("USER: h3")
	gt.String(t, prompt).Contains("2026-03-10 12:00:00 UTC")
}

func TestResponseGenerator_EmptyPlaceholders(t *testing.T) {
	chatModel := &mockChatModel{}
	env := newTestEnv(t, 12, chatModel, constRand{})

	env.uc.Generator.Generate(context.Background(), newUserID(), "hello there", nil)
	prompt := chatModel.lastRequest().SystemPrompt
	gt.String(t, prompt).Contains("No profile information available.")
	gt.String(t, prompt).Contains("No plans for today.")
	gt.String(t, prompt).Contains("No recent conversation history.")
}

func TestResponseGenerator_EmptyRemoteTextFallsBack(t *testing.T) {
	chatModel := &mockChatModel{
		generateFn: func(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
			return &model.GenerationResponse{Parts: []string{"  "}}, nil
		},
	}
	env := newTestEnv(t, 12, chatModel, constRand{})

	reply := env.uc.Generator.Generate(context.Background(), newUserID(), "lovely weather", nil)
	gt.Value(t, reply).Equal("I need to be real with you: I see. What else is happening with you? I know you can handle this.")
}

func TestResponseGenerator_PartsResponse(t *testing.T) {
	chatModel := &mockChatModel{
		generateFn: func(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
			return &model.GenerationResponse{Parts: []string{"Hello", "Sam!"}}, nil
		},
	}
	env := newTestEnv(t, 12, chatModel, constRand{})
	gt.Value(t, env.uc.Generator.Generate(context.Background(), newUserID(), "hello there", nil)).Equal("Hello Sam!")
}

func TestResponseGenerator_NoChatModel(t *testing.T) {
	env := newTestEnv(t, 12, nil, constRand{})
	reply := env.uc.Generator.Generate(context.Background(), newUserID(), "I think so", nil)
	gt.Value(t, reply).Equal("I need to be real with you: That's an interesting perspective. What led you to that thought? I know you can handle this.")
}

func TestResponseGenerator_PanicYieldsApology(t *testing.T) {
	chatModel := &mockChatModel{
		generateFn: func(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
			panic("boom")
		},
	}
	env := newTestEnv(t, 12, chatModel, constRand{})
	gt.Value(t, env.uc.Generator.Generate(context.Background(), newUserID(), "hello there", nil)).Equal(usecase.ApologyMessage)
}

func TestResponseGenerator_RecordsSelfDisclosure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates profile when absent", func(t *testing.T) {
		env := newTestEnv(t, 12, failingChatModel(), constRand{})
		userID := newUserID()

		reply := env.uc.Generator.Generate(ctx, userID, "My name is Sam", nil)
		gt.String(t, reply).NotEqual("")

		profile, err := env.repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, profile).NotNil()
		gt.Array(t, profile.Memories).Length(1)
		gt.Value(t, profile.Memories[0].Type).Equal(types.TagPersonalInfo)
		gt.Value(t, profile.Memories[0].Content).Equal("User mentioned: My name is Sam")
		gt.Value(t, profile.Memories[0].Importance).Equal(5)
	})

	t.Run("appends to existing profile and uses stored name", func(t *testing.T) {
		env := newTestEnv(t, 12, failingChatModel(), constRand{})
		userID := newUserID()
		gt.NoError(t, env.repo.Profile().Put(ctx, &model.Profile{
			UserID:       userID,
			PersonalInfo: model.PersonalInfo{Name: "Sam"},
		})).Required()

		reply := env.uc.Generator.Generate(ctx, userID, "I live in Osaka and I feel great", nil)
		gt.Value(t, reply).Equal("I need to be real with you: I hear you, Sam. What's been on your mind? I know you can handle this.")

		profile, err := env.repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, profile.Memories).Length(1)
	})

	t.Run("ordinary message records nothing", func(t *testing.T) {
		env := newTestEnv(t, 12, failingChatModel(), constRand{})
		userID := newUserID()
		env.uc.Generator.Generate(ctx, userID, "lovely weather", nil)

		profile, err := env.repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, profile).Nil()
	})
}
