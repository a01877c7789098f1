package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"github.com/secmon-lab/lumi/pkg/service/gemini"
	"google.golang.org/genai"
)

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestChatModel_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("sends system prompt, turns and fixed parameters", func(t *testing.T) {
		var gotModel string
		var gotContents []*genai.Content
		var gotConfig *genai.GenerateContentConfig

		cm := gemini.NewChatModelForTest(func(ctx context.Context, m string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = m
			gotContents = contents
			gotConfig = config
			return textResponse("Hello ", "Sam!"), nil
		}, "gemini-2.0-flash")

		resp, err := cm.Generate(ctx, &model.GenerationRequest{
			SystemPrompt: "You are Lumi",
			Turns: []model.Turn{
				{Role: types.ChatRoleUser, Content: "hi"},
				{Role: types.ChatRoleAssistant, Content: "hey!"},
				{Role: types.ChatRoleUser, Content: "how are you?"},
			},
			Config: model.DefaultGenerationConfig(),
		})
		gt.NoError(t, err).Required()

		gt.Value(t, gotModel).Equal("gemini-2.0-flash")
		gt.Array(t, gotContents).Length(3)
		gt.Value(t, gotContents[1].Role).Equal(genai.RoleModel)
		gt.Value(t, gotContents[2].Parts[0].Text).Equal("how are you?")
		gt.Value(t, *gotConfig.Temperature).Equal(float32(0.7))
		gt.Value(t, *gotConfig.TopP).Equal(float32(0.95))
		gt.Value(t, *gotConfig.TopK).Equal(float32(40))
		gt.Value(t, gotConfig.MaxOutputTokens).Equal(int32(1024))
		gt.Array(t, gotConfig.SafetySettings).Length(4)
		gt.Value(t, gotConfig.SafetySettings[0].Threshold).Equal(genai.HarmBlockThresholdBlockNone)
		gt.Value(t, gotConfig.SystemInstruction.Parts[0].Text).Equal("You are Lumi")

		gt.Value(t, resp.Parts).Equal([]string{"Hello ", "Sam!"})
		gt.Value(t, resp.PlainText()).Equal("Hello Sam!")
	})

	t.Run("wraps remote errors", func(t *testing.T) {
		cm := gemini.NewChatModelForTest(func(ctx context.Context, m string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("quota")
		}, "gemini-2.0-flash")

		_, err := cm.Generate(ctx, &model.GenerationRequest{Turns: []model.Turn{{Role: types.ChatRoleUser, Content: "hi"}}})
		gt.Error(t, err)
	})

	t.Run("no candidates yields empty text", func(t *testing.T) {
		cm := gemini.NewChatModelForTest(func(ctx context.Context, m string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}, "gemini-2.0-flash")

		resp, err := cm.Generate(ctx, &model.GenerationRequest{Turns: []model.Turn{{Role: types.ChatRoleUser, Content: "hi"}}})
		gt.NoError(t, err).Required()
		gt.Value(t, resp.PlainText()).Equal("")
	})

	t.Run("rejects empty conversation", func(t *testing.T) {
		cm := gemini.NewChatModelForTest(nil, "gemini-2.0-flash")
		_, err := cm.Generate(ctx, &model.GenerationRequest{})
		gt.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	_, err := gemini.New(nil, "gemini-2.0-flash")
	gt.Error(t, err)
}
