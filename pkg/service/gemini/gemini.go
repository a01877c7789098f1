package gemini

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used for replies
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ChatModel implements interfaces.ChatModel with a Gemini generative model
type ChatModel struct {
	models    contentGenerator
	modelName string
}

var _ interfaces.ChatModel = (*ChatModel)(nil)

// New creates a ChatModel calling modelName through client
func New(client *genai.Client, modelName string) (*ChatModel, error) {
	if client == nil {
		return nil, goerr.New("genai client is required")
	}
	if modelName == "" {
		return nil, goerr.New("model name is required")
	}
	return &ChatModel{
		models:    client.Models,
		modelName: modelName,
	}, nil
}

// Generate sends the conversation in one call without retry.
func (c *ChatModel) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	if req == nil || len(req.Turns) == 0 {
		return nil, goerr.New("conversation is empty")
	}

	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		contents = append(contents, genai.NewContentFromText(turn.Content, toRole(turn.Role)))
	}

	resp, err := c.models.GenerateContent(ctx, c.modelName, contents, buildConfig(req))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", c.modelName))
	}
	if resp == nil {
		return nil, goerr.New("empty response from model", goerr.V("model", c.modelName))
	}

	return toResponse(resp), nil
}

func toRole(role types.ChatRole) genai.Role {
	if role == types.ChatRoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func buildConfig(req *model.GenerationRequest) *genai.GenerateContentConfig {
	cfg := req.Config
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		TopK:            genai.Ptr(cfg.TopK),
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if cfg.PermissiveSafety {
		for _, category := range []genai.HarmCategory{
			genai.HarmCategoryHarassment,
			genai.HarmCategoryHateSpeech,
			genai.HarmCategorySexuallyExplicit,
			genai.HarmCategoryDangerousContent,
		} {
			gc.SafetySettings = append(gc.SafetySettings, &genai.SafetySetting{
				Category:  category,
				Threshold: genai.HarmBlockThresholdBlockNone,
			})
		}
	}
	return gc
}

func toResponse(resp *genai.GenerateContentResponse) *model.GenerationResponse {
	out := &model.GenerationResponse{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	out.Text = resp.Text()
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		out.Parts = append(out.Parts, part.Text)
	}
	return out
}
