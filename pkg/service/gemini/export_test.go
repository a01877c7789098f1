package gemini

import (
	"context"

	"google.golang.org/genai"
)

// GenerateContentFunc adapts a function to the generator used by ChatModel
type GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f GenerateContentFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

// NewChatModelForTest creates a ChatModel backed by fn instead of a genai client
func NewChatModelForTest(fn GenerateContentFunc, modelName string) *ChatModel {
	return &ChatModel{models: fn, modelName: modelName}
}
