package model

import "strings"

// GenerationConfig holds sampling parameters for the remote generative model
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32

	// PermissiveSafety disables blocking for harassment, hate speech, sexually
	// explicit and dangerous content categories.
	PermissiveSafety bool
}

// DefaultGenerationConfig returns the parameters used for companion replies.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      0.7,
		TopP:             0.95,
		TopK:             40,
		MaxOutputTokens:  1024,
		PermissiveSafety: true,
	}
}

// GenerationRequest is a conversation submitted to the remote generative model.
// The final turn is the new user message.
type GenerationRequest struct {
	SystemPrompt string
	Turns        []Turn
	Config       GenerationConfig
}

// GenerationResponse carries both response shapes the model may return: a direct
// text field and the text parts of the first candidate.
type GenerationResponse struct {
	Text  string
	Parts []string
}

// PlainText returns the direct text when present, otherwise the parts joined by
// single spaces.
func (r *GenerationResponse) PlainText() string {
	if r == nil {
		return ""
	}
	if s := strings.TrimSpace(r.Text); s != "" {
		return s
	}
	return strings.TrimSpace(strings.Join(r.Parts, " "))
}
