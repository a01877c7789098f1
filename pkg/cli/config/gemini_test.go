package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/cli/config"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("returns nil clients without credentials", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1", "", "")
		llmClient, chatModel, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, llmClient).Nil()
		gt.Value(t, chatModel).Nil()
	})

	t.Run("api key enables generation only", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "", "test-key", "")
		llmClient, chatModel, err := cfg.Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, llmClient).Nil()
		gt.Value(t, chatModel).NotNil()
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "", "", "")
		gt.Value(t, len(cfg.Flags())).Equal(4)
	})
}
