package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	gollemgemini "github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/service/gemini"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the generative model used for companion replies
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini holds configuration for the Gemini clients
type Gemini struct {
	projectID string
	location  string
	apiKey    string
	model     string
}

type geminiLogValue struct {
	ProjectID string
	Location  string
	Model     string
	APIKey    string `masq:"secret"`
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Category:    "Gemini",
			Sources:     cli.EnvVars("LUMI_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Value:       "us-central1",
			Category:    "Gemini",
			Sources:     cli.EnvVars("LUMI_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (used for generation instead of Vertex AI)",
			Category:    "Gemini",
			Sources:     cli.EnvVars("LUMI_GEMINI_API_KEY"),
			Destination: &g.apiKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model for companion replies",
			Value:       DefaultGeminiModel,
			Category:    "Gemini",
			Sources:     cli.EnvVars("LUMI_GEMINI_MODEL"),
			Destination: &g.model,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Any("gemini", geminiLogValue{
			ProjectID: g.projectID,
			Location:  g.location,
			Model:     g.model,
			APIKey:    g.apiKey,
		}),
	}
}

// Configure creates the embedding client and the chat model. Embeddings need a
// Vertex AI project; generation works with either a project or an API key. Missing
// credentials yield nil clients and every caller falls back to local behavior.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, interfaces.ChatModel, error) {
	var llmClient gollem.LLMClient
	if g.projectID != "" {
		client, err := gollemgemini.New(ctx, g.projectID, g.location)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Gemini embedding client",
				goerr.V("project_id", g.projectID), goerr.V("location", g.location))
		}
		llmClient = client
	}

	genaiClient, err := g.newGenAIClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	if genaiClient == nil {
		return llmClient, nil, nil
	}

	chatModel, err := gemini.New(genaiClient, g.modelName())
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create Gemini chat model")
	}
	return llmClient, chatModel, nil
}

func (g *Gemini) modelName() string {
	if g.model == "" {
		return DefaultGeminiModel
	}
	return g.model
}

func (g *Gemini) newGenAIClient(ctx context.Context) (*genai.Client, error) {
	var cfg *genai.ClientConfig
	switch {
	case g.apiKey != "":
		cfg = &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
	case g.projectID != "":
		cfg = &genai.ClientConfig{
			Project:  g.projectID,
			Location: g.location,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, nil
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client", goerr.V(BackendKey, cfg.Backend))
	}
	return client, nil
}
