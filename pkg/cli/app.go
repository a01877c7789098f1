package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/cli/config"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/service/embedding"
	"github.com/secmon-lab/lumi/pkg/service/personality"
	"github.com/secmon-lab/lumi/pkg/usecase"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
	"github.com/urfave/cli/v3"
)

// appConfig groups the configuration shared by serve and chat
type appConfig struct {
	repo    config.Repository
	vector  config.VectorStore
	gemini  config.Gemini
	persona config.Persona
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.vector.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.persona.Flags()...)
	return flags
}

// app is the composed application. Close releases the repository.
type app struct {
	repo    interfaces.Repository
	uc      *usecase.UseCases
	metrics *metrics.Recorder
}

func (a *app) Close() error {
	return a.repo.Close()
}

// build constructs every service explicitly and injects it into the use cases
func (x *appConfig) build(ctx context.Context) (*app, error) {
	logger := logging.Default()

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	memoryRepo, err := x.vector.Configure(repo)
	if err != nil {
		_ = repo.Close()
		return nil, goerr.Wrap(err, "failed to initialize vector store")
	}

	llmClient, chatModel, err := x.gemini.Configure(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, goerr.Wrap(err, "failed to initialize Gemini")
	}

	persona, err := x.persona.Configure()
	if err != nil {
		_ = repo.Close()
		return nil, goerr.Wrap(err, "failed to load persona")
	}

	recorder := metrics.New()

	embedOpts := []embedding.Option{embedding.WithMetrics(recorder)}
	if llmClient != nil {
		embedOpts = append(embedOpts, embedding.WithLLMClient(llmClient))
		logger.Info("Remote embeddings enabled")
	} else {
		logger.Warn("Gemini project not configured, embeddings use the local fallback")
	}

	opts := []usecase.Option{
		usecase.WithMemoryRepository(memoryRepo),
		usecase.WithEmbedder(embedding.New(embedOpts...)),
		usecase.WithPersonality(personality.New(personality.WithPersona(persona))),
		usecase.WithMetrics(recorder),
	}
	if chatModel != nil {
		opts = append(opts, usecase.WithChatModel(chatModel))
		logger.Info("Remote generation enabled")
	} else {
		logger.Warn("Gemini not configured, replies use the personality engine")
	}

	logger.Info("Application configured",
		"repository", x.repo,
		"vector", x.vector,
		"persona", x.persona,
	)

	return &app{
		repo:    repo,
		uc:      usecase.New(repo, opts...),
		metrics: recorder,
	}, nil
}
