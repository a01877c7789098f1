package usecase

import (
	"time"

	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/service/embedding"
	"github.com/secmon-lab/lumi/pkg/service/personality"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

type UseCases struct {
	repo        interfaces.Repository
	memoryRepo  interfaces.MemoryRepository
	embedder    interfaces.Embedder
	chatModel   interfaces.ChatModel
	personality *personality.Engine
	metrics     *metrics.Recorder
	now         func() time.Time

	Memory    *MemoryStore
	Context   *ContextAssembler
	Generator *ResponseGenerator
	Profile   *ProfileUseCase
	Plan      *PlanUseCase
	Chat      *ChatUseCase
}

type Option func(*UseCases)

// WithMemoryRepository stores vector memories somewhere other than repo.Memory()
func WithMemoryRepository(repo interfaces.MemoryRepository) Option {
	return func(uc *UseCases) {
		uc.memoryRepo = repo
	}
}

func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
	}
}

func WithChatModel(chatModel interfaces.ChatModel) Option {
	return func(uc *UseCases) {
		uc.chatModel = chatModel
	}
}

func WithPersonality(engine *personality.Engine) Option {
	return func(uc *UseCases) {
		uc.personality = engine
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(uc *UseCases) {
		uc.metrics = recorder
	}
}

// WithClock replaces the clock of every use case. The personality engine keeps
// its own clock.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.memoryRepo == nil {
		uc.memoryRepo = repo.Memory()
	}
	if uc.embedder == nil {
		uc.embedder = embedding.New(embedding.WithMetrics(uc.metrics))
	}
	if uc.personality == nil {
		uc.personality = personality.New()
	}

	uc.Memory = NewMemoryStore(uc.memoryRepo, uc.embedder, uc.metrics)
	uc.Context = NewContextAssembler(repo, uc.Memory)
	uc.Plan = NewPlanUseCase(repo, uc.Memory)
	uc.Profile = NewProfileUseCase(repo, uc.Memory)
	uc.Generator = NewResponseGenerator(repo, uc.Memory, uc.Context, uc.Plan, uc.personality, uc.chatModel, uc.metrics)
	uc.Chat = NewChatUseCase(repo, uc.Memory, uc.Generator)

	uc.Memory.now = uc.now
	uc.Context.now = uc.now
	uc.Plan.now = uc.now
	uc.Profile.now = uc.now
	uc.Generator.now = uc.now
	uc.Chat.now = uc.now

	return uc
}
