package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/repository/memory"
	"github.com/secmon-lab/lumi/pkg/service/personality"
	"github.com/secmon-lab/lumi/pkg/usecase"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

// constRand never fires a probabilistic branch and always picks the first item
type constRand struct{}

func (constRand) Float64() float64 { return 0.99 }
func (constRand) IntN(n int) int   { return 0 }

// testClock is a settable clock shared by use cases and the personality engine
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(hour int) *testClock {
	return &testClock{t: time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// mockChatModel is a mock interfaces.ChatModel for testing
type mockChatModel struct {
	mu         sync.Mutex
	generateFn func(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error)
	requests   []*model.GenerationRequest
}

func (m *mockChatModel) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return &model.GenerationResponse{Text: "remote reply"}, nil
}

func (m *mockChatModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockChatModel) lastRequest() *model.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func failingChatModel() *mockChatModel {
	return &mockChatModel{
		generateFn: func(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
			return nil, errors.New("model unavailable")
		},
	}
}

type testEnv struct {
	repo    *memory.Memory
	clock   *testClock
	model   *mockChatModel
	metrics *metrics.Recorder
	uc      *usecase.UseCases
}

func newTestEnv(t *testing.T, hour int, chatModel *mockChatModel, rnd personality.Rand) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:    memory.New(),
		clock:   newTestClock(hour),
		model:   chatModel,
		metrics: metrics.New(),
	}
	engine := personality.New(personality.WithRand(rnd), personality.WithClock(env.clock.Now))

	opts := []usecase.Option{
		usecase.WithClock(env.clock.Now),
		usecase.WithPersonality(engine),
		usecase.WithMetrics(env.metrics),
	}
	if chatModel != nil {
		opts = append(opts, usecase.WithChatModel(chatModel))
	}
	env.uc = usecase.New(env.repo, opts...)
	return env
}

func newUserID() string {
	return "user-" + uuid.NewString()
}
