package embedding

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

// Provider embeds texts with a remote embedding model and falls back to a
// content-addressed hash vector when the model is missing or fails.
type Provider struct {
	llmClient gollem.LLMClient
	metrics   *metrics.Recorder
}

var _ interfaces.Embedder = (*Provider)(nil)

// Option is a functional option for Provider
type Option func(*Provider)

// WithLLMClient sets the remote embedding model. Without it every call uses the fallback.
func WithLLMClient(client gollem.LLMClient) Option {
	return func(p *Provider) {
		p.llmClient = client
	}
}

// WithMetrics sets the recorder counting fallback embeddings
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// New creates a new embedding Provider
func New(opts ...Option) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed returns one vector of model.EmbeddingDimension per text. The remote model
// is called once per batch with no retry; any failure or malformed result makes
// the whole batch use the fallback.
func (p *Provider) Embed(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}

	if p.llmClient != nil {
		vectors, err := p.remote(ctx, texts)
		if err == nil {
			return vectors
		}
		logging.From(ctx).Warn("embedding model failed, using fallback",
			slog.Any("error", err),
			slog.Int("count", len(texts)),
		)
	}

	p.metrics.EmbeddingFallback(len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = Fallback(text)
	}
	return vectors
}

func (p *Provider) remote(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := p.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings")
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(embeddings)),
		)
	}

	vectors := make([][]float32, len(embeddings))
	for i, embedding64 := range embeddings {
		if len(embedding64) != model.EmbeddingDimension {
			return nil, goerr.New("unexpected embedding dimension",
				goerr.V("index", i),
				goerr.V("dimension", len(embedding64)),
			)
		}
		embedding32 := make([]float32, len(embedding64))
		for j, v := range embedding64 {
			embedding32[j] = float32(v)
		}
		vectors[i] = embedding32
	}
	return vectors, nil
}

// maxFallbackValue keeps fallback values strictly below 0.5
var maxFallbackValue = math.Nextafter32(0.5, 0)

// Fallback derives a deterministic vector from the 128-bit FNV-1a digest of text.
// Digest bytes are repeated cyclically and mapped with byteValue.
func Fallback(text string) []float32 {
	h := fnv.New128a()
	_, _ = h.Write([]byte(text))
	digest := h.Sum(nil)

	vector := make([]float32, model.EmbeddingDimension)
	for i := range vector {
		vector[i] = byteValue(digest[i%len(digest)])
	}
	return vector
}

// byteValue maps b to b/255 - 0.5 within [-0.5, 0.5). Only 255 is affected by
// the upper bound.
func byteValue(b byte) float32 {
	return min(float32(b)/255-0.5, maxFallbackValue)
}
