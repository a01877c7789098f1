package interfaces

import (
	"context"

	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// ChatModel is the remote generative model used for companion replies
type ChatModel interface {
	Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error)
}
