package interfaces

import (
	"context"

	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// ProfileRepository defines the interface for Profile data persistence
type ProfileRepository interface {
	// Get returns the profile of userID, or nil when it does not exist
	Get(ctx context.Context, userID string) (*model.Profile, error)

	// Put creates or replaces a profile
	Put(ctx context.Context, profile *model.Profile) error

	// AppendMemory adds a curated memory to an existing profile.
	// It returns ErrNotFound of the backend when the profile does not exist.
	AppendMemory(ctx context.Context, userID string, memory model.ProfileMemory) error
}
