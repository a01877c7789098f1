package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

// Repository decorates an interfaces.Repository with a short-lived profile cache.
// A single reply reads the profile several times, so caching it saves round trips
// to the document store.
type Repository struct {
	interfaces.Repository
	profile *profileRepository
}

var _ interfaces.Repository = &Repository{}

// New wraps base. Profiles are cached for ttl; a non-positive ttl returns base as is.
func New(base interfaces.Repository, ttl time.Duration) interfaces.Repository {
	if ttl <= 0 {
		return base
	}
	return &Repository{
		Repository: base,
		profile: &profileRepository{
			base:  base.Profile(),
			cache: gocache.New(ttl, 2*ttl),
		},
	}
}

func (r *Repository) Profile() interfaces.ProfileRepository {
	return r.profile
}

type profileRepository struct {
	base  interfaces.ProfileRepository
	cache *gocache.Cache
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if v, found := r.cache.Get(userID); found {
		p, _ := v.(*model.Profile)
		return p.Copy(), nil
	}

	p, err := r.base.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Absent profiles are not cached so a freshly created one is visible at once.
	if p != nil {
		r.cache.Set(userID, p.Copy(), gocache.DefaultExpiration)
	}
	return p, nil
}

func (r *profileRepository) Put(ctx context.Context, profile *model.Profile) error {
	r.cache.Delete(profile.UserID)
	return r.base.Put(ctx, profile)
}

func (r *profileRepository) AppendMemory(ctx context.Context, userID string, memory model.ProfileMemory) error {
	r.cache.Delete(userID)
	return r.base.AppendMemory(ctx, userID, memory)
}
