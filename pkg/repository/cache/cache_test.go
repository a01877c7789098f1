package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/repository/cache"
	"github.com/secmon-lab/lumi/pkg/repository/memory"
)

type countingProfileRepository struct {
	interfaces.ProfileRepository
	gets int
}

func (r *countingProfileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	r.gets++
	return r.ProfileRepository.Get(ctx, userID)
}

type countingRepository struct {
	base    *memory.Memory
	profile *countingProfileRepository
}

func (r *countingRepository) Profile() interfaces.ProfileRepository { return r.profile }
func (r *countingRepository) Plan() interfaces.PlanRepository       { return r.base.Plan() }
func (r *countingRepository) Chat() interfaces.ChatRepository       { return r.base.Chat() }
func (r *countingRepository) Memory() interfaces.MemoryRepository   { return r.base.Memory() }
func (r *countingRepository) Close() error                          { return r.base.Close() }

func newCountingRepository() *countingRepository {
	base := memory.New()
	return &countingRepository{
		base:    base,
		profile: &countingProfileRepository{ProfileRepository: base.Profile()},
	}
}

func TestProfileCache(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeated reads from cache", func(t *testing.T) {
		base := newCountingRepository()
		repo := cache.New(base, time.Minute)

		gt.NoError(t, repo.Profile().Put(ctx, &model.Profile{UserID: "u1", PersonalInfo: model.PersonalInfo{Name: "Sam"}})).Required()

		for range 3 {
			p, err := repo.Profile().Get(ctx, "u1")
			gt.NoError(t, err).Required()
			gt.Value(t, p.PersonalInfo.Name).Equal("Sam")
		}
		gt.Value(t, base.profile.gets).Equal(1)
	})

	t.Run("invalidates on append", func(t *testing.T) {
		base := newCountingRepository()
		repo := cache.New(base, time.Minute)

		gt.NoError(t, repo.Profile().Put(ctx, &model.Profile{UserID: "u1"})).Required()
		_, err := repo.Profile().Get(ctx, "u1")
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Profile().AppendMemory(ctx, "u1", model.ProfileMemory{Type: "note", Content: "likes tea"})).Required()

		p, err := repo.Profile().Get(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, p.Memories).Length(1)
		gt.Value(t, base.profile.gets).Equal(2)
	})

	t.Run("does not cache absent profiles", func(t *testing.T) {
		base := newCountingRepository()
		repo := cache.New(base, time.Minute)

		p, err := repo.Profile().Get(ctx, "nobody")
		gt.NoError(t, err).Required()
		gt.Bool(t, p == nil).True()

		_, err = repo.Profile().Get(ctx, "nobody")
		gt.NoError(t, err).Required()
		gt.Value(t, base.profile.gets).Equal(2)
	})

	t.Run("zero ttl disables caching", func(t *testing.T) {
		base := newCountingRepository()
		repo := cache.New(base, 0)
		gt.Bool(t, repo == interfaces.Repository(base)).True()
	})
}
