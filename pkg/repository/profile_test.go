package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

func runProfileRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns nil for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		p, err := repo.Profile().Get(context.Background(), newUserID())
		gt.NoError(t, err).Required()
		gt.Bool(t, p == nil).True()
	})

	t.Run("Put then Get round-trips personal info", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		err := repo.Profile().Put(ctx, &model.Profile{
			UserID: userID,
			PersonalInfo: model.PersonalInfo{
				Name:       "Sam",
				Location:   "Osaka",
				Occupation: "Engineer",
				Interests:  []string{"hiking", "tea"},
				Goals:      []string{"run a marathon"},
			},
			Answers: map[string]string{"q1": "Sam"},
		})
		gt.NoError(t, err).Required()

		p, err := repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, p.UserID).Equal(userID)
		gt.Value(t, p.PersonalInfo.Name).Equal("Sam")
		gt.Value(t, p.PersonalInfo.Interests).Equal([]string{"hiking", "tea"})
		gt.Value(t, p.Answers["q1"]).Equal("Sam")
		gt.Bool(t, p.CreatedAt.IsZero()).False()
	})

	t.Run("Put replaces existing profile", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		gt.NoError(t, repo.Profile().Put(ctx, &model.Profile{UserID: userID, PersonalInfo: model.PersonalInfo{Name: "Sam"}})).Required()
		gt.NoError(t, repo.Profile().Put(ctx, &model.Profile{UserID: userID, PersonalInfo: model.PersonalInfo{Name: "Samantha"}})).Required()

		p, err := repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, p.PersonalInfo.Name).Equal("Samantha")
	})

	t.Run("AppendMemory adds curated memory", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		gt.NoError(t, repo.Profile().Put(ctx, &model.Profile{UserID: userID})).Required()
		err := repo.Profile().AppendMemory(ctx, userID, model.ProfileMemory{
			Type:       "personal_info",
			Content:    "User mentioned: I live in Osaka",
			Tags:       []string{"personal_info"},
			Importance: 5,
		})
		gt.NoError(t, err).Required()

		p, err := repo.Profile().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, p.Memories).Length(1)
		gt.Value(t, p.Memories[0].Importance).Equal(5)
		gt.Bool(t, p.Memories[0].CreatedAt.IsZero()).False()
	})

	t.Run("AppendMemory fails for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Profile().AppendMemory(context.Background(), newUserID(), model.ProfileMemory{Content: "x"})
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryProfileRepository(t *testing.T) {
	runProfileRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreProfileRepository(t *testing.T) {
	runProfileRepositoryTest(t, newFirestoreRepository)
}

func TestMongoProfileRepository(t *testing.T) {
	runProfileRepositoryTest(t, newMongoRepository)
}
