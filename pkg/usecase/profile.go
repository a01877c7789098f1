package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/interfaces"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/domain/types"
)

const profileAnswerImportance = 3

// Question is one entry of the profile questionnaire
type Question struct {
	ID   string
	Text string
}

var profileQuestions = []Question{
	{ID: "q1", Text: "What's your name?"},
	{ID: "q2", Text: "What are your top 3 goals for this year?"},
	{ID: "q3", Text: "What are your main interests or hobbies?"},
	{ID: "q4", Text: "What do you do for a living?"},
	{ID: "q5", Text: "Where do you live?"},
	{ID: "q6", Text: "How old are you?"},
	{ID: "q7", Text: "How do you prefer to receive feedback?"},
	{ID: "q8", Text: "What motivates you when you're feeling stuck?"},
	{ID: "q9", Text: "What challenges are you facing right now?"},
	{ID: "q10", Text: "How can I help you the most?"},
}

// ProfileUseCase runs the profile questionnaire
type ProfileUseCase struct {
	repo   interfaces.Repository
	memory *MemoryStore
	now    func() time.Time
}

// NewProfileUseCase creates a ProfileUseCase
func NewProfileUseCase(repo interfaces.Repository, memory *MemoryStore) *ProfileUseCase {
	return &ProfileUseCase{
		repo:   repo,
		memory: memory,
		now:    time.Now,
	}
}

// Questions returns the questionnaire in order
func (uc *ProfileUseCase) Questions() []Question {
	return slices.Clone(profileQuestions)
}

// Get returns the profile of userID or nil
func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UserIDKey, userID))
	}
	return profile, nil
}

// SaveAnswers merges answers into the profile, derives personal info from the
// known questions, and records each answer as a vector memory and a profile memory.
// Unknown question IDs and blank answers are ignored.
func (uc *ProfileUseCase) SaveAnswers(ctx context.Context, userID string, answers map[string]string) (*model.Profile, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidUserID, "failed to save profile")
	}

	accepted := make(map[string]string)
	for _, q := range profileQuestions {
		if a := strings.TrimSpace(answers[q.ID]); a != "" {
			accepted[q.ID] = a
		}
	}
	if len(accepted) == 0 {
		return nil, goerr.Wrap(ErrInvalidAnswers, "no answer given", goerr.V(UserIDKey, userID))
	}

	profile, err := uc.repo.Profile().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile", goerr.V(UserIDKey, userID))
	}

	now := uc.now().UTC()
	if profile == nil {
		profile = &model.Profile{UserID: userID, CreatedAt: now}
	}
	if profile.Answers == nil {
		profile.Answers = make(map[string]string)
	}
	profile.UpdatedAt = now

	for _, q := range profileQuestions {
		answer, ok := accepted[q.ID]
		if !ok {
			continue
		}
		profile.Answers[q.ID] = answer
		applyAnswer(&profile.PersonalInfo, q.ID, answer)
		profile.Memories = append(profile.Memories, model.ProfileMemory{
			Type:       "profile_answer",
			Content:    fmt.Sprintf("%s %s", q.Text, answer),
			Tags:       []string{types.TagProfile},
			Importance: profileAnswerImportance,
			CreatedAt:  now,
		})
	}

	if err := uc.repo.Profile().Put(ctx, profile); err != nil {
		return nil, goerr.Wrap(err, "failed to save profile", goerr.V(UserIDKey, userID))
	}

	for _, q := range profileQuestions {
		answer, ok := accepted[q.ID]
		if !ok {
			continue
		}
		text := fmt.Sprintf("Q: %s\nA: %s", q.Text, answer)
		if _, err := uc.memory.Save(ctx, userID, text, []string{types.TagProfile}, map[string]any{
			types.MetaType:       "profile_answer",
			types.MetaQuestionID: q.ID,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to save profile answer memory", goerr.V(UserIDKey, userID), goerr.V("question_id", q.ID))
		}
	}

	return profile, nil
}

func applyAnswer(info *model.PersonalInfo, questionID, answer string) {
	switch questionID {
	case "q1":
		info.Name = answer
	case "q2":
		info.Goals = splitList(answer)
	case "q3":
		info.Interests = splitList(answer)
	case "q4":
		info.Occupation = answer
	case "q5":
		info.Location = answer
	case "q6":
		info.Age = answer
	case "q7":
		info.CommunicationStyle = answer
	}
}

// splitList splits a free-text answer on commas and newlines
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			items = append(items, f)
		}
	}
	return items
}
