package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

func TestProfile_DisplayName(t *testing.T) {
	var nilProfile *model.Profile
	gt.Value(t, nilProfile.DisplayName()).Equal(model.DefaultUserName)
	gt.Value(t, (&model.Profile{}).DisplayName()).Equal(model.DefaultUserName)
	gt.Value(t, (&model.Profile{PersonalInfo: model.PersonalInfo{Name: " Sam "}}).DisplayName()).Equal("Sam")
}

func TestProfile_RelevantMemories(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Profile{
		Memories: []model.ProfileMemory{
			{Type: "note", Content: "likes hiking", Importance: 1, CreatedAt: base},
			{Type: "personal_info", Content: "lives in Osaka", Importance: 5, CreatedAt: base.Add(time.Hour)},
			{Type: "note", Content: "hiking every sunday", Importance: 3, CreatedAt: base.Add(2 * time.Hour)},
			{Type: "note", Content: "allergic to cats", Importance: 2, CreatedAt: base.Add(3 * time.Hour), Tags: []string{"health"}},
		},
	}

	t.Run("newest first without query", func(t *testing.T) {
		got := p.RelevantMemories("", 3)
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].Content).Equal("allergic to cats")
		gt.Value(t, got[1].Content).Equal("hiking every sunday")
		gt.Value(t, got[2].Content).Equal("lives in Osaka")
	})

	t.Run("importance first with query", func(t *testing.T) {
		got := p.RelevantMemories("HIKING", 5)
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].Content).Equal("hiking every sunday")
		gt.Value(t, got[1].Content).Equal("likes hiking")
	})

	t.Run("matches tags", func(t *testing.T) {
		got := p.RelevantMemories("health", 5)
		gt.Array(t, got).Length(1)
	})

	t.Run("nil profile", func(t *testing.T) {
		var nilProfile *model.Profile
		gt.Array(t, nilProfile.RelevantMemories("", 3)).Length(0)
	})
}

func TestPersona_Validate(t *testing.T) {
	gt.NoError(t, model.DefaultPersona().Validate())

	p := model.DefaultPersona()
	p.Traits["warmth"] = 11
	gt.Error(t, p.Validate())

	p = model.DefaultPersona()
	p.Name = ""
	gt.Error(t, p.Validate())

	gt.Array(t, model.DefaultPersona().TraitNames()).Length(10)
}

func TestGenerationResponse_PlainText(t *testing.T) {
	gt.Value(t, (&model.GenerationResponse{Text: " hi ", Parts: []string{"ignored"}}).PlainText()).Equal("hi")
	gt.Value(t, (&model.GenerationResponse{Parts: []string{"Hello,", "Sam!"}}).PlainText()).Equal("Hello, Sam!")
	gt.Value(t, (&model.GenerationResponse{Parts: []string{"First part.", "Second part."}}).PlainText()).
		Equal("First part. Second part.")

	var nilResp *model.GenerationResponse
	gt.Value(t, nilResp.PlainText()).Equal("")
}
