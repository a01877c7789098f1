package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/domain/model"
)

func TestNewMemoryID(t *testing.T) {
	id1 := model.NewMemoryID()
	id2 := model.NewMemoryID()

	gt.Value(t, string(id1)).NotEqual("")
	gt.Value(t, string(id2)).NotEqual("")
	gt.Value(t, id1).NotEqual(id2)
}

func TestNewTagSet(t *testing.T) {
	tags := model.NewTagSet("mood", " daily_plan ", "", "mood")
	gt.Value(t, tags).Equal([]string{"daily_plan", "mood"})

	gt.Array(t, model.NewTagSet()).Length(0)
}

func TestMemoryRecord_HasAnyTag(t *testing.T) {
	rec := &model.MemoryRecord{Tags: model.NewTagSet("daily_plan", "mood")}

	gt.Bool(t, rec.HasTag("mood")).True()
	gt.Bool(t, rec.HasAnyTag("chat", "mood")).True()
	gt.Bool(t, rec.HasAnyTag("chat")).False()
	gt.Bool(t, rec.HasAnyTag()).False()
}

func TestMemoryRecord_Copy(t *testing.T) {
	rec := &model.MemoryRecord{
		ID:        model.NewMemoryID(),
		UserID:    "u1",
		Text:      "hello",
		Embedding: []float32{0.1, 0.2},
		Tags:      []string{"chat"},
		Metadata:  map[string]any{"role": "user"},
	}

	copied := rec.Copy()
	copied.Embedding[0] = 9
	copied.Tags[0] = "other"
	copied.Metadata["role"] = "assistant"

	gt.Value(t, rec.Embedding[0]).Equal(float32(0.1))
	gt.Value(t, rec.Tags[0]).Equal("chat")
	gt.Value(t, rec.MetaString("role")).Equal("user")
	gt.Value(t, rec.MetaString("missing")).Equal("")
}

func TestCosineDistance(t *testing.T) {
	gt.Value(t, model.CosineDistance([]float32{1, 0}, []float32{1, 0})).Equal(0.0)
	gt.Value(t, model.CosineDistance([]float32{1, 0}, []float32{0, 1})).Equal(1.0)
	gt.Value(t, model.CosineDistance([]float32{1, 0}, []float32{-1, 0})).Equal(2.0)
	gt.Value(t, model.CosineDistance([]float32{1, 0}, []float32{1})).Equal(2.0)
	gt.Value(t, model.CosineDistance([]float32{0, 0}, []float32{1, 0})).Equal(2.0)
}
