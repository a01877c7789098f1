package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDoc struct {
	ID          model.TaskID `bson:"id"`
	Description string       `bson:"description"`
	Completed   bool         `bson:"completed"`
	CompletedAt *time.Time   `bson:"completed_at,omitempty"`
}

type planDoc struct {
	UserID    string    `bson:"user_id"`
	Date      string    `bson:"date"`
	Tasks     []taskDoc `bson:"tasks"`
	Mood      string    `bson:"mood"`
	MoodNote  string    `bson:"mood_note"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// storedPlanDoc reads tasks loosely: older documents hold plain strings, and
// anything else that is not a task document is skipped.
type storedPlanDoc struct {
	UserID    string          `bson:"user_id"`
	Date      string          `bson:"date"`
	Tasks     []bson.RawValue `bson:"tasks"`
	Mood      string          `bson:"mood"`
	MoodNote  string          `bson:"mood_note"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func toPlanDoc(p *model.DailyPlan) *planDoc {
	doc := &planDoc{
		UserID:    p.UserID,
		Date:      p.Date,
		Tasks:     make([]taskDoc, 0, len(p.Tasks)),
		Mood:      p.Mood,
		MoodNote:  p.MoodNote,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, t := range p.Tasks {
		doc.Tasks = append(doc.Tasks, taskDoc(t))
	}
	return doc
}

func fromStoredPlanDoc(ctx context.Context, d *storedPlanDoc) *model.DailyPlan {
	p := &model.DailyPlan{
		UserID:    d.UserID,
		Date:      d.Date,
		Tasks:     make([]model.Task, 0, len(d.Tasks)),
		Mood:      d.Mood,
		MoodNote:  d.MoodNote,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	for i, raw := range d.Tasks {
		switch raw.Type {
		case bson.TypeString:
			p.Tasks = append(p.Tasks, model.Task{
				ID:          model.TaskID(fmt.Sprintf("%s-%d", d.Date, i)),
				Description: raw.StringValue(),
			})

		case bson.TypeEmbeddedDocument:
			var t taskDoc
			if err := raw.Unmarshal(&t); err != nil {
				logging.From(ctx).Warn("skip malformed task",
					"user_id", d.UserID, "date", d.Date, "index", i, "error", err.Error())
				continue
			}
			if t.ID == "" {
				t.ID = model.TaskID(fmt.Sprintf("%s-%d", d.Date, i))
			}
			p.Tasks = append(p.Tasks, model.Task(t))

		default:
			logging.From(ctx).Warn("skip task with unexpected type",
				"user_id", d.UserID, "date", d.Date, "index", i, "type", raw.Type.String())
		}
	}
	return p
}

type planRepository struct {
	col *mongo.Collection
}

func (r *planRepository) Get(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	var d storedPlanDoc
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get plan", goerr.V("user_id", userID), goerr.V("date", date))
	}
	return fromStoredPlanDoc(ctx, &d), nil
}

func (r *planRepository) Put(ctx context.Context, plan *model.DailyPlan) error {
	if plan.UserID == "" || plan.Date == "" {
		return goerr.New("user ID and date are required", goerr.V("user_id", plan.UserID), goerr.V("date", plan.Date))
	}

	doc := toPlanDoc(plan)
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"user_id": plan.UserID, "date": plan.Date},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put plan", goerr.V("user_id", plan.UserID), goerr.V("date", plan.Date))
	}
	return nil
}

func (r *planRepository) ListBefore(ctx context.Context, userID, date string) ([]*model.DailyPlan, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"user_id": userID, "date": bson.M{"$lt": date}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find plans", goerr.V("user_id", userID), goerr.V("date", date))
	}
	defer cursor.Close(ctx)

	plans := make([]*model.DailyPlan, 0)
	for cursor.Next(ctx) {
		var d storedPlanDoc
		if err := cursor.Decode(&d); err != nil {
			logging.From(ctx).Warn("skip malformed plan document", "user_id", userID, "error", err.Error())
			continue
		}
		plans = append(plans, fromStoredPlanDoc(ctx, &d))
	}
	if err := cursor.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate plans", goerr.V("user_id", userID))
	}

	return plans, nil
}
