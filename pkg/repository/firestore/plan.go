package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type taskDoc struct {
	ID          model.TaskID `firestore:"ID"`
	Description string       `firestore:"Description"`
	Completed   bool         `firestore:"Completed"`
	CompletedAt *time.Time   `firestore:"CompletedAt,omitempty"`
}

type planDoc struct {
	UserID    string    `firestore:"UserID"`
	Date      string    `firestore:"Date"`
	Tasks     []taskDoc `firestore:"Tasks"`
	Mood      string    `firestore:"Mood"`
	MoodNote  string    `firestore:"MoodNote"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
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

func fromPlanDoc(d *planDoc) *model.DailyPlan {
	p := &model.DailyPlan{
		UserID:    d.UserID,
		Date:      d.Date,
		Tasks:     make([]model.Task, 0, len(d.Tasks)),
		Mood:      d.Mood,
		MoodNote:  d.MoodNote,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, t := range d.Tasks {
		p.Tasks = append(p.Tasks, model.Task(t))
	}
	return p
}

type planRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newPlanRepository(client *firestore.Client) *planRepository {
	return &planRepository{client: client}
}

// plansCollection returns users/{userID}/plans; documents are keyed by date.
func (r *planRepository) plansCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(userID).Collection("plans")
}

func (r *planRepository) Get(ctx context.Context, userID, date string) (*model.DailyPlan, error) {
	doc, err := r.plansCollection(userID).Doc(date).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get plan", goerr.V("user_id", userID), goerr.V("date", date))
	}

	var d planDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal plan", goerr.V("user_id", userID), goerr.V("date", date))
	}
	return fromPlanDoc(&d), nil
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

	if _, err := r.plansCollection(plan.UserID).Doc(plan.Date).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put plan", goerr.V("user_id", plan.UserID), goerr.V("date", plan.Date))
	}
	return nil
}

func (r *planRepository) ListBefore(ctx context.Context, userID, date string) ([]*model.DailyPlan, error) {
	iter := r.plansCollection(userID).
		Where("Date", "<", date).
		OrderBy("Date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	plans := make([]*model.DailyPlan, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate plans", goerr.V("user_id", userID))
		}

		var d planDoc
		if err := doc.DataTo(&d); err != nil {
			logging.From(ctx).Warn("skip malformed plan document",
				"user_id", userID,
				"doc_id", doc.Ref.ID,
				"error", err.Error(),
			)
			continue
		}
		plans = append(plans, fromPlanDoc(&d))
	}

	return plans, nil
}
