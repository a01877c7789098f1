package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the layout of plan dates (calendar day in UTC)
const DateLayout = "2006-01-02"

// UnnamedTask replaces empty task descriptions.
const UnnamedTask = "Unnamed task"

// DateOf returns the UTC calendar date of t in DateLayout.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay returns midnight UTC of t's UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TaskID is a UUID-based identifier for Task
type TaskID string

// NewTaskID generates a new UUID v4 TaskID
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

// Task is one entry of a daily plan
type Task struct {
	ID          TaskID
	Description string
	Completed   bool
	CompletedAt *time.Time
}

// Label returns the description, or UnnamedTask when it is blank.
func (t Task) Label() string {
	if s := strings.TrimSpace(t.Description); s != "" {
		return s
	}
	return UnnamedTask
}

// DailyPlan is the task list and mood a user logs for one UTC day
type DailyPlan struct {
	UserID    string
	Date      string // DateLayout
	Tasks     []Task
	Mood      string
	MoodNote  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OverdueTask is an incomplete task from a past plan. DueDate is the plan's date.
type OverdueTask struct {
	TaskID      TaskID
	Description string
	DueDate     time.Time
	Completed   bool
}

// Day parses the plan date.
func (p *DailyPlan) Day() (time.Time, error) {
	d, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid plan date", goerr.V("date", p.Date), goerr.V("user_id", p.UserID))
	}
	return d, nil
}

// IncompleteTasks returns the plan's tasks whose completed flag is not set.
func (p *DailyPlan) IncompleteTasks() ([]OverdueTask, error) {
	due, err := p.Day()
	if err != nil {
		return nil, err
	}

	var tasks []OverdueTask
	for _, t := range p.Tasks {
		if t.Completed {
			continue
		}
		tasks = append(tasks, OverdueTask{
			TaskID:      t.ID,
			Description: t.Label(),
			DueDate:     due,
		})
	}
	return tasks, nil
}

// FindTask returns the index of the task with id, or -1.
func (p *DailyPlan) FindTask(id TaskID) int {
	for i, t := range p.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// TaskLabels returns the labels of all tasks in order.
func (p *DailyPlan) TaskLabels() []string {
	labels := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		labels = append(labels, t.Label())
	}
	return labels
}
