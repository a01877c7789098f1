package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/errutil"
)

type taskResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

type dailyPlanResponse struct {
	Date     string         `json:"date"`
	Tasks    []taskResponse `json:"tasks"`
	Mood     string         `json:"mood"`
	MoodNote string         `json:"mood_note"`
}

type saveDailyRequest struct {
	Tasks    []string `json:"tasks"`
	Mood     string   `json:"mood"`
	MoodNote string   `json:"mood_note"`
}

func toDailyPlanResponse(p *model.DailyPlan) *dailyPlanResponse {
	if p == nil {
		return nil
	}
	resp := &dailyPlanResponse{
		Date:     p.Date,
		Tasks:    make([]taskResponse, 0, len(p.Tasks)),
		Mood:     p.Mood,
		MoodNote: p.MoodNote,
	}
	for _, t := range p.Tasks {
		tr := taskResponse{
			ID:          string(t.ID),
			Description: t.Description,
			Completed:   t.Completed,
		}
		if t.CompletedAt != nil {
			at := t.CompletedAt.UTC().Format(time.RFC3339)
			tr.CompletedAt = &at
		}
		resp.Tasks = append(resp.Tasks, tr)
	}
	return resp
}

func (s *Server) getDailyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, err := s.uc.Plan.Today(ctx, userIDFromContext(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"plan": toDailyPlanResponse(plan)})
}

func (s *Server) saveDailyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveDailyRequest
	if err := readJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	plan, err := s.uc.Plan.SaveToday(ctx, userIDFromContext(ctx), req.Tasks, req.Mood, req.MoodNote)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"plan": toDailyPlanResponse(plan)})
}

func (s *Server) completeTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date := chi.URLParam(r, "date")
	taskID := model.TaskID(chi.URLParam(r, "taskID"))

	if err := s.uc.Plan.CompleteTask(ctx, userIDFromContext(ctx), date, taskID); err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "completed"})
}
