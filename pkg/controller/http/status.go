package http

import (
	"net/http"
	"time"

	"github.com/secmon-lab/lumi/pkg/utils/errutil"
)

type statusResponse struct {
	HasProfile        bool   `json:"has_profile"`
	HasTodayPlan      bool   `json:"has_today_plan"`
	UserName          string `json:"user_name"`
	MessageCountToday int    `json:"message_count_today"`
	Timestamp         string `json:"timestamp"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := s.uc.Chat.Status(ctx, userIDFromContext(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, statusResponse{
		HasProfile:        status.HasProfile,
		HasTodayPlan:      status.HasTodayPlan,
		UserName:          status.UserName,
		MessageCountToday: status.MessageCountToday,
		Timestamp:         s.now().UTC().Format(time.RFC3339),
	})
}
