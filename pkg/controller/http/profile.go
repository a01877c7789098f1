package http

import (
	"net/http"

	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/utils/errutil"
)

type questionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type personalInfoResponse struct {
	Name               string   `json:"name"`
	Age                string   `json:"age"`
	Location           string   `json:"location"`
	Occupation         string   `json:"occupation"`
	Interests          []string `json:"interests"`
	Goals              []string `json:"goals"`
	CommunicationStyle string   `json:"communication_style"`
}

type profileResponse struct {
	UserID       string               `json:"user_id"`
	PersonalInfo personalInfoResponse `json:"personal_info"`
	Answers      map[string]string    `json:"answers"`
}

type saveProfileRequest struct {
	Answers map[string]string `json:"answers"`
}

func toProfileResponse(p *model.Profile) *profileResponse {
	if p == nil {
		return nil
	}
	info := p.PersonalInfo
	return &profileResponse{
		UserID: p.UserID,
		PersonalInfo: personalInfoResponse{
			Name:               info.Name,
			Age:                info.Age,
			Location:           info.Location,
			Occupation:         info.Occupation,
			Interests:          info.Interests,
			Goals:              info.Goals,
			CommunicationStyle: info.CommunicationStyle,
		},
		Answers: p.Answers,
	}
}

func (s *Server) profileQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	questions := s.uc.Profile.Questions()
	resp := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, questionResponse{ID: q.ID, Text: q.Text})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"questions": resp})
}

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := s.uc.Profile.Get(ctx, userIDFromContext(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"profile": toProfileResponse(profile)})
}

func (s *Server) saveProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveProfileRequest
	if err := readJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	profile, err := s.uc.Profile.SaveAnswers(ctx, userIDFromContext(ctx), req.Answers)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"profile": toProfileResponse(profile)})
}
