package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lumi/pkg/domain/model"
	"github.com/secmon-lab/lumi/pkg/usecase"
	"github.com/secmon-lab/lumi/pkg/utils/errutil"
)

// defaultHistoryLimit is the page size of /api/chat/history without a limit
const defaultHistoryLimit = 50

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type chatMessageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type chatHistoryResponse struct {
	Messages []chatMessageResponse `json:"messages"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	reply, err := s.uc.Chat.Send(ctx, userIDFromContext(ctx), req.Message)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(w, r, http.StatusOK, chatResponse{
		Response:  reply.Content,
		Timestamp: reply.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (s *Server) chatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(usecase.ErrInvalidLimit, "limit must be an integer", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = n
	}

	msgs, err := s.uc.Chat.History(ctx, userIDFromContext(ctx), limit)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	resp := chatHistoryResponse{Messages: make([]chatMessageResponse, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toChatMessageResponse(m))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func toChatMessageResponse(m *model.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		Role:      m.Role.String(),
		Content:   m.Content,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
	}
}

// statusOf maps use case input errors to 400 and everything else to 500
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyMessage),
		errors.Is(err, usecase.ErrInvalidLimit),
		errors.Is(err, usecase.ErrInvalidAnswers),
		errors.Is(err, usecase.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
