package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fortuna-labs/report-funnel/pkg/handlers/render"
	"github.com/fortuna-labs/report-funnel/pkg/models/api"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
)

const birthDateLayout = "2006-01-02"

type Handler struct {
	sessions session.Service
}

func NewHandler(sessions session.Service) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "birthDate", Reason: "expected YYYY-MM-DD"})
		return
	}

	sess, err := h.sessions.Issue(ctx, domain.Profile{
		Name:      req.Name,
		Phone:     req.Phone,
		BirthDate: birthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusCreated, api.SessionResponse{AccessToken: sess.AccessToken})
}

// VerifySession is the identity-recovery fallback: the user re-enters the
// attributes their session was created with and gets the original token
// back, never a new one.
func (h *Handler) VerifySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "birthDate", Reason: "expected YYYY-MM-DD"})
		return
	}

	sess, err := h.sessions.Recover(ctx, req.Phone, birthDate)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusOK, api.SessionResponse{AccessToken: sess.AccessToken})
}
