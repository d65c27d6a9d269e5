package report

import (
	"encoding/json"
	"net/http"

	"github.com/fortuna-labs/report-funnel/pkg/handlers/render"
	"github.com/fortuna-labs/report-funnel/pkg/models/api"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/generation"
	"github.com/fortuna-labs/report-funnel/pkg/services/report"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
)

type Handler struct {
	sessions     session.Service
	reports      report.Service
	orchestrator generation.Orchestrator
}

func NewHandler(sessions session.Service, reports report.Service, orchestrator generation.Orchestrator) *Handler {
	return &Handler{sessions: sessions, reports: reports, orchestrator: orchestrator}
}

// Generate kicks off premium content generation. The 202 acknowledges that
// the job was accepted, not that any content exists yet; clients follow up
// on the status endpoint.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	sess, err := h.sessions.Resolve(ctx, req.AccessToken)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	status, err := h.orchestrator.Trigger(ctx, sess)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusAccepted, api.GenerateResponse{
		Accepted: true,
		State:    string(status.State),
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Resolve(ctx, r.URL.Query().Get("accessToken"))
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	status, err := h.orchestrator.Status(ctx, sess.AccessToken)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusOK, api.ReportStatusResponse{
		IsCompleted:    status.Completed(),
		State:          string(status.State),
		Progress:       status.Progress,
		ElapsedSeconds: int(status.Elapsed.Seconds()),
	})
}

// GetReport returns the reveal-filtered report. Premium sections are omitted
// from the payload while locked, never sent and hidden client-side.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Resolve(ctx, r.URL.Query().Get("accessToken"))
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	rep, decision, err := h.reports.View(ctx, sess)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusOK, filtered(rep, decision, true))
}

// GetBasic is the fast path: it derives and returns the synchronous scores
// without touching generation state, and never includes premium content.
func (h *Handler) GetBasic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.Resolve(ctx, r.URL.Query().Get("accessToken"))
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	rep, decision, err := h.reports.View(ctx, sess)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusOK, filtered(rep, decision, false))
}

func filtered(rep *domain.Report, decision domain.Reveal, includePremium bool) api.ReportResponse {
	resp := api.ReportResponse{
		State:         string(decision.State),
		IsPaid:        rep.IsPaid,
		IsPremiumPaid: rep.IsPremiumPaid,
	}

	if decision.ShowBasicScores {
		scores := make(map[string]int, len(rep.Elements))
		for element, score := range rep.Elements {
			scores[string(element)] = score
		}
		resp.ElementScores = scores
		resp.SubScores = &api.SubScores{
			Wealth: rep.SubScores.Wealth,
			Love:   rep.SubScores.Love,
			Career: rep.SubScores.Career,
			Health: rep.SubScores.Health,
		}
	}

	if includePremium && decision.ShowPremiumText {
		resp.PremiumSections = rep.PremiumSections
	}
	return resp
}
