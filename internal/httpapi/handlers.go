package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/engine"
	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/service"
)

// API bundles the orchestration service behind the HTTP surface. Handlers
// do decoding and error mapping only; every rule lives in the service.
type API struct {
	svc *service.Service
	log *zap.Logger
}

func NewAPI(svc *service.Service, log *zap.Logger) *API {
	return &API{svc: svc, log: log}
}

func (a *API) createSubEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string               `json:"name"`
		Format model.SubEventFormat `json:"format"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	se, err := a.svc.CreateSubEvent(r.Context(), req.Name, req.Format)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, se)
}

func (a *API) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req service.ParticipantInput
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.svc.AddParticipant(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) createRound(w http.ResponseWriter, r *http.Request) {
	var req service.RoundConfig
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	round, err := a.svc.CreateRound(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, round)
}

func (a *API) roundSummaries(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.RoundSummaries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) setShortlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	round, err := a.svc.SetShortlist(r.Context(), chi.URLParam(r, "id"), req.ParticipantIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (a *API) startRound(w http.ResponseWriter, r *http.Request) {
	round, err := a.svc.StartRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (a *API) endRound(w http.ResponseWriter, r *http.Request) {
	round, err := a.svc.EndRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (a *API) deleteRound(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteRound(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) autoFormGroups(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupSize int             `json:"group_size"`
		Strategy  engine.Strategy `json:"strategy"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	groups, err := a.svc.AutoFormGroups(r.Context(), chi.URLParam(r, "id"), req.GroupSize, req.Strategy)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groups)
}

func (a *API) createGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string   `json:"name"`
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.CreateGroupManual(r.Context(), chi.URLParam(r, "id"), req.Name, req.ParticipantIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (a *API) updateGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.UpdateGroupMembers(r.Context(), chi.URLParam(r, "id"), req.ParticipantIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) liveEvaluation(w http.ResponseWriter, r *http.Request) {
	view, err := a.svc.LiveEvaluation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) promoteSelected(w http.ResponseWriter, r *http.Request) {
	round, err := a.svc.PromoteSelected(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (a *API) manualNominate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	round, err := a.svc.ManualNominate(r.Context(), chi.URLParam(r, "id"), req.ParticipantIDs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (a *API) createPanel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string                   `json:"name"`
		Judges     []service.JudgeInput     `json:"judges"`
		Parameters []service.ParameterInput `json:"parameters"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	panel, err := a.svc.CreatePanel(r.Context(), chi.URLParam(r, "id"), req.Name, req.Judges, req.Parameters)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, panel)
}

func (a *API) assignGroups(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoundID  string   `json:"round_id"`
		GroupIDs []string `json:"group_ids"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.svc.AssignGroups(r.Context(), chi.URLParam(r, "id"), req.RoundID, req.GroupIDs); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) resolveAccess(w http.ResponseWriter, r *http.Request) {
	view, err := a.svc.ResolveAccess(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) submitEvaluation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string                `json:"access_code"`
		GroupID    string                `json:"group_id"`
		Ratings    []service.RatingInput `json:"ratings"`
		IsDraft    bool                  `json:"is_draft"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	g, err := a.svc.SubmitEvaluation(r.Context(), req.AccessCode, req.GroupID, req.Ratings, req.IsDraft)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *API) createTopics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topics []string `json:"topics"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	topics, err := a.svc.CreateTopics(r.Context(), chi.URLParam(r, "id"), req.Topics)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topics)
}

func (a *API) claimTopics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubEventID string               `json:"sub_event_id"`
		GroupID    string               `json:"group_id"`
		PanelID    string               `json:"panel_id"`
		Claims     []service.TopicClaim `json:"claims"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if len(req.Claims) > 0 {
		topics, err := a.svc.ClaimTopics(r.Context(), req.SubEventID, req.Claims)
		if err != nil {
			a.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topics)
		return
	}
	topic, err := a.svc.ClaimTopic(r.Context(), req.SubEventID, req.GroupID, req.PanelID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (a *API) resetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := a.svc.ResetTopic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (a *API) overrideStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.ParticipantStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := a.svc.OverrideParticipantStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusView(p))
}

func (a *API) clearOverride(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.ClearParticipantOverride(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusView(p))
}

func statusView(p *model.Participant) map[string]any {
	return map[string]any{
		"participant":    p,
		"current_status": p.CurrentStatus(),
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
