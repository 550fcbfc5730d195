package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/ws"
)

func SetupRoutes(a *API, h *hub.Hub) http.Handler {
	r := chi.NewRouter()

	r.Post("/subevents", a.createSubEvent)
	r.Post("/subevents/{id}/participants", a.addParticipant)
	r.Post("/subevents/{id}/rounds", a.createRound)
	r.Get("/subevents/{id}/rounds", a.roundSummaries)
	r.Post("/subevents/{id}/panels", a.createPanel)
	r.Post("/subevents/{id}/topics", a.createTopics)

	r.Put("/rounds/{id}/shortlist", a.setShortlist)
	r.Post("/rounds/{id}/start", a.startRound)
	r.Post("/rounds/{id}/end", a.endRound)
	r.Delete("/rounds/{id}", a.deleteRound)
	r.Post("/rounds/{id}/groups/auto", a.autoFormGroups)
	r.Post("/rounds/{id}/groups", a.createGroup)
	r.Get("/rounds/{id}/live", a.liveEvaluation)
	r.Post("/rounds/{id}/promote", a.promoteSelected)
	r.Post("/rounds/{id}/nominations", a.manualNominate)

	r.Put("/groups/{id}/members", a.updateGroupMembers)

	r.Post("/panels/{id}/assignments", a.assignGroups)
	r.Get("/access/{code}", a.resolveAccess)
	r.Post("/evaluations", a.submitEvaluation)

	r.Post("/topics/claim", a.claimTopics)
	r.Post("/topics/{id}/reset", a.resetTopic)

	r.Put("/participants/{id}/status", a.overrideStatus)
	r.Delete("/participants/{id}/status", a.clearOverride)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h))
	return r
}
