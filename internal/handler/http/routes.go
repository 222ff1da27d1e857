package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogger)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/user/register", h.register)
		r.Post("/api/user/login", h.login)
		r.Post("/api/user/params", h.params)

		// grant consumption: the recipient may not have an account yet
		r.Get("/api/grants/{grantID}", h.getGrant)
		r.Post("/api/grants/{grantID}/login", h.grantLogin)
		r.Post("/api/sessions/{sessionID}/heartbeat", h.sessionHeartbeat)

		// emergency submission is deliberately unauthenticated: the
		// requester claims the owner cannot act for themselves
		r.Post("/api/emergency/requests", h.submitEmergencyRequest)
	})

	// routes with authorization
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/vault", h.getVault)
		r.Put("/api/vault", h.saveVault)

		r.Post("/api/share", h.createShare)
		r.Get("/api/share", h.listShares)
		r.Delete("/api/share/{shareID}", h.deleteShare)
		r.Get("/api/identity/key", h.identityKey)

		r.Post("/api/grants", h.createGrant)
		r.Get("/api/grants", h.listGrants)
		r.Post("/api/grants/{grantID}/accept", h.acceptGrant)
		r.Post("/api/grants/{grantID}/decline", h.declineGrant)
		r.Post("/api/grants/{grantID}/revoke", h.revokeGrant)
		r.Get("/api/grants/{grantID}/audit", h.grantAudit)

		r.Get("/api/will/config", h.getWill)
		r.Put("/api/will/config", h.saveWill)
	})

	// routes with administrator authorization
	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.adminOnly)

		r.Get("/api/admin/emergency/requests", h.listEmergencyRequests)
		r.Post("/api/admin/emergency/requests/{requestID}", h.decideEmergencyRequest)
	})

	return router
}
