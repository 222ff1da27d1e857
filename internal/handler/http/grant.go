// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

func (h *Handler) createGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.CreateGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	grant, err := h.services.GrantService.CreateGrant(ctx, ownerID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Str("grant_id", grant.GrantID).Msg("grant created")
	utils.WriteJSON(w, grant, http.StatusCreated)
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	grants, err := h.services.GrantService.ListGrants(ctx, ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, grants, http.StatusOK)
}

// getGrant is public: the recipient opens the share link before having an
// account. The response carries no decryptable material without the URL
// fragment key, which never reaches the server.
func (h *Handler) getGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	grantID := chi.URLParam(r, "grantID")
	grant, err := h.services.GrantService.GetGrant(ctx, grantID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, grant, http.StatusOK)
}

func (h *Handler) acceptGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipientID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	grantID := chi.URLParam(r, "grantID")
	grant, err := h.services.GrantService.AcceptGrant(ctx, grantID, recipientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, grant, http.StatusOK)
}

func (h *Handler) declineGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipientID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	grantID := chi.URLParam(r, "grantID")
	grant, err := h.services.GrantService.DeclineGrant(ctx, grantID, recipientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, grant, http.StatusOK)
}

// grantLogin is public: a recipient may auto-login before registering.
// When a valid token is attached anyway, the session is bound to that
// account; otherwise it is anonymous.
func (h *Handler) grantLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.GrantLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	grantID := chi.URLParam(r, "grantID")
	response, err := h.services.GrantService.AutoLogin(ctx, grantID, req.FragmentKey, h.optionalUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) revokeGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	// the body is optional: an empty reason falls back to the default
	var req models.RevokeGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	grantID := chi.URLParam(r, "grantID")
	grant, err := h.services.GrantService.RevokeGrant(ctx, grantID, ownerID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Str("grant_id", grant.GrantID).Str("reason", grant.StatusReason).Msg("grant revoked")
	utils.WriteJSON(w, grant, http.StatusOK)
}

func (h *Handler) grantAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	grantID := chi.URLParam(r, "grantID")
	events, err := h.services.GrantService.ListAudit(ctx, grantID, ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, events, http.StatusOK)
}

// sessionHeartbeat records activity on an access session so it is not
// closed as idle. Public like the login that opened the session: the
// opaque session token is the credential.
func (h *Handler) sessionHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SessionHeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.services.GrantService.TouchSession(ctx, sessionID, req.SessionToken); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// optionalUserID extracts the account id from a bearer token when one is
// attached to an otherwise public request. Invalid or missing tokens yield
// nil instead of an error.
func (h *Handler) optionalUserID(r *http.Request) *int64 {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	tokenString, err := getTokenFromAuthHeader(authHeader)
	if err != nil {
		return nil
	}

	token, err := h.services.AuthService.ParseToken(r.Context(), tokenString)
	if err != nil {
		return nil
	}

	userID, err := token.GetUserID()
	if err != nil {
		return nil
	}
	return &userID
}
