// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

// submitEmergencyRequest is public: the requester (a beneficiary) usually
// has no account on the service.
func (h *Handler) submitEmergencyRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request models.EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	submitted, err := h.services.EmergencyService.SubmitRequest(ctx, request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().
		Str("request_id", submitted.RequestID).
		Str("target", submitted.TargetUserEmail).
		Msg("emergency request submitted")
	utils.WriteJSON(w, submitted, http.StatusCreated)
}

func (h *Handler) listEmergencyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.EmergencyStatus(r.URL.Query().Get("status"))
	requests, err := h.services.EmergencyService.ListRequests(ctx, status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, requests, http.StatusOK)
}

func (h *Handler) decideEmergencyRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	adminID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var decision models.EmergencyDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	requestID := chi.URLParam(r, "requestID")
	decided, err := h.services.EmergencyService.Decide(ctx, requestID, decision, adminID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().
		Str("request_id", decided.RequestID).
		Str("status", string(decided.Status)).
		Int64("admin_id", adminID).
		Msg("emergency request decided")
	utils.WriteJSON(w, decided, http.StatusOK)
}
