package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

func (h *Handler) getWill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	will, err := h.services.WillService.GetWill(ctx, ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, will, http.StatusOK)
}

func (h *Handler) saveWill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var will models.DigitalWillConfig
	if err := json.NewDecoder(r.Body).Decode(&will); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	will.OwnerID = ownerID

	saved, err := h.services.WillService.UpsertWill(ctx, will)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("owner_id", ownerID).Str("condition", saved.Condition).Msg("will config saved")
	utils.WriteJSON(w, saved, http.StatusOK)
}
