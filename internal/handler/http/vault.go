package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

func (h *Handler) getVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	blob, err := h.services.VaultService.GetVault(ctx, userID)
	if err != nil {
		// an account with no vault yet is not a failure: answer an empty
		// blob so the client starts fresh
		if errors.Is(err, store.ErrVaultNotFound) {
			utils.WriteJSON(w, models.VaultBlob{UserID: userID}, http.StatusOK)
			return
		}
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("user_id", userID).Msg("vault fetched")
	utils.WriteJSON(w, blob, http.StatusOK)
}

func (h *Handler) saveVault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var blob models.VaultBlob
	if err := json.NewDecoder(r.Body).Decode(&blob); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	blob.UserID = userID

	saved, err := h.services.VaultService.SaveVault(ctx, blob)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, saved, http.StatusOK)
}
