package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/utils"
	"github.com/MKhiriev/go-vault-trust/models"
)

func (h *Handler) createShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	sender, err := h.senderEmail(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	share := models.ContactShare{
		SenderID:       userID,
		SenderEmail:    sender,
		RecipientEmail: req.RecipientEmail,
		ItemType:       req.ItemType,
		ItemCiphertext: req.ItemCiphertext,
		WrappedKey:     req.WrappedKey,
	}

	created, err := h.services.ShareService.CreateShare(ctx, share)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

// listShares answers the caller's mailbox: shares addressed to their email.
func (h *Handler) listShares(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	email, err := h.senderEmail(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	shares, err := h.services.ShareService.ListInbox(ctx, email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, shares, http.StatusOK)
}

func (h *Handler) deleteShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	shareID, err := strconv.ParseInt(chi.URLParam(r, "shareID"), 10, 64)
	if err != nil {
		log.Err(err).Msg("invalid share id")
		http.Error(w, "invalid share id", http.StatusBadRequest)
		return
	}

	email, err := h.senderEmail(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.services.ShareService.DeleteShare(ctx, shareID, email); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// identityKey answers GET /api/identity/key?email= with the published
// public key of the queried account.
func (h *Handler) identityKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	resp, err := h.services.ShareService.LookupPublicKey(ctx, email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

// senderEmail resolves the authenticated account's email. The token only
// carries the user id, so mailbox operations look the account up once.
func (h *Handler) senderEmail(r *http.Request, userID int64) (string, error) {
	user, err := h.services.AuthService.GetUser(r.Context(), userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
