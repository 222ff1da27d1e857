package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-vault-trust/internal/crypto"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/service"
	"github.com/MKhiriev/go-vault-trust/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrUnauthorized:            http.StatusForbidden,
	service.ErrNoIdentityKey:           http.StatusConflict,

	// state violations: the resource exists, the move is illegal
	service.ErrInvalidGrantState:       http.StatusConflict,
	service.ErrGrantExpired:            http.StatusConflict,
	service.ErrRequestAlreadyProcessed: http.StatusConflict,

	// a failed decrypt is the caller's key being wrong, not a server fault
	crypto.ErrDecryptionFailed: http.StatusUnauthorized,
	crypto.ErrKeyUnwrapFailed:  http.StatusUnauthorized,
	crypto.ErrPayloadTampered:  http.StatusUnauthorized,

	store.ErrEmailAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:     http.StatusNotFound,
	store.ErrVaultNotFound:      http.StatusNotFound,
	store.ErrShareNotFound:      http.StatusNotFound,
	store.ErrGrantNotFound:      http.StatusNotFound,
	store.ErrSessionNotFound:    http.StatusNotFound,
	store.ErrWillNotFound:       http.StatusNotFound,
	store.ErrRequestNotFound:    http.StatusNotFound,
	store.ErrStateConflict:      http.StatusConflict,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers with the status mapped for it. Internal
// errors are masked with the generic status text so no storage detail leaks
// to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	log.Err(err).Int("status", status).Msg("request failed")

	if status == http.StatusInternalServerError {
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}
