package client

import "errors"

// Sentinel errors surfaced by the HTTP adapter. Wrapped with the server's
// response body so callers can both branch and display.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")

	// ErrSessionClosed is returned by VaultSession operations after Close.
	ErrSessionClosed = errors.New("session is closed")

	// ErrVaultLocked is returned when an operation needs key material the
	// session does not hold.
	ErrVaultLocked = errors.New("vault is locked")
)
