// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-vault-trust/models"
)

//go:generate mockgen -source=adapter.go -destination=../mock/client_mocks.go -package=mock

// ServerAdapter is the wire-level view of the server used by VaultSession.
// It moves opaque models back and forth; all cryptography stays in the
// session above it.
type ServerAdapter interface {
	SetToken(token string)
	Token() string

	Register(ctx context.Context, user models.User) error
	Login(ctx context.Context, email, authHash string) error
	Params(ctx context.Context, email string) (models.UserParams, error)

	GetVault(ctx context.Context) (models.VaultBlob, error)
	SaveVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error)

	CreateShare(ctx context.Context, req models.CreateShareRequest) (models.ContactShare, error)
	ListInbox(ctx context.Context) ([]models.ContactShare, error)
	DeleteShare(ctx context.Context, shareID int64) error
	LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error)

	CreateGrant(ctx context.Context, req models.CreateGrantRequest) (models.AccessGrant, error)
	ListGrants(ctx context.Context) ([]models.AccessGrant, error)
	RevokeGrant(ctx context.Context, grantID, reason string) (models.AccessGrant, error)
	GrantAudit(ctx context.Context, grantID string) ([]models.AuditEvent, error)
}

// AdapterConfig carries the connection settings of the HTTP adapter.
type AdapterConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpServerAdapter struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPServerAdapter constructs the HTTP/REST implementation of
// [ServerAdapter].
func NewHTTPServerAdapter(cfg AdapterConfig) ServerAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpServerAdapter{client: cli}
}

// SetToken stores token (whitespace-trimmed) for use in the Authorization
// header of all subsequent authenticated requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token returns the bearer token currently held by the adapter, or an empty
// string if none has been set.
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) authorized(ctx context.Context) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+h.Token())
}

func (h *httpServerAdapter) Register(ctx context.Context, user models.User) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/user/register")
	if err != nil {
		return fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

func (h *httpServerAdapter) Login(ctx context.Context, email, authHash string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.User{Email: email, AuthHash: authHash}).
		Post("/api/user/login")
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

func (h *httpServerAdapter) Params(ctx context.Context, email string) (models.UserParams, error) {
	var params models.UserParams
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.User{Email: email}).
		SetResult(&params).
		Post("/api/user/params")
	if err != nil {
		return models.UserParams{}, fmt.Errorf("params request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserParams{}, err
	}
	return params, nil
}

func (h *httpServerAdapter) GetVault(ctx context.Context) (models.VaultBlob, error) {
	var blob models.VaultBlob
	resp, err := h.authorized(ctx).
		SetResult(&blob).
		Get("/api/vault")
	if err != nil {
		return models.VaultBlob{}, fmt.Errorf("get vault request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VaultBlob{}, err
	}
	return blob, nil
}

func (h *httpServerAdapter) SaveVault(ctx context.Context, blob models.VaultBlob) (models.VaultBlob, error) {
	var saved models.VaultBlob
	resp, err := h.authorized(ctx).
		SetBody(blob).
		SetResult(&saved).
		Put("/api/vault")
	if err != nil {
		return models.VaultBlob{}, fmt.Errorf("save vault request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VaultBlob{}, err
	}
	return saved, nil
}

func (h *httpServerAdapter) CreateShare(ctx context.Context, req models.CreateShareRequest) (models.ContactShare, error) {
	var share models.ContactShare
	resp, err := h.authorized(ctx).
		SetBody(req).
		SetResult(&share).
		Post("/api/share")
	if err != nil {
		return models.ContactShare{}, fmt.Errorf("create share request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ContactShare{}, err
	}
	return share, nil
}

func (h *httpServerAdapter) ListInbox(ctx context.Context) ([]models.ContactShare, error) {
	var inbox []models.ContactShare
	resp, err := h.authorized(ctx).
		SetResult(&inbox).
		Get("/api/share")
	if err != nil {
		return nil, fmt.Errorf("list inbox request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return inbox, nil
}

func (h *httpServerAdapter) DeleteShare(ctx context.Context, shareID int64) error {
	resp, err := h.authorized(ctx).
		Delete(fmt.Sprintf("/api/share/%d", shareID))
	if err != nil {
		return fmt.Errorf("delete share request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) LookupPublicKey(ctx context.Context, email string) (models.PublicKeyResponse, error) {
	var key models.PublicKeyResponse
	resp, err := h.authorized(ctx).
		SetQueryParam("email", email).
		SetResult(&key).
		Get("/api/identity/key")
	if err != nil {
		return models.PublicKeyResponse{}, fmt.Errorf("lookup public key request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PublicKeyResponse{}, err
	}
	return key, nil
}

func (h *httpServerAdapter) CreateGrant(ctx context.Context, req models.CreateGrantRequest) (models.AccessGrant, error) {
	var grant models.AccessGrant
	resp, err := h.authorized(ctx).
		SetBody(req).
		SetResult(&grant).
		Post("/api/grants")
	if err != nil {
		return models.AccessGrant{}, fmt.Errorf("create grant request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AccessGrant{}, err
	}
	return grant, nil
}

func (h *httpServerAdapter) ListGrants(ctx context.Context) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	resp, err := h.authorized(ctx).
		SetResult(&grants).
		Get("/api/grants")
	if err != nil {
		return nil, fmt.Errorf("list grants request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return grants, nil
}

func (h *httpServerAdapter) RevokeGrant(ctx context.Context, grantID, reason string) (models.AccessGrant, error) {
	var grant models.AccessGrant
	resp, err := h.authorized(ctx).
		SetBody(models.RevokeGrantRequest{Reason: reason}).
		SetResult(&grant).
		Post("/api/grants/" + grantID + "/revoke")
	if err != nil {
		return models.AccessGrant{}, fmt.Errorf("revoke grant request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AccessGrant{}, err
	}
	return grant, nil
}

func (h *httpServerAdapter) GrantAudit(ctx context.Context, grantID string) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	resp, err := h.authorized(ctx).
		SetResult(&events).
		Get("/api/grants/" + grantID + "/audit")
	if err != nil {
		return nil, fmt.Errorf("grant audit request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return events, nil
}
