package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/pkgindex/pkgindex/pkg/auth"
	"github.com/pkgindex/pkgindex/pkg/httputil"
)

// KeyHandlers serves the internal-tier key management endpoints
type KeyHandlers struct {
	keys   auth.KeyStore
	tokens *auth.TokenGenerator
}

type createKeyRequest struct {
	UserID   int64 `json:"user_id"`
	Internal bool  `json:"internal"`
}

// createKeyResponse is the only place an access token is ever serialized: it
// is shown once at creation and unrecoverable afterwards
type createKeyResponse struct {
	ID          int64     `json:"id"`
	AccessToken string    `json:"access_token"`
	UserID      int64     `json:"user_id"`
	Internal    bool      `json:"internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// createKey handles POST /api/keys
func (h *KeyHandlers) createKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		httputil.WriteBadRequest(w, "user_id is required")
		return
	}

	token, err := h.tokens.GenerateToken()
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	key := &auth.APIKey{
		AccessToken: token,
		UserID:      req.UserID,
		Active:      true,
		Internal:    req.Internal,
	}
	if err := h.keys.Create(r.Context(), key); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, createKeyResponse{
		ID:          key.ID,
		AccessToken: key.AccessToken,
		UserID:      key.UserID,
		Internal:    key.Internal,
		CreatedAt:   key.CreatedAt,
	})
}

// revokeKey handles DELETE /api/keys/{id}
func (h *KeyHandlers) revokeKey(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	err := h.keys.Revoke(r.Context(), id)
	if errors.Is(err, auth.ErrKeyNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
