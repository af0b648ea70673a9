package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgindex/pkgindex/pkg/auth"
	"github.com/pkgindex/pkgindex/pkg/catalog"
	"github.com/pkgindex/pkgindex/pkg/config"
	"github.com/pkgindex/pkgindex/pkg/metering"
	"github.com/pkgindex/pkgindex/pkg/middleware"
	"github.com/pkgindex/pkgindex/pkg/observability"
	"github.com/pkgindex/pkgindex/pkg/search"
	"github.com/pkgindex/pkgindex/pkg/webhooks"
)

type memoryKeyStore struct {
	nextID int64
	keys   map[string]*auth.APIKey
}

func (s *memoryKeyStore) FindActiveByToken(ctx context.Context, token string) (*auth.APIKey, error) {
	key, ok := s.keys[token]
	if !ok || !key.Active {
		return nil, auth.ErrKeyNotFound
	}
	return key, nil
}

func (s *memoryKeyStore) Create(ctx context.Context, key *auth.APIKey) error {
	s.nextID++
	key.ID = s.nextID
	key.CreatedAt = time.Now()
	key.UpdatedAt = key.CreatedAt
	s.keys[key.AccessToken] = key
	return nil
}

func (s *memoryKeyStore) Revoke(ctx context.Context, id int64) error {
	for _, key := range s.keys {
		if key.ID == id {
			key.Active = false
			return nil
		}
	}
	return auth.ErrKeyNotFound
}

type stubSearchService struct {
	got search.Request
}

func (s *stubSearchService) Search(ctx context.Context, req search.Request) (*search.Page, error) {
	s.got = req
	return &search.Page{Results: []search.Result{}, TotalCount: 0, Page: req.Page, PerPage: req.PerPage}, nil
}

type memoryEndpointStore struct {
	webhooks.EndpointStore
}

type stubVersionSource struct{}

func (stubVersionSource) AnyVersion(ctx context.Context) (*catalog.VersionRecord, error) {
	return &catalog.VersionRecord{}, nil
}

type stubRepositorySource struct{}

func (stubRepositorySource) Repository(ctx context.Context, id int64) (*catalog.Repository, error) {
	return &catalog.Repository{ID: id, FullName: "acme/widget", DefaultBranch: "main"}, nil
}

func newTestServer(t *testing.T, readOnly bool) (*Server, *stubSearchService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	meter := metering.NewMeter(client, logger)

	keys := &memoryKeyStore{nextID: 2, keys: map[string]*auth.APIKey{
		"external-token": {ID: 1, AccessToken: "external-token", Active: true, Internal: false},
		"internal-token": {ID: 2, AccessToken: "internal-token", Active: true, Internal: true},
	}}
	gate := middleware.NewAPIKeyGate(keys, meter, nil, logger)

	service := &stubSearchService{}
	gateway := search.NewGateway(service)

	store := &memoryEndpointStore{}
	dispatcher := webhooks.NewDispatcher(store, logger, nil)
	builder := webhooks.NewPayloadBuilder(stubVersionSource{})
	hookHandlers := webhooks.NewHandlers(store, builder, dispatcher, stubRepositorySource{})

	server := NewServer(ServerDeps{
		Gate:     gate,
		State:    config.NewSiteState(readOnly),
		Gateway:  gateway,
		Meter:    meter,
		Webhooks: hookHandlers,
		Keys:     keys,
		Logger:   logger,
	})

	return server, service
}

func TestServer_SearchAnonymous(t *testing.T) {
	server, service := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/api/search?q=rails&per_page=10000&sort=stars", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// Oversized page sizes are clamped before the search service sees them
	assert.Equal(t, 300, service.got.PerPage)
	assert.Equal(t, "stars", service.got.Sort)
	assert.Equal(t, "rails", service.got.Query)
}

func TestServer_SearchInvalidKeyForbidden(t *testing.T) {
	server, _ := newTestServer(t, false)

	req := httptest.NewRequest("GET", "/api/search?q=rails&api_key=bogus", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "you don't have permissions for this operation.", body["error"])
}

func TestServer_UsageRequiresInternalTier(t *testing.T) {
	server, _ := newTestServer(t, false)

	t.Run("external key is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/usage/2026-08?api_key=external-token", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("internal key proceeds", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/usage/2026-08?api_key=internal-token", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServer_ReadOnlyModeBlocksMutations(t *testing.T) {
	server, _ := newTestServer(t, true)

	req := httptest.NewRequest("POST", "/api/repositories/3/hooks",
		strings.NewReader(`{"url":"https://example.com/hook","user_id":1}`))
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Can't perform this action, the site is in read-only mode temporarily.", body["error"])
}

func TestServer_ReadOnlyModeAllowsReads(t *testing.T) {
	server, _ := newTestServer(t, true)

	req := httptest.NewRequest("GET", "/api/search?q=rails", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_KeyManagement(t *testing.T) {
	server, _ := newTestServer(t, false)

	t.Run("external key cannot mint keys", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/keys?api_key=external-token",
			strings.NewReader(`{"user_id":7}`))
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var minted string
	t.Run("internal key mints a working key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/keys?api_key=internal-token",
			strings.NewReader(`{"user_id":7}`))
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		minted, _ = body["access_token"].(string)
		require.True(t, strings.HasPrefix(minted, "pkgindex_"))

		// The freshly minted token authenticates immediately
		req = httptest.NewRequest("GET", "/api/search?q=rails&api_key="+minted, nil)
		w = httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("revoked key stops authenticating", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/keys/3?api_key=internal-token", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)

		req = httptest.NewRequest("GET", "/api/search?q=rails&api_key="+minted, nil)
		w = httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("revoking an unknown key is 404", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/api/keys/999?api_key=internal-token", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_ResponsesCarryRequestID(t *testing.T) {
	server, _ := newTestServer(t, false)

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/search?q=rails", nil)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("inbound ID echoed back", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/search?q=rails", nil)
		req.Header.Set("X-Request-ID", "req-abc")
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
	})
}
