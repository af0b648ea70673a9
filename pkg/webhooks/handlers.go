package webhooks

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pkgindex/pkgindex/pkg/catalog"
	"github.com/pkgindex/pkgindex/pkg/httputil"
)

// Handlers provides HTTP handlers for webhook endpoint management
type Handlers struct {
	store        EndpointStore
	builder      *PayloadBuilder
	dispatcher   *Dispatcher
	repositories catalog.RepositorySource
}

// NewHandlers creates new webhook handlers
func NewHandlers(store EndpointStore, builder *PayloadBuilder, dispatcher *Dispatcher, repositories catalog.RepositorySource) *Handlers {
	return &Handlers{
		store:        store,
		builder:      builder,
		dispatcher:   dispatcher,
		repositories: repositories,
	}
}

// RegisterRoutes registers webhook routes. The caller wraps mutating routes
// with the read-only guard and all of them with the api_key gate.
func (h *Handlers) RegisterRoutes(router *mux.Router, mutating func(http.Handler) http.Handler) {
	router.Handle("/repositories/{repository_id}/hooks", mutating(http.HandlerFunc(h.createEndpoint))).Methods("POST")
	router.HandleFunc("/repositories/{repository_id}/hooks", h.listEndpoints).Methods("GET")
	router.HandleFunc("/hooks/{id}", h.getEndpoint).Methods("GET")
	router.Handle("/hooks/{id}", mutating(http.HandlerFunc(h.updateEndpoint))).Methods("PUT")
	router.Handle("/hooks/{id}", mutating(http.HandlerFunc(h.deleteEndpoint))).Methods("DELETE")
	router.HandleFunc("/hooks/{id}/test", h.testEndpoint).Methods("POST")
}

type endpointRequest struct {
	URL    string `json:"url"`
	UserID int64  `json:"user_id"`
}

// createEndpoint handles POST /repositories/{repository_id}/hooks
func (h *Handlers) createEndpoint(w http.ResponseWriter, r *http.Request) {
	repositoryID, ok := httputil.ParsePathInt64OrError(w, r, "repository_id")
	if !ok {
		return
	}

	var req endpointRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := ValidateURL(req.URL); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	endpoint := &Endpoint{
		RepositoryID: repositoryID,
		UserID:       req.UserID,
		URL:          req.URL,
	}
	if err := h.store.Create(r.Context(), endpoint); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteCreated(w, endpoint)
}

// listEndpoints handles GET /repositories/{repository_id}/hooks
func (h *Handlers) listEndpoints(w http.ResponseWriter, r *http.Request) {
	repositoryID, ok := httputil.ParsePathInt64OrError(w, r, "repository_id")
	if !ok {
		return
	}

	endpoints, err := h.store.ListByRepository(r.Context(), repositoryID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, endpoints)
}

// getEndpoint handles GET /hooks/{id}
func (h *Handlers) getEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := h.lookup(w, r)
	if !ok {
		return
	}

	httputil.WriteSuccess(w, endpoint)
}

// updateEndpoint handles PUT /hooks/{id}
func (h *Handlers) updateEndpoint(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req endpointRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := ValidateURL(req.URL); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	err := h.store.Update(r.Context(), id, req.URL)
	if errors.Is(err, ErrEndpointNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	endpoint, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, endpoint)
}

// deleteEndpoint handles DELETE /hooks/{id}
func (h *Handlers) deleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrEndpointNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// testEndpoint handles POST /hooks/{id}/test: builds a payload from an
// arbitrary version and fires one delivery so the caller can verify their
// receiver end to end
func (h *Handlers) testEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, ok := h.lookup(w, r)
	if !ok {
		return
	}

	repo, err := h.repositories.Repository(r.Context(), endpoint.RepositoryID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	payload, err := h.builder.TestPayload(r.Context(), repo)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if err := h.dispatcher.Deliver(r.Context(), endpoint, payload); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, endpoint)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*Endpoint, bool) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return nil, false
	}

	endpoint, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrEndpointNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return nil, false
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return nil, false
	}

	return endpoint, true
}
