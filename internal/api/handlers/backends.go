package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/ollama"
)

// modelCacheTTL is how long a backend's model list is reused before the
// backend is asked again.
const modelCacheTTL = 5 * time.Minute

type BackendsHandler struct {
	database *db.Database
	client   *ollama.Client

	// models caches discovery per normalized address, so two backend rows
	// pointing at the same server share one entry and an edited address
	// never serves a stale list.
	models *expirable.LRU[string, []ollama.Model]
}

func NewBackendsHandler(database *db.Database, client *ollama.Client) *BackendsHandler {
	return &BackendsHandler{
		database: database,
		client:   client,
		models:   expirable.NewLRU[string, []ollama.Model](32, nil, modelCacheTTL),
	}
}

// ListBackends returns all registered backends (for Settings UI)
func (h *BackendsHandler) ListBackends(w http.ResponseWriter, r *http.Request) {
	backends, err := h.database.ListBackends()
	if err != nil {
		jsonError(w, "failed to list backends: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(backends)
}

// AvailableBackend is the dropdown-friendly format for frontends
type AvailableBackend struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Model string `json:"model"`
}

// ListAvailable returns enabled backends as {value, label, model} for dropdowns
func (h *BackendsHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	backends, err := h.database.ListBackends()
	if err != nil {
		jsonError(w, "failed to list backends: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var available []AvailableBackend
	for _, b := range backends {
		if !b.Enabled {
			continue
		}
		available = append(available, AvailableBackend{
			Value: fmt.Sprintf("backend:%d", b.ID),
			Label: b.Name,
			Model: b.Model,
		})
	}

	if available == nil {
		available = []AvailableBackend{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(available)
}

// CreateBackend adds a new translation backend
func (h *BackendsHandler) CreateBackend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		Model    string `json:"model"`
		Priority int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.URL == "" {
		jsonError(w, "name and url are required", http.StatusBadRequest)
		return
	}

	// The URL is stored as entered; it is normalized on every call, so a
	// bare host:port or a full-width colon is fine here.
	id, err := h.database.CreateBackend(req.Name, req.URL, req.Model, req.Priority)
	if err != nil {
		jsonError(w, "failed to create backend: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":   id,
		"name": req.Name,
	})
}

// UpdateBackend modifies an existing backend
func (h *BackendsHandler) UpdateBackend(w http.ResponseWriter, r *http.Request) {
	id, err := backendID(r)
	if err != nil {
		jsonError(w, "invalid backend ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		Model    string `json:"model"`
		Enabled  *bool  `json:"enabled"`
		Priority int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Get current backend to merge with updates
	existing, err := h.database.GetBackend(id)
	if err != nil {
		jsonError(w, "backend not found", http.StatusNotFound)
		return
	}

	// Apply updates
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.URL != "" {
		existing.URL = req.URL
	}
	if req.Model != "" {
		existing.Model = req.Model
	}
	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}
	if req.Priority != 0 {
		existing.Priority = req.Priority
	}

	if err := h.database.UpdateBackend(id, existing.Name, existing.URL, existing.Model, existing.Enabled, existing.Priority); err != nil {
		jsonError(w, "failed to update backend: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteBackend removes a backend
func (h *BackendsHandler) DeleteBackend(w http.ResponseWriter, r *http.Request) {
	id, err := backendID(r)
	if err != nil {
		jsonError(w, "invalid backend ID", http.StatusBadRequest)
		return
	}

	if err := h.database.DeleteBackend(id); err != nil {
		jsonError(w, "failed to delete backend: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Probe tests connectivity to a backend and reports status plus latency
func (h *BackendsHandler) Probe(w http.ResponseWriter, r *http.Request) {
	id, err := backendID(r)
	if err != nil {
		jsonError(w, "invalid backend ID", http.StatusBadRequest)
		return
	}

	backend, err := h.database.GetBackend(id)
	if err != nil {
		jsonError(w, "backend not found", http.StatusNotFound)
		return
	}

	result := h.client.Probe(r.Context(), backend.URL)
	jsonResponse(w, result, http.StatusOK)
}

// ListModels returns the models a backend offers. Results are cached per
// backend for a few minutes; pass ?refresh=true to ask the backend again.
func (h *BackendsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	id, err := backendID(r)
	if err != nil {
		jsonError(w, "invalid backend ID", http.StatusBadRequest)
		return
	}

	backend, err := h.database.GetBackend(id)
	if err != nil {
		jsonError(w, "backend not found", http.StatusNotFound)
		return
	}

	key := ollama.NormalizeAddress(backend.URL)
	if r.URL.Query().Get("refresh") == "true" {
		h.models.Remove(key)
	}

	models, ok := h.models.Get(key)
	if !ok {
		models = h.client.ListModels(r.Context(), backend.URL)
		// Discovery is best-effort; an empty answer is not cached so a
		// backend coming online is picked up on the next request.
		if len(models) > 0 {
			h.models.Add(key, models)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models)
}

func backendID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
