package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/job"
	"github.com/lingosub/backend/internal/storage"
	"github.com/lingosub/backend/internal/subtitle"
	"github.com/lingosub/backend/internal/subtitle/translate"
)

type DocumentsHandler struct {
	database *db.Database
	store    *storage.Store
	queue    *job.JobQueue
}

func NewDocumentsHandler(database *db.Database, store *storage.Store, queue *job.JobQueue) *DocumentsHandler {
	return &DocumentsHandler{database: database, store: store, queue: queue}
}

// DocumentView is a stored document plus whether a translation exists on disk
type DocumentView struct {
	db.Document
	Translated bool `json:"translated"`
}

// Upload accepts an SRT file, validates it, and stores it under a new id
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	// Reject anything that does not parse now rather than at translation
	// time, so the library never holds a document a run would choke on.
	doc, err := subtitle.Parse(string(content))
	if err != nil {
		jsonError(w, "not a valid SRT file: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.New().String()
	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == "/" {
		name = "subtitles.srt"
	}

	if err := h.store.SaveOriginal(id, string(content)); err != nil {
		jsonError(w, "failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.database.CreateDocument(id, name, len(doc.Entries)); err != nil {
		jsonError(w, "failed to register document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"id":          id,
		"name":        name,
		"entry_count": len(doc.Entries),
	}, http.StatusCreated)
}

// ListDocuments returns all uploaded documents, newest first
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.database.ListDocuments()
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, DocumentView{
			Document:   d,
			Translated: h.store.HasTranslated(d.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// GetDocument returns one document's metadata
func (h *DocumentsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.database.GetDocument(id)
	if err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, DocumentView{
		Document:   *doc,
		Translated: h.store.HasTranslated(doc.ID),
	}, http.StatusOK)
}

// Content serves the raw SRT text. ?which=translated selects the
// translated file; the default is the original upload.
func (h *DocumentsHandler) Content(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.database.GetDocument(id); err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	var content string
	var err error
	if r.URL.Query().Get("which") == "translated" {
		content, err = h.store.ReadTranslated(id)
	} else {
		content, err = h.store.ReadOriginal(id)
	}
	if err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

// Download serves the translated SRT as an attachment. ?which=original
// downloads the untouched upload instead.
func (h *DocumentsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.database.GetDocument(id)
	if err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	var content, filename string
	if r.URL.Query().Get("which") == "original" {
		content, err = h.store.ReadOriginal(id)
		filename = doc.Name
	} else {
		content, err = h.store.ReadTranslated(id)
		base := strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
		filename = base + ".translated.srt"
	}
	if err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write([]byte(content))
}

// DeleteDocument removes a document's record and its files
func (h *DocumentsHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.database.GetDocument(id); err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	if err := h.database.DeleteDocument(id); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.Remove(id); err != nil {
		jsonError(w, "failed to delete files: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Translate queues a translation job for a document
func (h *DocumentsHandler) Translate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.database.GetDocument(id); err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	var req struct {
		BackendID    int64  `json:"backend_id"`
		Model        string `json:"model"`
		SourceLang   string `json:"source_lang"`
		TargetLang   string `json:"target_lang"`
		Preset       string `json:"preset"`
		CustomPrompt string `json:"custom_prompt"`
		BatchSize    int    `json:"batch_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Fill blanks from the configured defaults
	if req.TargetLang == "" {
		req.TargetLang = h.database.GetSetting("default_target_lang", "")
	}
	if req.TargetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}
	if req.Preset == "" {
		req.Preset = h.database.GetSetting("default_preset", "")
	}
	if req.BatchSize == 0 {
		if v := h.database.GetSetting("default_batch_size", ""); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				req.BatchSize = n
			}
		}
	}

	switch req.Preset {
	case "", translate.PresetGeneral, translate.PresetDialogue, translate.PresetDocumentary, translate.PresetCustom:
	default:
		jsonError(w, "unknown preset: "+req.Preset, http.StatusBadRequest)
		return
	}

	backend, err := h.resolveBackend(req.BackendID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	j, err := h.queue.Enqueue(job.JobTranslate, id, job.TranslateParams{
		BackendID:    backend.ID,
		Model:        req.Model,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		Preset:       req.Preset,
		CustomPrompt: req.CustomPrompt,
		BatchSize:    req.BatchSize,
	})
	if err != nil {
		jsonError(w, "failed to queue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// resolveBackend maps a requested backend id to a usable backend. Id 0
// means "whatever is configured": the enabled backend with the lowest
// priority value wins.
func (h *DocumentsHandler) resolveBackend(id int64) (*db.Backend, error) {
	if id != 0 {
		backend, err := h.database.GetBackend(id)
		if err != nil {
			return nil, fmt.Errorf("backend %d not found", id)
		}
		if !backend.Enabled {
			return nil, fmt.Errorf("backend %q is disabled", backend.Name)
		}
		return backend, nil
	}

	backends, err := h.database.ListBackends()
	if err != nil {
		return nil, fmt.Errorf("failed to list backends: %w", err)
	}
	for i := range backends {
		if backends[i].Enabled {
			return &backends[i], nil
		}
	}
	return nil, fmt.Errorf("no enabled backend configured")
}
