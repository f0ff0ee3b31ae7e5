// HTTP handlers for document CRUD. Updates feed the new content into the
// suggestion coordinator; deletes discard it.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plumenote/plume/internal/domain/document"
	"github.com/plumenote/plume/internal/domain/suggest"
)

// DocumentHandler handles document HTTP requests.
type DocumentHandler struct {
	documents   *document.Service
	suggestions *suggest.Manager
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(documents *document.Service, suggestions *suggest.Manager) *DocumentHandler {
	return &DocumentHandler{documents: documents, suggestions: suggestions}
}

// CreateDocumentRequest is the request body for POST /documents.
type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateDocumentRequest is the request body for PUT /documents/{id}.
// The editor saves the full text on each autosave; there is no patch format.
type UpdateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create handles POST /api/v1/documents.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return
	}
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing user_id in context")
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.documents.Create(r.Context(), workspaceID, document.CreateInput{
		OwnerID: userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	// Prime the coordinator so a manual refresh can run immediately.
	// Creation itself never triggers one.
	h.suggestions.Ensure(doc.ID, doc.Content)

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return
	}

	page := parsePaginationParams(r)
	docs, err := h.documents.List(r.Context(), workspaceID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return
	}

	doc, err := h.documents.Get(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Update handles PUT /api/v1/documents/{id}. This is the autosave path: the
// persisted content and the coordinator's view advance together, and the
// coordinator debounces the refresh on its own clock.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	documentID := chi.URLParam(r, "id")
	doc, err := h.documents.Update(r.Context(), workspaceID, documentID, document.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	h.suggestions.Ensure(doc.ID, doc.Content).SetContent(doc.Content)

	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return
	}

	documentID := chi.URLParam(r, "id")
	if err := h.documents.Delete(r.Context(), workspaceID, documentID); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	h.suggestions.Discard(documentID)

	w.WriteHeader(http.StatusNoContent)
}
