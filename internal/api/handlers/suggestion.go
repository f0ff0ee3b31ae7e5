// HTTP handlers for the suggestion surface of a document: current set and
// state, manual refresh, settings, block matching, the SSE update stream, and
// the attempt log.
package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plumenote/plume/internal/domain/document"
	"github.com/plumenote/plume/internal/domain/history"
	"github.com/plumenote/plume/internal/domain/suggest"
	"github.com/plumenote/plume/internal/infra/eventbus"
)

// SuggestionHandler handles suggestion HTTP requests for a document.
type SuggestionHandler struct {
	documents   *document.Service
	suggestions *suggest.Manager
	attempts    *history.Service
	bus         *eventbus.Bus
}

// NewSuggestionHandler creates a SuggestionHandler.
func NewSuggestionHandler(documents *document.Service, suggestions *suggest.Manager, attempts *history.Service, bus *eventbus.Bus) *SuggestionHandler {
	return &SuggestionHandler{documents: documents, suggestions: suggestions, attempts: attempts, bus: bus}
}

// SuggestionStateResponse is the body for GET .../suggestions.
type SuggestionStateResponse struct {
	DocumentID  string               `json:"documentId"`
	State       string               `json:"state"`
	AutoRefresh bool                 `json:"autoRefresh"`
	Model       string               `json:"model"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// UpdateSettingsRequest is the body for PUT .../suggestions/settings.
// Pointer fields distinguish "leave unchanged" from an explicit value.
type UpdateSettingsRequest struct {
	AutoRefresh *bool   `json:"autoRefresh,omitempty"`
	Model       *string `json:"model,omitempty"`
}

// MatchRequest is the body for POST .../suggestions/match.
type MatchRequest struct {
	BlockText string `json:"blockText"`
}

// coordinatorFor resolves the document in the caller's workspace and returns
// its coordinator, writing the HTTP error itself when resolution fails.
func (h *SuggestionHandler) coordinatorFor(w http.ResponseWriter, r *http.Request) (*suggest.Coordinator, string, bool) {
	workspaceID, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing workspace_id in context")
		return nil, "", false
	}

	documentID := chi.URLParam(r, "id")
	doc, err := h.documents.Get(r.Context(), workspaceID, documentID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return nil, "", false
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return nil, "", false
	}

	return h.suggestions.Ensure(doc.ID, doc.Content), doc.ID, true
}

// Get handles GET /api/v1/documents/{id}/suggestions.
func (h *SuggestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	coord, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(coord, documentID))
}

// Refresh handles POST /api/v1/documents/{id}/suggestions/refresh, the manual
// refresh button. It bypasses the debounce timer but not the in-flight guard
// or the cooldown gate.
//
// Response codes:
//   - 202 Accepted: a request was issued
//   - 200 OK: nothing to refresh (empty or unchanged content)
//   - 409 Conflict: a request is in flight or a cooldown is active
func (h *SuggestionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	coord, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}

	issued, err := coord.RefreshNow()
	if err != nil {
		if errors.Is(err, suggest.ErrNotAvailable) {
			writeError(w, http.StatusConflict, "refresh not available right now")
			return
		}
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	status := http.StatusOK
	if issued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{"documentId": documentID, "issued": issued})
}

// UpdateSettings handles PUT /api/v1/documents/{id}/suggestions/settings.
// Toggles auto-refresh and sets the model identifier, which is passed through
// to the service without validation.
func (h *SuggestionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	coord, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AutoRefresh != nil {
		coord.SetAutoRefresh(*req.AutoRefresh)
	}
	if req.Model != nil {
		coord.SetModel(*req.Model)
	}

	writeJSON(w, http.StatusOK, stateResponse(coord, documentID))
}

// Match handles POST /api/v1/documents/{id}/suggestions/match: which of the
// document's current suggestions attach to the given block of text.
func (h *SuggestionHandler) Match(w http.ResponseWriter, r *http.Request) {
	coord, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matched := suggest.Match(req.BlockText, coord.Suggestions())
	if matched == nil {
		matched = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentId": documentID, "suggestions": matched})
}

// ListAttempts handles GET /api/v1/documents/{id}/suggestions/attempts.
func (h *SuggestionHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	_, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}

	page := parsePaginationParams(r)
	attempts, err := h.attempts.ListByDocument(r.Context(), documentID, page.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentId": documentID, "attempts": attempts})
}

// Stream handles GET /api/v1/documents/{id}/suggestions/stream: an SSE stream
// of suggestion-set replacements for this document. The current set is sent
// first so a reconnecting client never renders stale advice.
func (h *SuggestionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	coord, documentID, ok := h.coordinatorFor(w, r)
	if !ok {
		return
	}

	bw, flusher, err := prepareSSEStream(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sub := h.bus.Subscribe(suggest.TopicSuggestionsUpdated)
	defer sub.Cancel()

	snapshot := suggest.Update{DocumentID: documentID, Suggestions: coord.Suggestions()}
	if err := writeSSEEvent(bw, flusher, snapshot); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-sub.C:
			if !open {
				return
			}
			update, ok := evt.Payload.(suggest.Update)
			if !ok || update.DocumentID != documentID {
				continue
			}
			if err := writeSSEEvent(bw, flusher, update); err != nil {
				return
			}
		}
	}
}

func stateResponse(coord *suggest.Coordinator, documentID string) SuggestionStateResponse {
	suggestions := coord.Suggestions()
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	return SuggestionStateResponse{
		DocumentID:  documentID,
		State:       coord.State().String(),
		AutoRefresh: coord.AutoRefresh(),
		Model:       coord.Model(),
		Suggestions: suggestions,
	}
}

func prepareSSEStream(w http.ResponseWriter) (*bufio.Writer, http.Flusher, error) {
	w.Header().Set(headerContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Flusher")
	}
	return bufio.NewWriter(w), flusher, nil
}

func writeSSEEvent(bw *bufio.Writer, flusher http.Flusher, payload any) error {
	b, _ := json.Marshal(payload)
	if _, err := fmt.Fprintf(bw, "data: %s\n\n", string(b)); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
