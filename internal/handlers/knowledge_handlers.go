package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riorio-tech/legalchatbot/internal/knowledge"
	"github.com/riorio-tech/legalchatbot/pkg/metrics"
)

type knowledgeRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Knowledge lists and creates knowledge notes at /api/knowledge. The
// backing store is in-memory only; everything is gone on restart.
func (h *Handler) Knowledge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.listKnowledge(w)
		case http.MethodPost:
			h.addKnowledge(w, r)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		}
	}
}

func (h *Handler) listKnowledge(w http.ResponseWriter) {
	items := h.store.List()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
		"count": len(items),
	}); err != nil {
		log.Printf("Error encoding knowledge list: %v", err)
	}
}

func (h *Handler) addKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.store.Add(req.Title, req.Content, req.Category)
	if err != nil {
		if errors.Is(err, knowledge.ErrBlankField) {
			h.writeError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to add knowledge", err.Error())
		return
	}

	metrics.UpdateKnowledgeItemCount(h.store.Len())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(item); err != nil {
		log.Printf("Error encoding knowledge item: %v", err)
	}
}

// DeleteKnowledge removes one note at /api/knowledge/{id}.
func (h *Handler) DeleteKnowledge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}

		id := mux.Vars(r)["id"]
		if !h.store.Delete(id) {
			h.writeError(w, http.StatusNotFound, "knowledge item not found", id)
			return
		}

		metrics.UpdateKnowledgeItemCount(h.store.Len())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"id":      id,
		}); err != nil {
			log.Printf("Error encoding delete response: %v", err)
		}
	}
}
