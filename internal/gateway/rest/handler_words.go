package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// AddWordRequest is the body of POST /api/v1/areas/{area}/words.
type AddWordRequest struct {
	Word string `json:"word"`
}

type WordsResponse struct {
	Words []string `json:"words"`
}

type CountResponse struct {
	WordCount int `json:"wordCount"`
}

func (h *Handler) handleAddWord(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")

	var req AddWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	// Words are stored as sent.
	if req.Word == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Word is required")
		return
	}

	if err := h.log.Add(r.Context(), area, req.Word); err != nil {
		writeRecordError(w, r, err, "Failed to add word")
		return
	}

	slog.Debug("Word added", "area", area, "word", req.Word)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	if err := h.log.Clear(r.Context(), area); err != nil {
		writeRecordError(w, r, err, "Failed to clear area")
		return
	}
	slog.Info("Area cleared", "area", area)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.log.Words(r.Context(), r.PathValue("area"))
	if err != nil {
		writeRecordError(w, r, err, "Failed to list words")
		return
	}
	writeJSON(w, http.StatusOK, WordsResponse{Words: words})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.log.WordCount(r.Context(), r.PathValue("area"))
	if err != nil {
		writeRecordError(w, r, err, "Failed to count words")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{WordCount: count})
}
