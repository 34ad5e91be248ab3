package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
)

// PageQuery holds the query parameters of GET /api/v1/areas/{area}/pages.
type PageQuery struct {
	Index int `schema:"index"`
}

var pageDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	var q PageQuery
	if err := pageDecoder.Decode(&q, r.URL.Query()); err != nil {
		slog.Warn("Page: invalid query parameters", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}
	if q.Index < 0 {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Index must not be negative")
		return
	}

	page, ok, err := h.log.Page(r.Context(), r.PathValue("area"), q.Index)
	if err != nil {
		writeRecordError(w, r, err, "Failed to load page")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Page not found")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
