package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/trailscript/internal/export"
	"github.com/baxromumarov/trailscript/internal/observability"
	"github.com/baxromumarov/trailscript/internal/scraper"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, len(s.entries))

	end := offset + limit
	if offset > len(s.entries) {
		offset = len(s.entries)
	}
	if end > len(s.entries) {
		end = len(s.entries)
	}
	items := s.entries[offset:end]
	// Return empty list if nil to be JSON friendly
	if items == nil {
		items = []scraper.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  len(s.entries),
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid entry number")
		return
	}
	for _, e := range s.entries {
		if e.Number == number {
			respondJSON(w, http.StatusOK, e)
			return
		}
	}
	respondError(w, http.StatusNotFound, "Entry not found")
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteText(&buf, s.entries, s.text); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render text: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteHTML(&buf, s.entries, s.html); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render html: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
