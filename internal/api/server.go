package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/trailscript/internal/export"
	"github.com/baxromumarov/trailscript/internal/scraper"
)

// Server exposes one finished scan in every export format.
type Server struct {
	router  *chi.Mux
	entries []scraper.Entry
	text    export.TextOptions
	html    export.HTMLOptions
}

func NewServer(entries []scraper.Entry, text export.TextOptions, html export.HTMLOptions) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		entries: entries,
		text:    text,
		html:    html,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/entries", s.handleListEntries)
	s.router.Get("/entries/{number}", s.handleGetEntry)
	s.router.Get("/script.txt", s.handleText)
	s.router.Get("/script.html", s.handleHTML)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/", http.RedirectHandler("/script.html", http.StatusFound).ServeHTTP)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
