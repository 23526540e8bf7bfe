// Package server exposes the session manager and provider layer over
// HTTP. Rendering and persistence live in external collaborators; this
// surface only moves JSON in and out of the engine.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"llmgames/engine"
	"llmgames/game"
	"llmgames/provider"
	"llmgames/session"
)

type Server struct {
	r        *chi.Mux
	store    *session.Store
	manager  *session.Manager
	factory  *provider.Factory
	settings *Settings
}

// New wires the router. The timeout middleware does not cover the
// model-move and pull routes; a single backend call can legitimately
// take longer than any sane default.
func New(store *session.Store, manager *session.Manager, factory *provider.Factory, settings *Settings) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    store,
		manager:  manager,
		factory:  factory,
		settings: settings,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/games", func(r chi.Router) {
		r.With(chimw.Timeout(10 * time.Second)).Post("/", s.handleNewGame)
		r.With(chimw.Timeout(10 * time.Second)).Get("/{id}", s.handleGetGame)
		r.With(chimw.Timeout(10 * time.Second)).Post("/{id}/move", s.handleHumanMove)
		r.Post("/{id}/model-move", s.handleModelMove)
		r.With(chimw.Timeout(10 * time.Second)).Delete("/{id}", s.handleDeleteGame)
	})

	s.r.Route("/provider", func(r chi.Router) {
		r.Get("/", s.handleGetSettings)
		r.Put("/", s.handlePutSettings)
		r.With(chimw.Timeout(10 * time.Second)).Post("/validate", s.handleValidate)
		r.Post("/test", s.handleTest)
		r.Post("/pull", s.handlePull)
	})

	return s
}

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router for tests.
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------------------------------------------------

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameType string `json:"gameType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.manager.NewGame(req.GameType, randomID())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.store.Put(state)
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	state, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHumanMove(w http.ResponseWriter, r *http.Request) {
	state, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req struct {
		Move json.RawMessage `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Move) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, err := s.manager.ApplyMove(state, req.Move)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.store.Put(next)
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleModelMove(w http.ResponseWriter, r *http.Request) {
	state, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	next, err := s.manager.RequestModelMove(r.Context(), state)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.store.Put(next)
	writeJSON(w, http.StatusOK, next)
}

// ----------------------------------------------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Redacted())
}

// handlePutSettings swaps the provider configuration. The backend cache
// is keyed without secret values, so a rotated credential would silently
// reuse a stale client; clearing here is what keeps rotation safe.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg provider.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.settings.Update(cfg)
	s.factory.ClearCache()
	log.Info().Str("provider", string(cfg.Provider)).Str("model", cfg.Model).Msg("provider configuration updated")
	writeJSON(w, http.StatusOK, s.settings.Redacted())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfigOrCurrent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, provider.ValidateConfig(cfg))
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfigOrCurrent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, provider.TestConnection(r.Context(), cfg))
}

// handlePull streams pull progress as newline-delimited JSON.
func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.decodeConfigOrCurrent(w, r)
	if !ok {
		return
	}

	events, err := provider.PullModel(r.Context(), cfg)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// decodeConfigOrCurrent reads a configuration from the request body,
// falling back to the live settings on an empty body.
func (s *Server) decodeConfigOrCurrent(w http.ResponseWriter, r *http.Request) (provider.Config, bool) {
	cfg := s.settings.Current()
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return provider.Config{}, false
		}
	}
	return cfg, true
}

// ----------------------------------------------------------------------

// errorPayload is the wire shape of every failure this surface reports.
type errorPayload struct {
	Message     string `json:"message"`
	ErrorType   string `json:"errorType,omitempty"`
	LLMResponse string `json:"llmResponse,omitempty"`
	GameType    string `json:"gameType,omitempty"`
}

// writeFailure maps engine and session errors onto HTTP without
// reclassifying them: a MoveError's kind passes through untouched.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var moveErr *engine.MoveError
	if errors.As(err, &moveErr) {
		status := http.StatusBadGateway
		if moveErr.Kind == engine.KindConfigError {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorPayload{
			Message:     moveErr.Message,
			ErrorType:   string(moveErr.Kind),
			LLMResponse: moveErr.RawResponse,
			GameType:    moveErr.GameType,
		})
		return
	}

	switch {
	case errors.Is(err, session.ErrIllegalMove):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	case errors.Is(err, session.ErrGameOver):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	case errors.Is(err, game.ErrUnknownGameType),
		errors.Is(err, provider.ErrUnsupportedVendor):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
