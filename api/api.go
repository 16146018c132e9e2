// Package api exposes a game over HTTP and streams its bus over a websocket.
package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jsphweid/dreamland/config"
	"github.com/jsphweid/dreamland/game"
	"github.com/jsphweid/dreamland/midi"
	"github.com/jsphweid/dreamland/model"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

type Server struct {
	game     *game.Game
	cfg      config.Server
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	logger   *slog.Logger
	router   *mux.Router
}

func New(g *game.Game, cfg config.Server, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		game:    g,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.NoteRate), cfg.NoteBurst),
		logger:  logger.With("component", "api"),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/notes", s.handleNote).Methods("POST")
	router.HandleFunc("/chord-mode/toggle", s.handleChordToggle).Methods("POST")
	router.HandleFunc("/chord-mode/notes", s.handleChordSelect).Methods("POST")
	router.HandleFunc("/chord-mode/commit", s.handleChordCommit).Methods("POST")
	router.HandleFunc("/composition", s.handleComposition).Methods("GET")
	router.HandleFunc("/composition", s.handleClear).Methods("DELETE")
	router.HandleFunc("/composition.mid", s.handleExport).Methods("GET")
	router.HandleFunc("/playback", s.handlePlayback).Methods("POST")
	router.HandleFunc("/tutorial/continue", s.handleTutorialContinue).Methods("POST")
	router.HandleFunc("/tutorial/skip", s.handleTutorialSkip).Methods("POST")
	router.HandleFunc("/state", s.handleState).Methods("GET")
	router.HandleFunc("/events", s.handleEvents).Methods("GET")
	s.router = router
	return s
}

// Handler is the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}).Handler(s.router)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// do runs fn on the game's loop. It writes a 503 and returns false when the
// loop is gone or the request was cancelled.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.game.Runner().Do(r.Context(), fn); err != nil {
		s.logger.Warn("could not reach game loop", "err", err)
		writeError(w, http.StatusServiceUnavailable, "game loop unavailable")
		return false
	}
	return true
}

func readNote(w http.ResponseWriter, r *http.Request) (model.Note, bool) {
	var input model.NoteRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Could not unmarshal request body: "+err.Error())
		return "", false
	}
	note, err := model.ParseNote(input.Note)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return note, true
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many notes")
		return
	}
	note, ok := readNote(w, r)
	if !ok {
		return
	}
	var accepted bool
	var state model.StateResponse
	if !s.do(w, r, func() {
		accepted = s.game.Press(note)
		state = s.game.Snapshot()
	}) {
		return
	}
	if !accepted {
		writeError(w, http.StatusConflict, "keys are locked during playback")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleChordToggle(w http.ResponseWriter, r *http.Request) {
	var state model.StateResponse
	if s.do(w, r, func() {
		s.game.Chords.Toggle()
		state = s.game.Snapshot()
	}) {
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleChordSelect(w http.ResponseWriter, r *http.Request) {
	note, ok := readNote(w, r)
	if !ok {
		return
	}
	var active bool
	var state model.StateResponse
	if !s.do(w, r, func() {
		active = s.game.Chords.Active()
		s.game.Chords.Select(note)
		state = s.game.Snapshot()
	}) {
		return
	}
	if !active {
		writeError(w, http.StatusConflict, "chord mode is off")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleChordCommit(w http.ResponseWriter, r *http.Request) {
	var event model.CompositionEvent
	var ok bool
	if !s.do(w, r, func() {
		event, ok = s.game.Chords.Commit()
	}) {
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "no notes selected")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleComposition(w http.ResponseWriter, r *http.Request) {
	var events []model.CompositionEvent
	if s.do(w, r, func() { events = s.game.Events() }) {
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if s.do(w, r, s.game.Clear) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var events []model.CompositionEvent
	var bpm float64
	if !s.do(w, r, func() {
		events = s.game.Composition.Model().Events()
		bpm = s.game.Quantizer.BPM()
	}) {
		return
	}
	var buf bytes.Buffer
	if err := midi.WriteComposition(&buf, events, bpm); err != nil {
		s.logger.Error("export failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not export composition")
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="composition.mid"`)
	w.Write(buf.Bytes())
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var started bool
	var res model.PlaybackResponse
	if !s.do(w, r, func() {
		started = s.game.Replay()
		if !started {
			return
		}
		plan := s.game.Playback.Plan()
		res.Events = len(plan)
		for _, p := range plan {
			res.Plan = append(res.Plan, p.Delay.Milliseconds())
		}
	}) {
		return
	}
	if !started {
		writeError(w, http.StatusConflict, "already playing or nothing to play")
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleTutorialContinue(w http.ResponseWriter, r *http.Request) {
	var state model.TutorialState
	if s.do(w, r, func() {
		s.game.Tutorial.Advance()
		state = s.game.Tutorial.State()
	}) {
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleTutorialSkip(w http.ResponseWriter, r *http.Request) {
	var state model.TutorialState
	if s.do(w, r, func() {
		s.game.Tutorial.Skip()
		state = s.game.Tutorial.State()
	}) {
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var state model.StateResponse
	if s.do(w, r, func() { state = s.game.Snapshot() }) {
		writeJSON(w, http.StatusOK, state)
	}
}
