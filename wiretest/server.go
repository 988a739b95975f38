// Package wiretest provides an in-process fake agent backend speaking the
// same wire protocol as a real one. It exists for tests and runnable
// examples: turns stream lorem ipsum tokens by default, and scenarios
// (tool calls, approvals, multi-agent hand-offs, malformed frames) are
// scripted per test. No API key, no network.
package wiretest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"

	agentwire "github.com/pellucid-ai/agentwire-go"
)

// Resolution records one approval decision posted by a client.
type Resolution struct {
	ApprovalID string
	Decision   string
	Reason     string
}

// TurnScript writes the events of one streamed turn. The default script
// emits start, a handful of lorem tokens, and done.
type TurnScript func(w *EventWriter, req *agentwire.TurnRequest)

// Server is a fake agent backend bound to an httptest.Server.
type Server struct {
	ts        *httptest.Server
	generator *loremgen.Lorem

	mu          sync.Mutex
	sessions    map[string]agentwire.Session
	resolutions []Resolution
	script      TurnScript
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		generator: loremgen.New(),
		sessions:  make(map[string]agentwire.Session),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/chat", s.handleInvoke)
	mux.HandleFunc("POST /api/agents/{name}", s.handleInvoke)
	mux.HandleFunc("POST /api/workflows/{name}", s.handleInvoke)
	mux.HandleFunc("POST /api/chat/stream", s.handleStream)
	mux.HandleFunc("POST /api/agents/{name}/stream", s.handleStream)
	mux.HandleFunc("POST /api/workflows/{name}/stream", s.handleStream)
	mux.HandleFunc("POST /api/approvals/{id}", s.handleResolveApproval)

	s.ts = httptest.NewServer(mux)
	return s
}

// URL returns the backend's base URL.
func (s *Server) URL() string {
	return s.ts.URL
}

// Close shuts the backend down.
func (s *Server) Close() {
	s.ts.Close()
}

// SetScript replaces the turn script for subsequent streamed turns.
func (s *Server) SetScript(script TurnScript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// Resolutions returns the approval decisions received so far.
func (s *Server) Resolutions() []Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Resolution(nil), s.resolutions...)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := agentwire.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sessions := make([]agentwire.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sess, ok := s.sessions[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, ok := s.sessions[r.PathValue("id")]
	delete(s.sessions, r.PathValue("id"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTurnRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, agentwire.TurnResponse{
		SessionID: s.sessionFor(req),
		Response:  s.generator.Sentence(5, 15),
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTurnRequest(w, r)
	if !ok {
		return
	}

	ew := NewEventWriter(w)
	if ew == nil {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	s.mu.Lock()
	script := s.script
	s.mu.Unlock()

	if script == nil {
		script = s.defaultScript
	}
	script(ew, req)
}

func (s *Server) handleResolveApproval(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	s.resolutions = append(s.resolutions, Resolution{
		ApprovalID: r.PathValue("id"),
		Decision:   body.Decision,
		Reason:     body.Reason,
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// defaultScript streams a short lorem turn: a keep-alive comment, start,
// word tokens, done.
func (s *Server) defaultScript(w *EventWriter, req *agentwire.TurnRequest) {
	w.Comment("keep-alive")
	w.Event("start", map[string]string{"session_id": s.sessionFor(req)})

	sentence := s.generator.Sentence(5, 10)
	for _, word := range strings.Fields(sentence) {
		w.Event("token", map[string]string{"content": word + " "})
	}
	w.Event("done", map[string]any{})
}

// sessionFor returns the request's session id, minting one for requests that
// let the backend create the session.
func (s *Server) sessionFor(req *agentwire.TurnRequest) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = agentwire.Session{ID: id, CreatedAt: time.Now().UTC()}
	s.mu.Unlock()
	return id
}

func decodeTurnRequest(w http.ResponseWriter, r *http.Request) (*agentwire.TurnRequest, bool) {
	var req agentwire.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return nil, false
	}
	return &req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
