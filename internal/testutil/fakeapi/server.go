// Package fakeapi is an in-process stand-in for the Battleship API used by
// tests. It keeps just enough game state to answer every endpoint the
// client calls and records each request it receives.
package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime/debug"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/testutil"
)

// Request is a request received by the server. Status is the code the
// server answered with.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
	Status        int
}

type account struct {
	user     model.User
	password string
}

type failure struct {
	status int
	body   string
}

// Hold is a request parked after it was handled. Its response reflects the
// server state when it arrived but is only sent on Release.
type Hold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived is closed once the held request has been handled
func (h *Hold) Arrived() <-chan struct{} {
	return h.arrived
}

// Release sends the held response. It is safe to call more than once.
func (h *Hold) Release() {
	h.once.Do(func() { close(h.release) })
}

// Server is a fake Battleship API
type Server struct {
	*httptest.Server

	// Fleet is the set of ships each player must place before readying up
	Fleet []model.ShipSpec
	// IssueRefreshTokens adds a refresh token to login and register responses
	IssueRefreshTokens bool

	logger *slog.Logger

	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]model.UserID
	matches  map[model.MatchID]*match
	order    []model.MatchID
	requests []Request
	failures map[string][]failure
	holds    map[string][]*Hold
	nextID   int
}

// New starts a fake API server that is closed when the test finishes
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Fleet:    model.DefaultFleet,
		logger:   testutil.TestLogger(t),
		accounts: make(map[string]*account),
		tokens:   make(map[string]model.UserID),
		matches:  make(map[model.MatchID]*match),
		failures: make(map[string][]failure),
		holds:    make(map[string][]*Hold),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.Use(s.recoverPanics)
	r.Use(s.injectFailures)
	r.Use(s.holdResponses)

	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(s.requireAuth)
	protected.HandleFunc("/auth/profile", s.profile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/validate", s.validate).Methods(http.MethodGet)
	protected.HandleFunc("/matches", s.listMatches).Methods(http.MethodGet)
	protected.HandleFunc("/matches", s.createMatch).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id}", s.getMatch).Methods(http.MethodGet)
	protected.HandleFunc("/matches/{id}/join", s.joinMatch).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id}/setup", s.placeShip).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id}/ready", s.confirmSetup).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id}/shoot", s.shoot).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{id}/forfeit", s.forfeit).Methods(http.MethodPost)

	return r
}

// AddUser registers an account that logs in with the given password and
// always receives the given token
func (s *Server) AddUser(user model.User, password, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Email] = &account{user: user, password: password}
	s.tokens[token] = user.ID
}

// RevokeToken makes subsequent requests with the token unauthorized
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// FailNext makes the next request to method+path answer with status and a
// raw body instead of being handled
func (s *Server) FailNext(method, path string, status int, body string) {
	s.RespondNext(method, path, status, body)
}

// RespondNext is FailNext for responses that are not errors, such as a 200
// with an unusual body
func (s *Server) RespondNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// HoldNext parks the next request to method+path after handling it until
// the returned Hold is released. Holds still parked when the test ends are
// released.
func (s *Server) HoldNext(t testing.TB, method, path string) *Hold {
	h := &Hold{arrived: make(chan struct{}), release: make(chan struct{})}
	t.Cleanup(h.Release)

	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.holds[key] = append(s.holds[key], h)
	return h
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Request, len(s.requests))
	copy(result, s.requests)
	return result
}

// LastRequest returns the most recent request matching method and path
func (s *Server) LastRequest(method, path string) (Request, bool) {
	requests := s.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Method == method && requests[i].Path == path {
			return requests[i], true
		}
	}
	return Request{}, false
}

// CountRequests returns how many requests matched method and path
func (s *Server) CountRequests(method, path string) int {
	count := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		index := len(s.requests)
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()

		metrics := httpsnoop.CaptureMetrics(next, w, r)

		s.mu.Lock()
		s.requests[index].Status = metrics.Code
		s.mu.Unlock()

		s.logger.Debug("fake api request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", metrics.Code),
			slog.Int64("bytes", metrics.Written),
			slog.Duration("duration", metrics.Duration),
		)
	})
}

// recoverPanics answers a handler panic with a 500
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		queued := s.failures[key]
		var f *failure
		if len(queued) > 0 {
			f = &queued[0]
			s.failures[key] = queued[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) holdResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		queued := s.holds[key]
		var h *Hold
		if len(queued) > 0 {
			h = queued[0]
			s.holds[key] = queued[1:]
		}
		s.mu.Unlock()

		if h == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)
		close(h.arrived)
		<-h.release

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.Code)
		_, _ = w.Write(rec.Body.Bytes())
	})
}

type callerKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		userID, known := s.tokens[token]
		s.mu.Unlock()

		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, userID)))
	})
}

func caller(r *http.Request) model.UserID {
	id, _ := r.Context().Value(callerKey{}).(model.UserID)
	return id
}

// Auth handlers

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, s.authResponse(s.tokenFor(acc.user.ID), acc.user))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
		return
	}

	user := model.User{ID: model.UserID(s.newID("u")), Username: req.Username, Email: req.Email}
	s.accounts[req.Email] = &account{user: user, password: req.Password}
	token := s.mintToken(user.ID)

	writeJSON(w, http.StatusCreated, s.authResponse(token, user))
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.userByID(caller(r))
	if !ok {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// Callers hold s.mu.
func (s *Server) authResponse(token string, user model.User) model.AuthResponse {
	resp := model.AuthResponse{Token: token, User: user}
	if s.IssueRefreshTokens {
		resp.RefreshToken = s.newID("refresh-")
	}
	return resp
}

// tokenFor returns an existing token for the user, minting one if needed.
// Callers hold s.mu.
func (s *Server) tokenFor(id model.UserID) string {
	for token, userID := range s.tokens {
		if userID == id {
			return token
		}
	}
	return s.mintToken(id)
}

// Callers hold s.mu.
func (s *Server) userByID(id model.UserID) (model.User, bool) {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return model.User{}, false
}

// Callers hold s.mu.
func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
