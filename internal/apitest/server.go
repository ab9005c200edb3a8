// Package apitest provides an in-memory notes backend speaking the same REST
// contract as the production one, for adapter, controller and CLI tests.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Note is a stored note in wire shape.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	RequestID     string
}

type user struct {
	id     int64
	email  string
	hash   passwordHash
	active bool
}

// Server is a fake backend. Zero-value fields mean "behave like the reference backend".
type Server struct {
	// RequireAuth makes /notes routes demand a valid bearer token.
	RequireAuth bool
	// DisablePut removes PUT /notes/{id}, as in the reference backend.
	DisablePut bool
	// LegacyContentField makes responses carry "content" instead of "body".
	LegacyContentField bool

	srv    *httptest.Server
	secret []byte

	mu       sync.Mutex
	notes    map[int64]Note
	nextNote int64
	users    map[string]*user
	nextUser int64
	requests []Request
	failures map[string]int
}

// New starts a fake backend and closes it when the test ends.
func New(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		secret:   []byte("apitest-secret"),
		notes:    map[int64]Note{},
		users:    map[string]*user{},
		failures: map[string]int{},
	}
	s.srv = httptest.NewServer(s.routes())
	tb.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL of the running server.
func (s *Server) URL() string { return s.srv.URL }

// Client returns an HTTP client wired to the server.
func (s *Server) Client() *http.Client { return s.srv.Client() }

// Seed stores a note directly and returns it.
func (s *Server) Seed(title, body string) Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(title, body)
}

// Notes returns the stored notes ordered by id.
func (s *Server) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// FailNext makes the next request matching method and route pattern (chi syntax,
// e.g. "/notes/{id}") answer with status.
func (s *Server) FailNext(method, pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+pattern] = status
}

// IssueToken returns a signed token for a registered email.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("unknown user")
	}
	return s.sign(u.id)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures)

	r.Get("/health", s.handleHealth)
	r.Get("/calc/sum", s.handleSum)
	r.Post("/users/signup", s.handleSignup)
	r.Post("/auth/token", s.handleToken)
	r.With(s.auth).Get("/users/me", s.handleMe)

	r.Group(func(nr chi.Router) {
		nr.Use(s.maybeAuth)
		nr.Get("/notes", s.handleListNotes)
		nr.Post("/notes", s.handleCreateNote)
		nr.Get("/notes/{id}", s.handleGetNote)
		nr.Put("/notes/{id}", s.handleReplaceNote)
		nr.Delete("/notes/{id}", s.handleDeleteNote)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var status int
		for key, code := range s.failures {
			method, pattern, _ := strings.Cut(key, " ")
			if method == r.Method && matchPattern(pattern, r.URL.Path) {
				status = code
				delete(s.failures, key)
				break
			}
		}
		s.mu.Unlock()
		if status != 0 {
			writeDetail(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// matchPattern compares path segments; "{...}" matches any single segment.
func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") {
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

type ctxKey struct{}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		var claims jwt.RegisteredClaims
		tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil || !tok.Valid {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSubject(r, claims.Subject)))
	})
}

// maybeAuth checks RequireAuth per request so tests may flip it after New.
func (s *Server) maybeAuth(next http.Handler) http.Handler {
	authed := s.auth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.RequireAuth {
			authed.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sign(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) insert(title, body string) Note {
	s.nextNote++
	n := Note{ID: s.nextNote, Title: title, Body: body, CreatedAt: time.Now().UTC()}
	s.notes[n.ID] = n
	return n
}

func (s *Server) sorted() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) wire(n Note) any {
	if !s.LegacyContentField {
		return n
	}
	return map[string]any{"id": n.ID, "title": n.Title, "content": n.Body, "created_at": n.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
