package apitest

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func withSubject(r *http.Request, sub string) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, sub)
}

func subject(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSum(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("a") == "" || q.Get("b") == "" {
		writeDetail(w, http.StatusBadRequest, "Both 'a' and 'b' query params are required")
		return
	}
	sum, ok := exactSum(q.Get("a"), q.Get("b"))
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "Query params 'a' and 'b' must be numbers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.Number{"result": json.Number(sum)})
}

// exactSum adds integers without bound like the reference backend does, and
// falls back to wide binary floats for decimal input.
func exactSum(a, b string) (string, bool) {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if okA && okB {
		return x.Add(x, y).String(), true
	}
	fx, _, errA := big.ParseFloat(a, 10, 256, big.ToNearestEven)
	fy, _, errB := big.ParseFloat(b, 10, 256, big.ToNearestEven)
	if errA != nil || errB != nil || fx.IsInf() || fy.IsInf() {
		return "", false
	}
	return fx.Add(fx, fy).Text('f', -1), true
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email and password required")
		return
	}
	h, err := hashPassword(body.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.nextUser++
	u := &user{id: s.nextUser, email: body.Email, hash: h, active: true}
	s.users[u.email] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, accountResponse{ID: u.id, Email: u.email, IsActive: u.active})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok || !u.hash.verify(password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	tok, err := s.sign(u.id)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": tok, "token_type": "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(subject(r.Context()), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.id == id {
			writeJSON(w, http.StatusOK, accountResponse{ID: u.id, Email: u.email, IsActive: u.active})
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}

type noteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func decodeNote(r *http.Request) (title, body string, ok bool) {
	var in noteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == nil || in.Body == nil {
		return "", "", false
	}
	return *in.Title, *in.Body, true
}

func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleListNotes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	notes := s.sorted()
	s.mu.Unlock()
	out := make([]any, 0, len(notes))
	for _, n := range notes {
		out = append(out, s.wire(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	title, body, ok := decodeNote(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "title and body required")
		return
	}
	s.mu.Lock()
	n := s.insert(title, body)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.wire(n))
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	s.mu.Lock()
	n, found := s.notes[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, s.wire(n))
}

func (s *Server) handleReplaceNote(w http.ResponseWriter, r *http.Request) {
	if s.DisablePut {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	id, ok := noteID(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	title, body, ok := decodeNote(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "title and body required")
		return
	}
	s.mu.Lock()
	n, found := s.notes[id]
	if found {
		n.Title, n.Body = title, body
		s.notes[id] = n
	}
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, s.wire(n))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}
	s.mu.Lock()
	_, found := s.notes[id]
	delete(s.notes, id)
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
