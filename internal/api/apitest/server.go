// Package apitest runs an in-memory InForm API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

var signingKey = []byte("apitest")

type account struct {
	user     models.User
	password string
}

// Server mirrors the routes the client uses, backed by maps.
// Its URL field plus "/api" is the client base URL.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account // by email
	sessions  map[string]string   // token -> user id
	expired   bool
	forms     map[string]*models.Form
	owners    map[string]string // form id -> user id
	responses map[string][]*models.Response
	results   map[string][]models.LeaderboardEntry
	emails    []services.ShareEmail
	now       func() time.Time
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:  map[string]*account{},
		sessions:  map[string]string{},
		forms:     map[string]*models.Form{},
		owners:    map[string]string{},
		responses: map[string][]*models.Response{},
		results:   map[string][]models.LeaderboardEntry{},
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to api.New.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// ExpireSessions makes every authenticated call answer 401 "Token expired".
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = true
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) models.User {
	u := models.User{ID: uuid.NewString(), Username: username, Email: email}
	s.accounts[strings.ToLower(email)] = &account{user: u, password: password}
	return u
}

// PutForm stores f as owned by nobody and returns its id.
func (s *Server) PutForm(f models.Form) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.storeFormLocked(&f, "")
	return stored.ID
}

// Form returns a copy of the stored form.
func (s *Server) Form(id string) (models.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return models.Form{}, false
	}
	return *f, true
}

// Emails returns the share links sent so far.
func (s *Server) Emails() []services.ShareEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.ShareEmail(nil), s.emails...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-up", s.signUp)
		r.Post("/auth/sign-in", s.signIn)
		r.Post("/auth/sign-out", s.signOut)
		r.Get("/form/public/", s.publicForms)
		r.Get("/form/shared/{shareID}", s.sharedForm)
		r.Post("/form/{id}/responses", s.submit)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/user/me", s.me)
			r.Get("/form/user/", s.userForms)
			r.Post("/form", s.createForm)
			r.Get("/form/{id}", s.getForm)
			r.Put("/form/{id}", s.updateForm)
			r.Delete("/form/{id}", s.deleteForm)
			r.Get("/form/{id}/responses", s.listResponses)
			r.Get("/form/{id}/results", s.quizResults)
			r.Post("/email/send-link", s.sendLink)
		})
	})
	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if tok == "" {
			if c, err := r.Cookie("token"); err == nil {
				tok = c.Value
			}
		}
		s.mu.Lock()
		uid, ok := s.sessions[tok]
		expired := s.expired
		s.mu.Unlock()
		switch {
		case ok && expired:
			writeMessage(w, http.StatusUnauthorized, middleware.TokenExpiredMessage)
		case !ok:
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		default:
			r.Header.Set("X-User-ID", uid)
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) issueToken(uid string) string {
	claims := middleware.Claims{
		UID:              uid,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(s.now().Add(time.Hour)), ID: uuid.NewString()},
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	s.sessions[tok] = uid
	return tok
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUp answers with the token in the body.
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" || c.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(c.Email)]; exists {
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	}
	u := s.addUserLocked(c.Username, c.Email, c.Password)
	writeJSON(w, http.StatusCreated, map[string]any{"token": s.issueToken(u.ID), "user": u})
}

// signIn answers with the token as a cookie only.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(c.Email)]
	if !ok || acc.password != c.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.expired = false
	http.SetCookie(w, &http.Cookie{Name: "token", Value: s.issueToken(acc.user.ID), Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.sessions, tok)
	s.mu.Unlock()
	writeMessage(w, http.StatusOK, "Signed out")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	uid := r.Header.Get("X-User-ID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID == uid {
			writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "User not found")
}

func (s *Server) publicForms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Form{}
	for _, f := range s.sortedFormsLocked() {
		if f.IsPublic && f.State == models.FormStateLive {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// userForms wraps the list in an object, unlike publicForms.
func (s *Server) userForms(w http.ResponseWriter, r *http.Request) {
	uid := r.Header.Get("X-User-ID")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Form{}
	for _, f := range s.sortedFormsLocked() {
		if s.owners[f.ID] == uid {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": out})
}

func (s *Server) sortedFormsLocked() []*models.Form {
	out := make([]*models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) sharedForm(w http.ResponseWriter, r *http.Request) {
	share := chi.URLParam(r, "shareID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.forms {
		if f.ShareID == share {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Form not found")
}

func (s *Server) storeFormLocked(f *models.Form, owner string) *models.Form {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.ShareID == "" {
		f.ShareID = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	if f.State == "" {
		f.State = models.FormStateDraft
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}
	for i := range f.Questions {
		if f.Questions[i].ID == "" {
			f.Questions[i].ID = uuid.NewString()
		}
		f.Questions[i].TempID = ""
	}
	s.forms[f.ID] = f
	s.owners[f.ID] = owner
	return f
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	var f models.Form
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid form")
		return
	}
	f.ID, f.ShareID, f.ResponseCount = "", "", 0
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.storeFormLocked(&f, r.Header.Get("X-User-ID")))
}

// ownedLocked loads the form in the URL and checks the caller owns it.
func (s *Server) ownedLocked(w http.ResponseWriter, r *http.Request) (*models.Form, bool) {
	f, ok := s.forms[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Form not found")
		return nil, false
	}
	if owner := s.owners[f.ID]; owner != "" && owner != r.Header.Get("X-User-ID") {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return f, true
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.ownedLocked(w, r); ok {
		writeJSON(w, http.StatusOK, f)
	}
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	var in models.Form
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid form")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	in.ID, in.ShareID, in.CreatedAt, in.ResponseCount = cur.ID, cur.ShareID, cur.CreatedAt, cur.ResponseCount
	writeJSON(w, http.StatusOK, s.storeFormLocked(&in, s.owners[cur.ID]))
}

func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	delete(s.forms, f.ID)
	delete(s.owners, f.ID)
	delete(s.responses, f.ID)
	delete(s.results, f.ID)
	writeMessage(w, http.StatusOK, "Form deleted")
}

func (s *Server) listResponses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	rs := s.responses[f.ID]
	if rs == nil {
		rs = []*models.Response{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": rs})
}

func (s *Server) quizResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.ownedLocked(w, r)
	if !ok {
		return
	}
	if f.Type != models.FormTypeQuiz {
		writeMessage(w, http.StatusNotFound, "Not a quiz")
		return
	}
	lb := append([]models.LeaderboardEntry{}, s.results[f.ID]...)
	sort.SliceStable(lb, func(i, j int) bool { return lb[i].Percentage > lb[j].Percentage })
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": lb})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers []models.Answer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid answers")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[chi.URLParam(r, "id")]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Form not found")
		return
	}
	if f.State != models.FormStateLive {
		writeMessage(w, http.StatusForbidden, "Form is not accepting responses")
		return
	}
	resp := &models.Response{ID: uuid.NewString(), SubmittedAt: s.now(), Answers: body.Answers}
	s.responses[f.ID] = append(s.responses[f.ID], resp)
	f.ResponseCount++

	out := services.SubmitResult{ResponseID: resp.ID, Message: "Response submitted"}
	if f.Type == models.FormTypeQuiz {
		out.UserToken = uuid.NewString()
		entry := services.ScoreResponse(f, resp)
		entry.UserToken = out.UserToken
		s.results[f.ID] = append(s.results[f.ID], entry)
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) sendLink(w http.ResponseWriter, r *http.Request) {
	var msg services.ShareEmail
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || !services.IsValidEmail(msg.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email")
		return
	}
	s.mu.Lock()
	s.emails = append(s.emails, msg)
	s.mu.Unlock()
	writeMessage(w, http.StatusOK, "Email sent")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
