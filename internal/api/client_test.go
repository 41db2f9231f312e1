package api_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/inform/internal/api"
	"github.com/soaringjerry/inform/internal/api/apitest"
	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

func newClient(t *testing.T, srv *apitest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.New(srv.BaseURL(), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func signedIn(t *testing.T, srv *apitest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	srv.AddUser("ann", "ann@example.com", "pw")
	c := newClient(t, srv, opts...)
	if _, err := c.SignIn(context.Background(), api.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := api.New("localhost:3000"); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}

func TestSignInStoresCookieToken(t *testing.T) {
	srv := apitest.NewServer(t)
	store := api.NewFileTokenStore(filepath.Join(t.TempDir(), "inform", "token"))
	c := signedIn(t, srv, api.WithTokenStore(store))

	tok, err := store.Token(context.Background())
	if err != nil || tok == "" {
		t.Fatalf("token not saved: %q %v", tok, err)
	}
	reloaded, _ := api.NewFileTokenStore(store.Path).Token(context.Background())
	if reloaded != tok {
		t.Fatalf("token not persisted to file")
	}
	me, err := c.Me(context.Background())
	if err != nil || me.Email != "ann@example.com" {
		t.Fatalf("me: %+v %v", me, err)
	}

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if tok, _ := store.Token(context.Background()); tok != "" {
		t.Fatalf("token should be cleared, got %q", tok)
	}
}

func TestSignUpUsesBodyToken(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)
	u, err := c.SignUp(context.Background(), api.Credentials{Username: "bo", Email: "bo@example.com", Password: "pw"})
	if err != nil || u.Username != "bo" {
		t.Fatalf("sign up: %+v %v", u, err)
	}
	_, err = c.SignUp(context.Background(), api.Credentials{Username: "bo", Email: "bo@example.com", Password: "pw"})
	var herr *api.HTTPError
	if !errors.As(err, &herr) || herr.Status != 409 || herr.Message != "User already exists" {
		t.Fatalf("expected 409 HTTPError, got %v", err)
	}
}

func TestFormCRUD(t *testing.T) {
	srv := apitest.NewServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	created, err := c.CreateForm(ctx, &models.Form{
		Type:      models.FormTypeSurvey,
		Title:     "Lunch",
		Questions: []models.Question{{Type: models.QuestionShortText, QuestionText: "Where?"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.ShareID == "" || created.Questions[0].ID == "" {
		t.Fatalf("server ids missing: %+v", created)
	}

	created.Title = "Dinner"
	updated, err := c.UpdateForm(ctx, created.ID, created)
	if err != nil || updated.Title != "Dinner" {
		t.Fatalf("update: %+v %v", updated, err)
	}

	mine, err := c.ListUserForms(ctx)
	if err != nil || len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("list user forms: %v %v", mine, err)
	}
	byShare, err := c.GetFormByShareID(ctx, created.ShareID)
	if err != nil || byShare.ID != created.ID {
		t.Fatalf("get by share id: %v", err)
	}

	if err := c.DeleteForm(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.GetForm(ctx, created.ID)
	var herr *api.HTTPError
	if !errors.As(err, &herr) || herr.Status != 404 {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestPublicFormsAndResponses(t *testing.T) {
	srv := apitest.NewServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	f, err := c.CreateForm(ctx, &models.Form{
		Type:     models.FormTypeForm,
		Title:    "Open",
		IsPublic: true,
		State:    models.FormStateLive,
		Questions: []models.Question{
			{Type: models.QuestionSingleChoice, QuestionText: "Pick", Choices: []string{"A", "B"}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	anon := newClient(t, srv)
	public, err := anon.ListPublicForms(ctx)
	if err != nil || len(public) != 1 {
		t.Fatalf("public forms: %v %v", public, err)
	}
	qid := f.Questions[0].ID
	res, err := anon.SubmitResponse(ctx, f.ID, []models.Answer{{QuestionID: qid, Answer: models.Scalar("A")}})
	if err != nil || res.ResponseID == "" {
		t.Fatalf("submit: %+v %v", res, err)
	}

	rs, err := c.ListResponses(ctx, f.ID)
	if err != nil || len(rs) != 1 {
		t.Fatalf("list responses: %v %v", rs, err)
	}
	if diff := cmp.Diff([]string{"A"}, rs[0].Answers[0].Answer.Values()); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}
}

func TestQuizResultsAndShareLink(t *testing.T) {
	srv := apitest.NewServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	f, err := c.CreateForm(ctx, &models.Form{
		Type:  models.FormTypeQuiz,
		Title: "Capitals",
		State: models.FormStateLive,
		Questions: []models.Question{
			{Type: models.QuestionSingleChoice, QuestionText: "France?", Choices: []string{"Paris", "Lyon"}, CorrectAnswer: []string{"Paris"}, Points: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := c.SubmitResponse(ctx, f.ID, []models.Answer{{QuestionID: f.Questions[0].ID, Answer: models.Scalar("Paris")}})
	if err != nil || res.UserToken == "" {
		t.Fatalf("submit: %+v %v", res, err)
	}
	lb, err := c.GetQuizResults(ctx, f.ID)
	if err != nil || len(lb) != 1 {
		t.Fatalf("results: %v %v", lb, err)
	}
	if lb[0].TotalScore != 2 || lb[0].MaxScore != 2 || lb[0].UserToken != res.UserToken {
		t.Fatalf("unexpected entry %+v", lb[0])
	}

	msg, err := services.NewShareEmail("friend@example.com", f, "https://inform.test")
	if err != nil {
		t.Fatalf("share email: %v", err)
	}
	if err := c.SendShareLink(ctx, msg); err != nil {
		t.Fatalf("send link: %v", err)
	}
	sent := srv.Emails()
	if len(sent) != 1 || sent[0].URL != "https://inform.test/fill/"+f.ShareID {
		t.Fatalf("unexpected emails %+v", sent)
	}
}

func TestSessionExpiredClearsTokenAndNotifies(t *testing.T) {
	srv := apitest.NewServer(t)
	var notified int
	c := signedIn(t, srv, api.WithSessionHandler(middleware.SessionHandlerFunc(func(context.Context) { notified++ })))
	srv.ExpireSessions()

	_, err := c.ListUserForms(context.Background())
	var herr *api.HTTPError
	if !errors.As(err, &herr) || herr.Status != 401 || herr.Message != middleware.TokenExpiredMessage {
		t.Fatalf("expected token expired error, got %v", err)
	}
	if notified != 1 {
		t.Fatalf("session handler called %d times", notified)
	}
	if tok, _ := c.Tokens().Token(context.Background()); tok != "" {
		t.Fatalf("token should be cleared")
	}
}

func TestSignInReplacesExpiredStoredToken(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("ann", "ann@example.com", "pw")
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("old-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	store := &api.MemoryTokenStore{}
	if err := store.Save(stale); err != nil {
		t.Fatalf("save: %v", err)
	}
	var notified int
	c := newClient(t, srv, api.WithTokenStore(store),
		api.WithSessionHandler(middleware.SessionHandlerFunc(func(context.Context) { notified++ })))

	if _, err := c.SignIn(context.Background(), api.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("sign in with expired stored token: %v", err)
	}
	if notified != 0 {
		t.Fatalf("session handler called %d times", notified)
	}
	tok, _ := store.Token(context.Background())
	if tok == "" || tok == stale {
		t.Fatalf("expected a fresh token, got %q", tok)
	}
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("me: %v", err)
	}
}

func TestMemoryTokenStore(t *testing.T) {
	var s api.MemoryTokenStore
	if err := s.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if tok, _ := s.Token(context.Background()); tok != "abc" {
		t.Fatalf("got %q", tok)
	}
	_ = s.Clear()
	if tok, _ := s.Token(context.Background()); tok != "" {
		t.Fatalf("expected cleared token")
	}
}
