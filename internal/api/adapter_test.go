package api

import (
	"context"
	"errors"
	"testing"

	"github.com/soaringjerry/inform/internal/middleware"
	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

// stubStore answers every call with err, or the canned values.
type stubStore struct {
	Store
	form      *models.Form
	responses []*models.Response
	err       error
	resultErr error
}

func (s *stubStore) GetForm(context.Context, string) (*models.Form, error) { return s.form, s.err }

func (s *stubStore) ListResponses(context.Context, string) ([]*models.Response, error) {
	return s.responses, s.err
}

func (s *stubStore) GetQuizResults(context.Context, string) ([]models.LeaderboardEntry, error) {
	return nil, s.resultErr
}

func TestToServiceErrorCodes(t *testing.T) {
	cases := []struct {
		status int
		want   services.ErrorCode
	}{
		{404, services.ErrorNotFound},
		{403, services.ErrorForbidden},
		{401, services.ErrorUnauthorized},
		{409, services.ErrorConflict},
		{400, services.ErrorInvalid},
	}
	for _, tc := range cases {
		err := toServiceError(&HTTPError{Status: tc.status, Message: "m"})
		se, ok := services.AsServiceError(err)
		if !ok || se.Code != tc.want || se.Message != "m" {
			t.Fatalf("status %d: got %v", tc.status, err)
		}
	}
	if _, ok := services.AsServiceError(toServiceError(&HTTPError{Status: 500, Message: "boom"})); ok {
		t.Fatalf("5xx should stay an HTTPError")
	}
	if toServiceError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	err := toServiceError(&HTTPError{Status: 401, Message: middleware.TokenExpiredMessage})
	if !errors.Is(err, services.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(toServiceError(middleware.ErrSessionExpired), services.ErrTokenExpired) {
		t.Fatalf("local expiry should map to ErrTokenExpired")
	}
}

func TestAnalyticsThroughAdapter(t *testing.T) {
	store := &stubStore{err: &HTTPError{Status: 404, Message: "Form not found"}}
	svc := NewServices(store)
	_, err := svc.Analytics.Report(context.Background(), "f1")
	se, ok := services.AsServiceError(err)
	if !ok || se.Code != services.ErrorNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportAdapterToleratesMissingResults(t *testing.T) {
	store := &stubStore{
		form: &models.Form{ID: "f1", Type: models.FormTypeQuiz, Title: "Q", Questions: []models.Question{
			{ID: "q1", Type: models.QuestionShortText, QuestionText: "Name"},
		}},
		responses: []*models.Response{{ID: "r1", Answers: []models.Answer{{QuestionID: "q1", Answer: models.Scalar("x")}}}},
		resultErr: &HTTPError{Status: 404, Message: "Not a quiz"},
	}
	a := newExportStoreAdapter(store)
	lb, err := a.GetQuizResults(context.Background(), "f1")
	if err != nil || lb != nil {
		t.Fatalf("404 should read as empty leaderboard: %v %v", lb, err)
	}

	store.resultErr = &HTTPError{Status: 403, Message: "Forbidden"}
	_, err = a.GetQuizResults(context.Background(), "f1")
	if se, ok := services.AsServiceError(err); !ok || se.Code != services.ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
