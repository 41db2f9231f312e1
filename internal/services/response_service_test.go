package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/soaringjerry/inform/internal/models"
)

type stubResponseStore struct {
	form      *models.Form
	submitted []models.Answer
	formID    string
}

func (s *stubResponseStore) GetFormByShareID(_ context.Context, shareID string) (*models.Form, error) {
	if s.form != nil && s.form.ShareID == shareID {
		cp := *s.form
		return &cp, nil
	}
	return nil, nil
}

func (s *stubResponseStore) SubmitResponse(_ context.Context, formID string, answers []models.Answer) (*SubmitResult, error) {
	s.formID = formID
	s.submitted = answers
	return &SubmitResult{ResponseID: "R1", UserToken: "tok123"}, nil
}

var fixedNow = time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC)

func fillableForm() *models.Form {
	return &models.Form{
		ID:      "F1",
		ShareID: "abc",
		Type:    models.FormTypeSurvey,
		State:   models.FormStateLive,
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionShortText, Required: true},
			{ID: "q2", Type: models.QuestionMultiChoice, Choices: []string{"a", "b"}},
			{ID: "q3", Type: models.QuestionLongText},
		},
	}
}

func newTestResponseService(store ResponseStore) *ResponseService {
	svc := NewResponseService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestSubmitFormatsEveryQuestion(t *testing.T) {
	store := &stubResponseStore{}
	svc := newTestResponseService(store)

	res, err := svc.Submit(context.Background(), fillableForm(), map[string]models.AnswerValue{
		"q1": models.Scalar("Ann"),
		"q2": models.List(),
		"q3": models.Scalar(""),
		"zz": models.Scalar("ignored"),
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.UserToken != "tok123" || res.Message != "Thank you for filling in the survey." {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.formID != "F1" || len(store.submitted) != 3 {
		t.Fatalf("unexpected submission %q %+v", store.formID, store.submitted)
	}
	b, err := json.Marshal(store.submitted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"questionId":"q1","answer":"Ann"},{"questionId":"q2","answer":null},{"questionId":"q3","answer":null}]`
	if string(b) != want {
		t.Fatalf("payload = %s\nwant      %s", b, want)
	}
}

func TestSubmitRequiresAnswers(t *testing.T) {
	store := &stubResponseStore{}
	_, err := newTestResponseService(store).Submit(context.Background(), fillableForm(), map[string]models.AnswerValue{
		"q1": models.Scalar(""),
	})
	if !errors.Is(err, ErrRequiredUnanswered) {
		t.Fatalf("expected ErrRequiredUnanswered, got %v", err)
	}
	if se, ok := AsServiceError(err); !ok || se.Message != "Please answer all required questions before submitting." {
		t.Fatalf("unexpected message %v", err)
	}
	if store.submitted != nil {
		t.Fatalf("nothing should be submitted")
	}
}

func TestSubmitRejectsUnavailableForms(t *testing.T) {
	past := fixedNow.Add(-time.Minute)
	limit := 2
	cases := []struct {
		name string
		edit func(f *models.Form)
		want error
		msg  string
	}{
		{"closed", func(f *models.Form) { f.State = models.FormStateClosed }, ErrFormClosed, "Survey is closed."},
		{"expired", func(f *models.Form) { f.ExpiresAt = &past }, ErrFormExpired, "Survey has expired."},
		{"full", func(f *models.Form) { f.ResponseLimit = &limit; f.ResponseCount = 2 }, ErrResponseLimitReached, "Survey is no longer accepting responses."},
	}
	for _, tc := range cases {
		form := fillableForm()
		tc.edit(form)
		_, err := newTestResponseService(&stubResponseStore{}).Submit(context.Background(), form, map[string]models.AnswerValue{"q1": models.Scalar("x")})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if err.Error() != tc.msg {
			t.Fatalf("%s: message = %q", tc.name, err.Error())
		}
	}
}

func TestOpenSharedForm(t *testing.T) {
	store := &stubResponseStore{form: fillableForm()}
	svc := newTestResponseService(store)
	form, err := svc.Open(context.Background(), "abc")
	if err != nil || form.ID != "F1" {
		t.Fatalf("Open: %v %+v", err, form)
	}
	if _, err := svc.Open(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not found")
	}
	store.form.State = models.FormStateClosed
	if _, err := svc.Open(context.Background(), "abc"); !errors.Is(err, ErrFormClosed) {
		t.Fatalf("expected closed, got %v", err)
	}
}

func TestThankYouMessage(t *testing.T) {
	if got := ThankYouMessage(models.FormTypeQuiz); got != "Thank you for completing the quiz." {
		t.Fatalf("quiz message = %q", got)
	}
	if got := ThankYouMessage(models.FormTypeForm); got != "Thank you for filling in the form." {
		t.Fatalf("form message = %q", got)
	}
}
