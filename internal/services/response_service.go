package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
)

// ResponseStore abstracts the submission endpoint used by ResponseService.
type ResponseStore interface {
	GetFormByShareID(ctx context.Context, shareID string) (*models.Form, error)
	SubmitResponse(ctx context.Context, formID string, answers []models.Answer) (*SubmitResult, error)
}

// SubmitResult is what the API returns for an accepted submission.
// UserToken identifies the respondent on a quiz leaderboard.
type SubmitResult struct {
	ResponseID string `json:"responseId,omitempty"`
	UserToken  string `json:"userToken,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ResponseService checks that a form accepts answers and formats them for submission.
type ResponseService struct {
	store ResponseStore
	now   func() time.Time
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Open loads a shared form and reports whether it can still be filled.
func (s *ResponseService) Open(ctx context.Context, shareID string) (*models.Form, error) {
	if shareID == "" {
		return nil, NewInvalidError("share id required")
	}
	form, err := s.store.GetFormByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("Form not found.")
	}
	if err := CheckAcceptsResponses(form, s.now()); err != nil {
		return form, err
	}
	return form, nil
}

// CheckAcceptsResponses rejects closed, expired and full forms.
func CheckAcceptsResponses(form *models.Form, now time.Time) error {
	label := form.Type.Label()
	if form.State == models.FormStateClosed {
		return wrapError(ErrorForbidden, label+" is closed.", ErrFormClosed)
	}
	if form.ExpiresAt != nil && !form.ExpiresAt.IsZero() && !now.Before(*form.ExpiresAt) {
		return wrapError(ErrorForbidden, label+" has expired.", ErrFormExpired)
	}
	if form.ResponseLimit != nil && *form.ResponseLimit > 0 && form.ResponseCount >= *form.ResponseLimit {
		return wrapError(ErrorConflict, label+" is no longer accepting responses.", ErrResponseLimitReached)
	}
	return nil
}

// FormatAnswers produces one answer per question in form order. Empty values
// become null.
func FormatAnswers(form *models.Form, answers map[string]models.AnswerValue) []models.Answer {
	out := make([]models.Answer, 0, len(form.Questions))
	for _, q := range form.Questions {
		v, ok := answers[q.Key()]
		if !ok || v.IsEmpty() {
			v = models.Null()
		}
		out = append(out, models.Answer{QuestionID: q.Key(), Answer: v})
	}
	return out
}

// MissingRequired returns the required questions without a usable answer.
func MissingRequired(form *models.Form, answers map[string]models.AnswerValue) []models.Question {
	var missing []models.Question
	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		if v, ok := answers[q.Key()]; !ok || v.IsEmpty() {
			missing = append(missing, q)
		}
	}
	return missing
}

// Submit validates answers against form and sends them to the API.
func (s *ResponseService) Submit(ctx context.Context, form *models.Form, answers map[string]models.AnswerValue) (*SubmitResult, error) {
	if s.store == nil {
		return nil, errors.New("response service store is nil")
	}
	if form == nil || form.ID == "" {
		return nil, NewInvalidError("form id required")
	}
	ctx = config.WithFormID(ctx, form.ID)
	if err := CheckAcceptsResponses(form, s.now()); err != nil {
		return nil, err
	}
	if missing := MissingRequired(form, answers); len(missing) > 0 {
		config.WithContext(ctx).WithField("missing", len(missing)).Debug("submission rejected")
		return nil, wrapError(ErrorInvalid, "Please answer all required questions before submitting.", ErrRequiredUnanswered)
	}

	res, err := s.store.SubmitResponse(ctx, form.ID, FormatAnswers(form, answers))
	if err != nil {
		return nil, fmt.Errorf("submit response: %w", err)
	}
	if res == nil {
		res = &SubmitResult{}
	}
	res.Message = ThankYouMessage(form.Type)
	config.WithContext(ctx).Info("response submitted")
	return res, nil
}

func ThankYouMessage(t models.FormType) string {
	if t == models.FormTypeQuiz {
		return "Thank you for completing the quiz."
	}
	name := string(t)
	if name == "" {
		name = string(models.FormTypeForm)
	}
	return fmt.Sprintf("Thank you for filling in the %s.", name)
}
