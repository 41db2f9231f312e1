package models

import (
	"strings"
	"time"
)

// FormType selects which validation rules and analytics apply to a form.
type FormType string

const (
	FormTypeForm   FormType = "form"
	FormTypeSurvey FormType = "survey"
	FormTypeQuiz   FormType = "quiz"
	FormTypeLogic  FormType = "logic"
)

// Label renders the type the way it is shown to people ("Quiz").
// An unset type reads as "Form".
func (t FormType) Label() string {
	if t == "" {
		return "Form"
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

type FormState string

const (
	FormStateDraft  FormState = "draft"
	FormStateLive   FormState = "live"
	FormStateClosed FormState = "closed"
)

// Label renders the state as used by dashboard filters ("Live").
func (s FormState) Label() string {
	if s == "" {
		return ""
	}
	v := string(s)
	return strings.ToUpper(v[:1]) + v[1:]
}

type QuestionType string

const (
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
	QuestionRating       QuestionType = "rating"
	QuestionDate         QuestionType = "date"
	// QuestionYesNo is only used by the synthetic logic question.
	QuestionYesNo QuestionType = "yes-no"
)

func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

func (t QuestionType) IsText() bool {
	return t == QuestionShortText || t == QuestionLongText
}

// Label renders the question type for summaries ("Multiple choice").
func (t QuestionType) Label() string {
	switch t {
	case QuestionShortText:
		return "Short text"
	case QuestionLongText:
		return "Long text"
	case QuestionSingleChoice:
		return "Single choice"
	case QuestionMultiChoice:
		return "Multiple choice"
	case QuestionRating:
		return "Rating"
	case QuestionDate:
		return "Date"
	case QuestionYesNo:
		return "Logic question"
	default:
		return string(t)
	}
}

// Form is a form, survey, quiz or logic form with its ordered questions.
type Form struct {
	ID              string     `json:"_id,omitempty" yaml:"_id,omitempty"`
	Type            FormType   `json:"type" yaml:"type"`
	Title           string     `json:"title" yaml:"title"`
	Description     string     `json:"description" yaml:"description"`
	Questions       []Question `json:"questions" yaml:"questions"`
	State           FormState  `json:"state,omitempty" yaml:"state,omitempty"`
	IsPublic        bool       `json:"isPublic" yaml:"isPublic"`
	IsAnonymousQuiz bool       `json:"isAnonymousQuiz" yaml:"isAnonymousQuiz"`
	ShowResults     bool       `json:"showResults" yaml:"showResults"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	ResponseLimit   *int       `json:"responseLimit,omitempty" yaml:"responseLimit,omitempty"`
	ShareID         string     `json:"shareId,omitempty" yaml:"shareId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	ResponseCount   int        `json:"responseCount,omitempty" yaml:"responseCount,omitempty"` // reported by the API when listing forms
}

// Question is one prompt of a form. Exactly one of ID and TempID is set.
type Question struct {
	ID              string       `json:"_id,omitempty" yaml:"_id,omitempty"`
	TempID          string       `json:"tempId,omitempty" yaml:"tempId,omitempty"`
	Type            QuestionType `json:"type" yaml:"type"`
	QuestionText    string       `json:"questionText" yaml:"questionText"`
	Choices         []string     `json:"choices,omitempty" yaml:"choices,omitempty"`
	Required        bool         `json:"required" yaml:"required"`
	CorrectAnswer   []string     `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	Points          float64      `json:"points,omitempty" yaml:"points,omitempty"`
	IsLogicQuestion bool         `json:"isLogicQuestion,omitempty" yaml:"isLogicQuestion,omitempty"`
}

// Key returns the persisted id, or the client-side temp id before the first save.
func (q Question) Key() string {
	if q.ID != "" {
		return q.ID
	}
	return q.TempID
}

// LogicQuestion returns the synthetic gating question, if the form has one.
func (f *Form) LogicQuestion() *Question {
	if f == nil {
		return nil
	}
	for i := range f.Questions {
		if f.Questions[i].IsLogicQuestion {
			return &f.Questions[i]
		}
	}
	return nil
}

// Answer pairs a question id with the submitted value.
type Answer struct {
	QuestionID string      `json:"questionId" yaml:"questionId"`
	Answer     AnswerValue `json:"answer" yaml:"answer"`
}

// Response is one submission. It is read-only input to analytics.
type Response struct {
	ID          string    `json:"_id,omitempty" yaml:"_id,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" yaml:"submittedAt"`
	Answers     []Answer  `json:"answers" yaml:"answers"`
}

// Find returns the answer recorded for questionID.
func (r *Response) Find(questionID string) (AnswerValue, bool) {
	if r == nil {
		return AnswerValue{}, false
	}
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a.Answer, true
		}
	}
	return AnswerValue{}, false
}

// LeaderboardEntry is one ranked quiz result as computed by the API.
type LeaderboardEntry struct {
	ResponseID string  `json:"responseId" yaml:"responseId"`
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	TotalScore float64 `json:"totalScore" yaml:"totalScore"`
	MaxScore   float64 `json:"maxScore" yaml:"maxScore"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	UserToken  string  `json:"userToken,omitempty" yaml:"userToken,omitempty"`
}

// User is the signed-in account as returned by /user/me.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
