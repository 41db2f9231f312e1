package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/inform/internal/models"
)

// NewForm returns the blank draft the editor starts from.
func NewForm() *models.Form {
	return &models.Form{State: models.FormStateDraft, Questions: []models.Question{}}
}

// FormEditor applies in-memory edits to a form before it is saved.
// Questions are addressed by Key(), which survives reordering.
type FormEditor struct {
	form  *models.Form
	newID func() string
}

func NewFormEditor(form *models.Form) *FormEditor {
	if form == nil {
		form = NewForm()
	}
	return &FormEditor{form: form, newID: uuid.NewString}
}

func (e *FormEditor) Form() *models.Form { return e.form }

// SetType switches the form type. A logic form always starts with a yes/no
// gating question; leaving the logic type removes it.
func (e *FormEditor) SetType(t models.FormType) {
	e.form.Type = t
	if t == models.FormTypeLogic {
		if e.form.LogicQuestion() == nil {
			lq := models.Question{
				TempID:          e.newID(),
				Type:            models.QuestionYesNo,
				IsLogicQuestion: true,
			}
			e.form.Questions = append([]models.Question{lq}, e.form.Questions...)
		}
		return
	}
	kept := e.form.Questions[:0:0]
	for _, q := range e.form.Questions {
		if !q.IsLogicQuestion {
			kept = append(kept, q)
		}
	}
	e.form.Questions = kept
}

func (e *FormEditor) SetTitle(s string)       { e.form.Title = s }
func (e *FormEditor) SetDescription(s string) { e.form.Description = s }
func (e *FormEditor) SetPublic(v bool)        { e.form.IsPublic = v }
func (e *FormEditor) SetAnonymousQuiz(v bool) { e.form.IsAnonymousQuiz = v }
func (e *FormEditor) SetShowResults(v bool)   { e.form.ShowResults = v }

func (e *FormEditor) SetExpiresAt(t *time.Time) { e.form.ExpiresAt = t }

// SetResponseLimit sets the cap on submissions; n <= 0 removes it.
func (e *FormEditor) SetResponseLimit(n int) {
	if n <= 0 {
		e.form.ResponseLimit = nil
		return
	}
	e.form.ResponseLimit = &n
}

// AddQuestion appends an untyped question worth one point and returns its key.
func (e *FormEditor) AddQuestion() string {
	q := models.Question{TempID: e.newID(), Choices: []string{}, Points: 1}
	e.form.Questions = append(e.form.Questions, q)
	return q.TempID
}

// QuestionPatch holds the fields to overwrite; nil fields are left alone.
type QuestionPatch struct {
	Type          *models.QuestionType
	QuestionText  *string
	Choices       *[]string
	Required      *bool
	CorrectAnswer *[]string
	Points        *float64
}

func (e *FormEditor) UpdateQuestion(key string, patch QuestionPatch) bool {
	i := e.index(key)
	if i < 0 {
		return false
	}
	q := &e.form.Questions[i]
	if patch.Type != nil {
		q.Type = *patch.Type
	}
	if patch.QuestionText != nil {
		q.QuestionText = *patch.QuestionText
	}
	if patch.Choices != nil {
		q.Choices = append([]string(nil), (*patch.Choices)...)
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	if patch.CorrectAnswer != nil {
		q.CorrectAnswer = append([]string(nil), (*patch.CorrectAnswer)...)
	}
	if patch.Points != nil {
		q.Points = *patch.Points
	}
	return true
}

func (e *FormEditor) MoveQuestionUp(key string) bool {
	i := e.index(key)
	if i <= 0 {
		return false
	}
	qs := e.form.Questions
	qs[i-1], qs[i] = qs[i], qs[i-1]
	return true
}

func (e *FormEditor) MoveQuestionDown(key string) bool {
	i := e.index(key)
	if i < 0 || i >= len(e.form.Questions)-1 {
		return false
	}
	qs := e.form.Questions
	qs[i], qs[i+1] = qs[i+1], qs[i]
	return true
}

// DeleteQuestion removes the question with key. The logic question stays.
func (e *FormEditor) DeleteQuestion(key string) bool {
	i := e.index(key)
	if i < 0 || e.form.Questions[i].IsLogicQuestion {
		return false
	}
	e.form.Questions = append(e.form.Questions[:i:i], e.form.Questions[i+1:]...)
	return true
}

// IsEmpty reports whether nothing has been entered yet.
func (e *FormEditor) IsEmpty() bool { return isEmptyForm(e.form) }

// Reset discards all edits.
func (e *FormEditor) Reset() { e.form = NewForm() }

// Payload returns a copy ready to send to the API, without temp ids.
func (e *FormEditor) Payload() *models.Form { return payloadOf(e.form) }

func (e *FormEditor) index(key string) int {
	if key == "" {
		return -1
	}
	for i, q := range e.form.Questions {
		if q.ID == key || q.TempID == key {
			return i
		}
	}
	return -1
}

func isEmptyForm(f *models.Form) bool {
	return f == nil || (f.Type == "" && f.Title == "" && f.Description == "" && len(f.Questions) == 0)
}

func payloadOf(f *models.Form) *models.Form {
	out := *f
	out.Questions = make([]models.Question, len(f.Questions))
	for i, q := range f.Questions {
		q.TempID = ""
		q.Choices = append([]string(nil), q.Choices...)
		q.CorrectAnswer = append([]string(nil), q.CorrectAnswer...)
		out.Questions[i] = q
	}
	return &out
}
