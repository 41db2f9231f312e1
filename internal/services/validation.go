package services

import (
	"fmt"
	"strings"

	"github.com/soaringjerry/inform/internal/models"
)

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Err returns a *ValidationError when the result is invalid.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: append([]string(nil), r.Errors...)}
}

// ValidateForm checks a form before publishing. Messages come out in a fixed
// order: form-level fields, then each question, then type-specific structure.
// A nil form is treated as an empty one.
func ValidateForm(form *models.Form) ValidationResult {
	if form == nil {
		form = &models.Form{}
	}
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if form.Type == "" {
		add("Type is required.")
	}
	if isBlank(form.Title) {
		add("Title is required.")
	}
	if isBlank(form.Description) {
		add("Description is required.")
	}
	if len(form.Questions) == 0 {
		add("%s has no questions.", form.Type.Label())
	}

	for i, q := range form.Questions {
		n := i + 1
		if q.Type == "" {
			add("Question %d has no type.", n)
		}
		if isBlank(q.QuestionText) {
			add("Question %d title is required.", n)
		}
		if q.Type.IsChoice() && !q.IsLogicQuestion {
			if len(q.Choices) < 2 {
				add("Question %d must have at least 2 choices.", n)
			} else if k := firstBlank(q.Choices); k > 0 {
				add("Question %d has an empty choice at position %d.", n, k)
			}
		}
		if form.Type == models.FormTypeQuiz && !q.IsLogicQuestion {
			errs = append(errs, quizAnswerErrors(n, q)...)
		}
	}

	if form.Type == models.FormTypeLogic {
		logic := 0
		for _, q := range form.Questions {
			if q.IsLogicQuestion {
				logic++
			}
		}
		if logic == 0 {
			add("Logic form must have a logic question.")
		}
		if len(form.Questions)-logic < 1 {
			add("Logic form must have at least one other question besides the logic question.")
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func quizAnswerErrors(n int, q models.Question) []string {
	var errs []string
	switch {
	case q.Type.IsText():
		if len(q.CorrectAnswer) == 0 {
			errs = append(errs, fmt.Sprintf("Question %d (%s) must have at least one correct answer.", n, q.Type))
		} else if k := firstBlank(q.CorrectAnswer); k > 0 {
			errs = append(errs, fmt.Sprintf("Question %d (%s) has an empty correct answer at position %d.", n, q.Type, k))
		}
	case q.Type == models.QuestionSingleChoice:
		if len(q.CorrectAnswer) != 1 {
			errs = append(errs, fmt.Sprintf("Question %d (single-choice) must have exactly one correct answer.", n))
		} else if !contains(q.Choices, q.CorrectAnswer[0]) {
			errs = append(errs, fmt.Sprintf("Question %d (single-choice) correct answer must be one of the choices.", n))
		}
	case q.Type == models.QuestionMultiChoice:
		if len(q.CorrectAnswer) == 0 {
			errs = append(errs, fmt.Sprintf("Question %d (multi-choice) must have at least one correct answer.", n))
			break
		}
		var invalid []string
		for _, a := range q.CorrectAnswer {
			if !contains(q.Choices, a) {
				invalid = append(invalid, a)
			}
		}
		if len(invalid) > 0 {
			errs = append(errs, fmt.Sprintf("Question %d (multi-choice) has correct answers that are not in the choices: %s.", n, strings.Join(invalid, ", ")))
		}
	}
	return errs
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// firstBlank returns the 1-based position of the first blank value, or 0.
func firstBlank(values []string) int {
	for i, v := range values {
		if isBlank(v) {
			return i + 1
		}
	}
	return 0
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
