package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

// prompter asks one question; tests replace it with a scripted answerer.
type prompter interface {
	AskOne(p survey.Prompt, response any, opts ...survey.AskOpt) error
}

type surveyPrompter struct{}

func (surveyPrompter) AskOne(p survey.Prompt, response any, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// askAnswer prompts for one question and converts the reply to an answer.
// Skipped optional questions yield an empty answer.
func askAnswer(p prompter, q models.Question) (models.AnswerValue, error) {
	label := q.QuestionText
	if q.Required {
		label += " *"
	}
	var opts []survey.AskOpt
	if q.Required && q.Type != models.QuestionMultiChoice {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	typ := q.Type
	if q.IsLogicQuestion {
		typ = models.QuestionYesNo
	}
	switch typ {
	case models.QuestionYesNo:
		var yes bool
		if err := p.AskOne(&survey.Confirm{Message: label}, &yes); err != nil {
			return models.AnswerValue{}, err
		}
		if yes {
			return models.Scalar("Yes"), nil
		}
		return models.Scalar("No"), nil
	case models.QuestionSingleChoice:
		var choice string
		if err := p.AskOne(&survey.Select{Message: label, Options: q.Choices}, &choice, opts...); err != nil {
			return models.AnswerValue{}, err
		}
		return models.Scalar(choice), nil
	case models.QuestionMultiChoice:
		var picked []string
		if q.Required {
			opts = append(opts, survey.WithValidator(survey.MinItems(1)))
		}
		if err := p.AskOne(&survey.MultiSelect{Message: label, Options: q.Choices}, &picked, opts...); err != nil {
			return models.AnswerValue{}, err
		}
		return models.List(picked...), nil
	case models.QuestionLongText:
		var text string
		if err := p.AskOne(&survey.Multiline{Message: label}, &text, opts...); err != nil {
			return models.AnswerValue{}, err
		}
		return models.Scalar(strings.TrimSpace(text)), nil
	case models.QuestionRating:
		opts = append(opts, survey.WithValidator(numeric))
		return askScalar(p, label+" (number)", opts)
	case models.QuestionDate:
		opts = append(opts, survey.WithValidator(dateLike))
		return askScalar(p, label+" (YYYY-MM-DD)", opts)
	default:
		return askScalar(p, label, opts)
	}
}

func askScalar(p prompter, label string, opts []survey.AskOpt) (models.AnswerValue, error) {
	var text string
	if err := p.AskOne(&survey.Input{Message: label}, &text, opts...); err != nil {
		return models.AnswerValue{}, err
	}
	return models.Scalar(strings.TrimSpace(text)), nil
}

func numeric(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func dateLike(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := services.ParseAnswerDate(strings.TrimSpace(s)); !ok {
		return fmt.Errorf("%q is not a date", s)
	}
	return nil
}
