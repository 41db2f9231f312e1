package services

import (
	"context"
	"fmt"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
)

type FormStore interface {
	CreateForm(ctx context.Context, form *models.Form) (*models.Form, error)
	UpdateForm(ctx context.Context, id string, form *models.Form) (*models.Form, error)
	DeleteForm(ctx context.Context, id string) error
}

type FormService struct {
	store FormStore
}

func NewFormService(store FormStore) *FormService {
	return &FormService{store: store}
}

// Save validates the form, then creates it or updates the existing record.
// It returns the stored form and a confirmation message.
func (s *FormService) Save(ctx context.Context, form *models.Form) (*models.Form, string, error) {
	if err := ValidateForm(form).Err(); err != nil {
		return nil, "", err
	}
	payload := payloadOf(form)
	if form.ID != "" {
		ctx = config.WithFormID(ctx, form.ID)
		saved, err := s.store.UpdateForm(ctx, form.ID, payload)
		if err != nil {
			return nil, "", fmt.Errorf("update %s: %w", form.Type, err)
		}
		config.WithContext(ctx).Info("form updated")
		return saved, form.Type.Label() + " updated!", nil
	}
	saved, err := s.store.CreateForm(ctx, payload)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", form.Type, err)
	}
	if saved != nil {
		config.WithContext(config.WithFormID(ctx, saved.ID)).Info("form created")
	}
	return saved, form.Type.Label() + " created!", nil
}

// NextState is the publish cycle: draft -> live -> closed -> live.
func NextState(s models.FormState) models.FormState {
	switch s {
	case models.FormStateLive:
		return models.FormStateClosed
	default:
		return models.FormStateLive
	}
}

// ToggleState validates the form and moves it to its next state, saving it
// first when it has never been stored.
func (s *FormService) ToggleState(ctx context.Context, form *models.Form) (*models.Form, error) {
	if err := ValidateForm(form).Err(); err != nil {
		return nil, err
	}
	payload := payloadOf(form)
	payload.State = NextState(form.State)

	var (
		updated *models.Form
		err     error
	)
	if form.ID != "" {
		updated, err = s.store.UpdateForm(config.WithFormID(ctx, form.ID), form.ID, payload)
	} else {
		updated, err = s.store.CreateForm(ctx, payload)
	}
	if err != nil {
		return nil, fmt.Errorf("update form state: %w", err)
	}
	if updated == nil {
		updated = payload
	}
	config.WithContext(config.WithFormID(ctx, updated.ID)).
		WithField("from", form.State).WithField("to", updated.State).Info("form state changed")
	return updated, nil
}

// Delete removes a stored form. Unsaved forms are simply discarded.
func (s *FormService) Delete(ctx context.Context, form *models.Form) (string, error) {
	if isEmptyForm(form) {
		label := models.FormType("").Label()
		if form != nil {
			label = form.Type.Label()
		}
		return "", NewInvalidError(label + " is empty.")
	}
	if form.ID == "" {
		return "Discarded " + string(form.Type) + ".", nil
	}
	if err := s.store.DeleteForm(config.WithFormID(ctx, form.ID), form.ID); err != nil {
		return "", fmt.Errorf("delete %s: %w", form.Type, err)
	}
	return form.Type.Label() + " deleted successfully.", nil
}

var stateMessages = map[models.FormState]string{
	models.FormStateDraft:  "saved as draft",
	models.FormStateLive:   "published",
	models.FormStateClosed: "closed",
}

// StateMessage confirms a state change, e.g. "Quiz published successfully!".
func StateMessage(form *models.Form) string {
	if form == nil {
		return ""
	}
	return fmt.Sprintf("%s %s successfully!", form.Type.Label(), stateMessages[form.State])
}
