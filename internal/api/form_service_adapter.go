package api

import (
	"context"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

type formStoreAdapter struct {
	store Store
}

func newFormStoreAdapter(store Store) services.FormStore {
	return &formStoreAdapter{store: store}
}

func (a *formStoreAdapter) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	f, err := a.store.CreateForm(ctx, form)
	return f, toServiceError(err)
}

func (a *formStoreAdapter) UpdateForm(ctx context.Context, id string, form *models.Form) (*models.Form, error) {
	f, err := a.store.UpdateForm(ctx, id, form)
	return f, toServiceError(err)
}

func (a *formStoreAdapter) DeleteForm(ctx context.Context, id string) error {
	return toServiceError(a.store.DeleteForm(ctx, id))
}

var _ services.FormStore = (*formStoreAdapter)(nil)
