package api

import (
	"context"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

type responseStoreAdapter struct {
	store Store
}

func newResponseStoreAdapter(store Store) services.ResponseStore {
	return &responseStoreAdapter{store: store}
}

func (a *responseStoreAdapter) GetFormByShareID(ctx context.Context, shareID string) (*models.Form, error) {
	f, err := a.store.GetFormByShareID(ctx, shareID)
	return f, toServiceError(err)
}

func (a *responseStoreAdapter) SubmitResponse(ctx context.Context, formID string, answers []models.Answer) (*services.SubmitResult, error) {
	res, err := a.store.SubmitResponse(ctx, formID, answers)
	return res, toServiceError(err)
}

var _ services.ResponseStore = (*responseStoreAdapter)(nil)
