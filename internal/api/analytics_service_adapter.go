package api

import (
	"context"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

type analyticsStoreAdapter struct {
	store Store
}

func newAnalyticsStoreAdapter(store Store) services.AnalyticsStore {
	return &analyticsStoreAdapter{store: store}
}

func (a *analyticsStoreAdapter) GetForm(ctx context.Context, id string) (*models.Form, error) {
	f, err := a.store.GetForm(ctx, id)
	return f, toServiceError(err)
}

func (a *analyticsStoreAdapter) ListResponses(ctx context.Context, formID string) ([]*models.Response, error) {
	rs, err := a.store.ListResponses(ctx, formID)
	return rs, toServiceError(err)
}

var _ services.AnalyticsStore = (*analyticsStoreAdapter)(nil)
