package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

type exportStoreAdapter struct {
	store Store
}

func newExportStoreAdapter(store Store) services.ExportStore {
	return &exportStoreAdapter{store: store}
}

func (a *exportStoreAdapter) GetForm(ctx context.Context, id string) (*models.Form, error) {
	f, err := a.store.GetForm(ctx, id)
	return f, toServiceError(err)
}

func (a *exportStoreAdapter) ListResponses(ctx context.Context, formID string) ([]*models.Response, error) {
	rs, err := a.store.ListResponses(ctx, formID)
	return rs, toServiceError(err)
}

// GetQuizResults treats a missing results endpoint as an empty leaderboard;
// the export then leaves the quiz columns blank.
func (a *exportStoreAdapter) GetQuizResults(ctx context.Context, formID string) ([]models.LeaderboardEntry, error) {
	lb, err := a.store.GetQuizResults(ctx, formID)
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Status == http.StatusNotFound {
		config.WithContext(ctx).WithField("form_id", formID).Debug("no quiz results available")
		return nil, nil
	}
	return lb, toServiceError(err)
}

var _ services.ExportStore = (*exportStoreAdapter)(nil)
