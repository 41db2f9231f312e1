package api

import (
	"context"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
)

// Store is the remote API surface the service adapters build on.
// *Client implements it; tests substitute fakes.
type Store interface {
	ListUserForms(ctx context.Context) ([]*models.Form, error)
	ListPublicForms(ctx context.Context) ([]*models.Form, error)
	GetForm(ctx context.Context, id string) (*models.Form, error)
	GetFormByShareID(ctx context.Context, shareID string) (*models.Form, error)
	CreateForm(ctx context.Context, form *models.Form) (*models.Form, error)
	UpdateForm(ctx context.Context, id string, form *models.Form) (*models.Form, error)
	DeleteForm(ctx context.Context, id string) error

	ListResponses(ctx context.Context, formID string) ([]*models.Response, error)
	SubmitResponse(ctx context.Context, formID string, answers []models.Answer) (*services.SubmitResult, error)
	GetQuizResults(ctx context.Context, formID string) ([]models.LeaderboardEntry, error)

	SendShareLink(ctx context.Context, msg services.ShareEmail) error
}

var _ Store = (*Client)(nil)
