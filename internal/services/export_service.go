package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
)

type ExportStore interface {
	GetForm(ctx context.Context, id string) (*models.Form, error)
	ListResponses(ctx context.Context, formID string) ([]*models.Response, error)
	GetQuizResults(ctx context.Context, formID string) ([]models.LeaderboardEntry, error)
}

type ExportParams struct {
	FormID   string
	Location *time.Location
}

type ExportResult struct {
	Filename    string
	ContentType string
	Rows        int
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// ExportCSV fetches everything needed for a CSV download. The leaderboard is
// only requested for quizzes.
func (s *ExportService) ExportCSV(ctx context.Context, params ExportParams) (*ExportResult, error) {
	if params.FormID == "" {
		return nil, NewInvalidError("form id required")
	}
	ctx = config.WithFormID(ctx, params.FormID)
	form, err := s.store.GetForm(ctx, params.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	responses, err := s.store.ListResponses(ctx, params.FormID)
	if err != nil {
		return nil, err
	}
	var leaderboard []models.LeaderboardEntry
	if form.Type == models.FormTypeQuiz {
		leaderboard, err = s.store.GetQuizResults(ctx, params.FormID)
		if err != nil {
			return nil, fmt.Errorf("quiz results: %w", err)
		}
	}
	return BuildExport(form, responses, leaderboard, params.Location)
}

// BuildExport renders an export from data already in hand.
func BuildExport(form *models.Form, responses []*models.Response, leaderboard []models.LeaderboardEntry, loc *time.Location) (*ExportResult, error) {
	b, err := ExportResponsesCSV(form, responses, leaderboard, loc)
	if err != nil {
		return nil, err
	}
	rows := 0
	for _, r := range responses {
		if r != nil {
			rows++
		}
	}
	return &ExportResult{
		Filename:    ExportFilename(form),
		ContentType: "text/csv; charset=utf-8",
		Rows:        rows,
		Data:        b,
	}, nil
}
