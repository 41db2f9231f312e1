package services

import (
	"context"
	"sort"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
)

type AnalyticsStore interface {
	GetForm(ctx context.Context, id string) (*models.Form, error)
	ListResponses(ctx context.Context, formID string) ([]*models.Response, error)
}

type AnalyticsService struct {
	store AnalyticsStore
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsReport struct {
	Summary    FormSummary           `json:"summary"`
	Timeseries []AnalyticsTimeseries `json:"timeseries"`
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Report fetches the form and its responses and summarizes them.
func (s *AnalyticsService) Report(ctx context.Context, formID string) (*AnalyticsReport, error) {
	if formID == "" {
		return nil, NewInvalidError("form id required")
	}
	ctx = config.WithFormID(ctx, formID)
	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	responses, err := s.store.ListResponses(ctx, formID)
	if err != nil {
		return nil, err
	}
	config.WithContext(ctx).WithField("responses", len(responses)).Debug("building analytics report")
	return &AnalyticsReport{
		Summary:    SummarizeForm(form, responses),
		Timeseries: buildTimeseries(responses),
	}, nil
}

// buildTimeseries counts submissions per UTC day, oldest first.
func buildTimeseries(responses []*models.Response) []AnalyticsTimeseries {
	countsByDay := map[string]int{}
	var days []string
	for _, r := range responses {
		if r == nil || r.SubmittedAt.IsZero() {
			continue
		}
		day := r.SubmittedAt.UTC().Format("2006-01-02")
		if countsByDay[day] == 0 {
			days = append(days, day)
		}
		countsByDay[day]++
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: countsByDay[d]})
	}
	return out
}
