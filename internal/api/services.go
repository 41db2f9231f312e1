package api

import "github.com/soaringjerry/inform/internal/services"

// Services bundles the domain services wired to a remote store.
type Services struct {
	Forms     *services.FormService
	Responses *services.ResponseService
	Analytics *services.AnalyticsService
	Export    *services.ExportService
}

func NewServices(store Store) *Services {
	return &Services{
		Forms:     services.NewFormService(newFormStoreAdapter(store)),
		Responses: services.NewResponseService(newResponseStoreAdapter(store)),
		Analytics: services.NewAnalyticsService(newAnalyticsStoreAdapter(store)),
		Export:    services.NewExportService(newExportStoreAdapter(store)),
	}
}
