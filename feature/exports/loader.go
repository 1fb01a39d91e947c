package exports

import (
	"didp/core/storage"
	"didp/feature/matching"
	"didp/feature/tables"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new exports feature.
func NewFeature(tbl *tables.Service, m *matching.Service, archive *storage.Archive, logger *zap.Logger) *Feature {
	svc := NewService(tbl, m, archive, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the export service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "exports"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
