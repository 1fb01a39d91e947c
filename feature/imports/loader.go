package imports

import (
	"didp/core/storage"
	"didp/feature/tables"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new imports feature.
func NewFeature(tbl *tables.Service, archive *storage.Archive, cfg Config, logger *zap.Logger) *Feature {
	svc := NewService(tbl, archive, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the import service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "imports"
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
