package matching

import (
	"didp/feature/tables"
	"didp/feature/valuemapping"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new matching feature.
func NewFeature(db *gorm.DB, tbl *tables.Service, vm *valuemapping.Service, logger *zap.Logger) *Feature {
	svc := NewService(db, tbl, vm, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

func (f *Feature) Service() *Service { return f.service }

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "matching"
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
