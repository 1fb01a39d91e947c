package valuemapping

import (
	"context"
	"fmt"
	"sync"

	"didp/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteHook runs inside the delete transaction of a mapping.
type DeleteHook func(tx *gorm.DB, mappingID uint) error

// Service manages value mappings.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.RWMutex
	hooks []DeleteHook
}

// NewService creates a new value mapping service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// OnDelete registers a hook run before a mapping is removed.
func (s *Service) OnDelete(h DeleteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *Service) List(ctx context.Context) ([]ValueMapping, error) {
	var out []ValueMapping
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list value mappings: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*ValueMapping, error) {
	var m ValueMapping
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("value mapping %d", id))
	}
	if m.Mappings == nil {
		m.Mappings = map[string]string{}
	}
	return &m, nil
}

// LoadMapping implements match.MappingSource.
func (s *Service) LoadMapping(ctx context.Context, id uint) (map[string]string, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Mappings, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*ValueMapping, error) {
	m := &ValueMapping{Name: in.Name, Description: in.Description, Mappings: in.Mappings}
	if m.Mappings == nil {
		m.Mappings = map[string]string{}
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, database.Translate(err, "value mapping")
	}
	s.logger.Info("Value mapping created", zap.Uint("id", m.ID), zap.Int("entries", len(m.Mappings)))
	return m, nil
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*ValueMapping, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Description != nil {
		m.Description = in.Description
	}
	if in.Mappings != nil {
		m.Mappings = in.Mappings
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("value mapping %d", id))
	}
	return m, nil
}

// Delete removes the mapping after running the registered hooks.
func (s *Service) Delete(ctx context.Context, id uint) error {
	s.mu.RLock()
	hooks := append([]DeleteHook(nil), s.hooks...)
	s.mu.RUnlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ValueMapping
		if err := tx.First(&m, id).Error; err != nil {
			return database.Translate(err, fmt.Sprintf("value mapping %d", id))
		}
		for _, h := range hooks {
			if err := h(tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(&m).Error
	})
}

// Apply translates value with mapping id.
func (s *Service) Apply(ctx context.Context, id uint, value string) (*Translation, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Translation{Original: value, Transformed: m.Apply(value)}, nil
}

// Reverse finds the original of a transformed value with mapping id.
func (s *Service) Reverse(ctx context.Context, id uint, value string) (*Translation, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Translation{Original: m.Reverse(value), Transformed: value}, nil
}
