package processes

import (
	"context"
	"fmt"

	"didp/core/database"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service stores saved processes and chains and runs them.
type Service struct {
	db     *gorm.DB
	runner *Runner
	logger *zap.Logger
}

// NewService creates the service.
func NewService(db *gorm.DB, runner *Runner, logger *zap.Logger) *Service {
	return &Service{db: db, runner: runner, logger: logger}
}

func normalize(processType string, cfg ProcessConfig) (ProcessConfig, error) {
	if cfg.Version == 0 {
		cfg.Version = ConfigVersion
	}
	if err := checkConfig(processType, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func processView(p *SavedProcess) ProcessView {
	return ProcessView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ProcessType: p.ProcessType,
		Config:      p.Config.Data(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// List returns every saved process ordered by id.
func (s *Service) List(ctx context.Context) ([]ProcessView, error) {
	var rows []SavedProcess
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	out := make([]ProcessView, len(rows))
	for i := range rows {
		out[i] = processView(&rows[i])
	}
	return out, nil
}

func (s *Service) find(db *gorm.DB, id uint) (*SavedProcess, error) {
	var p SavedProcess
	if err := db.First(&p, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("process %d", id))
	}
	return &p, nil
}

// Get returns one saved process.
func (s *Service) Get(ctx context.Context, id uint) (*ProcessView, error) {
	p, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	v := processView(p)
	return &v, nil
}

// Create stores a process after checking its config fits its type.
func (s *Service) Create(ctx context.Context, in ProcessInput) (*ProcessView, error) {
	cfg, err := normalize(in.ProcessType, in.Config)
	if err != nil {
		return nil, err
	}
	p := &SavedProcess{
		Name:        in.Name,
		Description: in.Description,
		ProcessType: in.ProcessType,
		Config:      datatypes.NewJSONType(cfg),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, database.Translate(err, "process")
	}
	s.logger.Info("Process saved", zap.Uint("process_id", p.ID), zap.String("type", p.ProcessType))
	v := processView(p)
	return &v, nil
}

// Update changes the fields that are set.
func (s *Service) Update(ctx context.Context, id uint, in ProcessUpdate) (*ProcessView, error) {
	var out *SavedProcess
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = in.Description
		}
		if in.ProcessType != nil {
			p.ProcessType = *in.ProcessType
		}
		cfg := p.Config.Data()
		if in.Config != nil {
			cfg = *in.Config
		}
		if cfg, err = normalize(p.ProcessType, cfg); err != nil {
			return err
		}
		p.Config = datatypes.NewJSONType(cfg)
		out = p
		return tx.Save(p).Error
	})
	if err != nil {
		return nil, err
	}
	v := processView(out)
	return &v, nil
}

// Delete removes a saved process.
func (s *Service) Delete(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Delete(&SavedProcess{}, id)
	if tx.Error != nil {
		return fmt.Errorf("failed to delete process %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("process %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// Run executes a saved process as a one-step run.
func (s *Service) Run(ctx context.Context, id uint) (*RunReport, error) {
	p, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	rep := s.runner.runSteps(ctx, []step{{order: 0, processType: p.ProcessType, config: p.Config.Data()}})
	rep.ProcessID = p.ID
	s.logRun(&rep, zap.Uint("process_id", p.ID))
	return &rep, nil
}

func (s *Service) logRun(rep *RunReport, fields ...zap.Field) {
	fields = append(fields, zap.Int("steps", len(rep.Steps)), zap.Int64("duration_ms", rep.DurationMS))
	if rep.Succeeded {
		s.logger.Info("Process run finished", fields...)
		return
	}
	for _, st := range rep.Steps {
		if st.Status == StatusFailed {
			fields = append(fields, zap.Int("failed_step", st.Order), zap.String("error", st.Error))
		}
	}
	s.logger.Warn("Process run failed", fields...)
}

func (s *Service) findChain(db *gorm.DB, id uint) (*ProcessChain, error) {
	var c ProcessChain
	if err := db.First(&c, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("process chain %d", id))
	}
	return &c, nil
}

func (s *Service) steps(db *gorm.DB, chainID uint) ([]ChainStep, error) {
	var out []ChainStep
	if err := db.Where("chain_id = ?", chainID).Order("step_order").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load steps of chain %d: %w", chainID, err)
	}
	return out, nil
}

func (s *Service) chainView(db *gorm.DB, c *ProcessChain) (*ChainView, error) {
	steps, err := s.steps(db, c.ID)
	if err != nil {
		return nil, err
	}
	v := &ChainView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Steps:       make([]StepView, len(steps)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for i, st := range steps {
		v.Steps[i] = StepView{ID: st.ID, Order: st.Order, ProcessType: st.ProcessType, Config: st.Config.Data()}
	}
	return v, nil
}

// ListChains returns every chain with its steps.
func (s *Service) ListChains(ctx context.Context) ([]ChainView, error) {
	db := s.db.WithContext(ctx)
	var rows []ProcessChain
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list process chains: %w", err)
	}
	out := make([]ChainView, 0, len(rows))
	for i := range rows {
		v, err := s.chainView(db, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// GetChain returns one chain with its steps.
func (s *Service) GetChain(ctx context.Context, id uint) (*ChainView, error) {
	db := s.db.WithContext(ctx)
	c, err := s.findChain(db, id)
	if err != nil {
		return nil, err
	}
	return s.chainView(db, c)
}

func buildSteps(chainID uint, in []StepInput) ([]ChainStep, error) {
	out := make([]ChainStep, len(in))
	for i, st := range in {
		cfg, err := normalize(st.ProcessType, st.Config)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out[i] = ChainStep{ChainID: chainID, Order: i, ProcessType: st.ProcessType, Config: datatypes.NewJSONType(cfg)}
	}
	return out, nil
}

func writeSteps(tx *gorm.DB, chainID uint, in []StepInput) error {
	steps, err := buildSteps(chainID, in)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}
	if err := tx.Create(&steps).Error; err != nil {
		return fmt.Errorf("failed to write steps of chain %d: %w", chainID, err)
	}
	return nil
}

// CreateChain stores a chain; steps are ordered as given.
func (s *Service) CreateChain(ctx context.Context, in ChainInput) (*ChainView, error) {
	c := &ProcessChain{Name: in.Name, Description: in.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return database.Translate(err, "process chain")
		}
		return writeSteps(tx, c.ID, in.Steps)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Process chain saved", zap.Uint("chain_id", c.ID), zap.Int("steps", len(in.Steps)))
	return s.GetChain(ctx, c.ID)
}

// UpdateChain renames a chain and optionally replaces its steps.
func (s *Service) UpdateChain(ctx context.Context, id uint, in ChainUpdate) (*ChainView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.findChain(tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Description != nil {
			c.Description = in.Description
		}
		if in.Steps != nil {
			if err := tx.Where("chain_id = ?", id).Delete(&ChainStep{}).Error; err != nil {
				return fmt.Errorf("failed to clear steps of chain %d: %w", id, err)
			}
			if err := writeSteps(tx, id, in.Steps); err != nil {
				return err
			}
		}
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetChain(ctx, id)
}

// DeleteChain removes a chain and its steps.
func (s *Service) DeleteChain(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findChain(tx, id); err != nil {
			return err
		}
		if err := tx.Where("chain_id = ?", id).Delete(&ChainStep{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps of chain %d: %w", id, err)
		}
		if err := tx.Delete(&ProcessChain{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete process chain %d: %w", id, err)
		}
		return nil
	})
}

// RunChain runs every step in order and stops at the first failure. Step
// failures are reported, not returned; only a missing chain or a storage
// failure is an error.
func (s *Service) RunChain(ctx context.Context, id uint) (*RunReport, error) {
	db := s.db.WithContext(ctx)
	c, err := s.findChain(db, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.steps(db, c.ID)
	if err != nil {
		return nil, err
	}

	steps := make([]step, len(stored))
	for i, st := range stored {
		steps[i] = step{order: st.Order, processType: st.ProcessType, config: st.Config.Data()}
	}
	rep := s.runner.runSteps(ctx, steps)
	rep.ChainID = c.ID
	s.logRun(&rep, zap.Uint("chain_id", c.ID))
	return &rep, nil
}
