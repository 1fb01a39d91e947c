package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"didp/core/database"
	"didp/core/match"
	"didp/feature/tables"
	"didp/feature/valuemapping"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultResultLimit = 10
	MaxResultLimit     = 100
)

// Service manages match configurations, runs them and keeps their results.
type Service struct {
	db       *gorm.DB
	tables   *tables.Service
	mappings match.MappingSource
	logger   *zap.Logger
}

// NewService creates the service. Configurations are deleted together with
// either of their tables and rule references are cleared when a value
// mapping is deleted.
func NewService(db *gorm.DB, tbl *tables.Service, vm *valuemapping.Service, logger *zap.Logger) *Service {
	s := &Service{db: db, tables: tbl, mappings: vm, logger: logger}
	tbl.OnDelete(s.deleteForTable)
	vm.OnDelete(s.clearMapping)
	return s
}

func (s *Service) deleteForTable(tx *gorm.DB, tableID uint) error {
	var ids []uint
	err := tx.Model(&MatchConfig{}).
		Where("source_table_id = ? OR target_table_id = ?", tableID, tableID).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to find match configs of table %d: %w", tableID, err)
	}
	for _, id := range ids {
		if err := deleteConfig(tx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) clearMapping(tx *gorm.DB, mappingID uint) error {
	err := tx.Model(&MatchColumn{}).
		Where("value_mapping_id = ?", mappingID).
		Update("value_mapping_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear value mapping %d from rules: %w", mappingID, err)
	}
	return nil
}

func deleteConfig(tx *gorm.DB, id uint) error {
	if err := tx.Where("config_id = ?", id).Delete(&MatchColumn{}).Error; err != nil {
		return fmt.Errorf("failed to delete rules of config %d: %w", id, err)
	}
	if err := tx.Where("config_id = ?", id).Delete(&MatchResult{}).Error; err != nil {
		return fmt.Errorf("failed to delete results of config %d: %w", id, err)
	}
	if err := tx.Delete(&MatchConfig{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete config %d: %w", id, err)
	}
	return nil
}

// ListConfigs returns every configuration ordered by id.
func (s *Service) ListConfigs(ctx context.Context) ([]ConfigView, error) {
	var cfgs []MatchConfig
	if err := s.db.WithContext(ctx).Order("id").Find(&cfgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list match configs: %w", err)
	}
	out := make([]ConfigView, 0, len(cfgs))
	for i := range cfgs {
		v, err := s.configView(ctx, &cfgs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// GetConfig returns one configuration with its rules.
func (s *Service) GetConfig(ctx context.Context, id uint) (*ConfigView, error) {
	cfg, err := s.findConfig(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return s.configView(ctx, cfg)
}

// CreateConfig resolves both table keys and stores the configuration.
func (s *Service) CreateConfig(ctx context.Context, in ConfigInput) (*ConfigView, error) {
	src, err := s.tables.Lookup(ctx, in.SourceTableKey)
	if err != nil {
		return nil, err
	}
	tgt, err := s.tables.Lookup(ctx, in.TargetTableKey)
	if err != nil {
		return nil, err
	}

	cfg := &MatchConfig{Name: in.Name, SourceTableID: src.ID, TargetTableID: tgt.ID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cfg).Error; err != nil {
			return database.Translate(err, "match config")
		}
		return writeColumns(tx, cfg.ID, in.MatchColumns)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Match config created",
		zap.Uint("config_id", cfg.ID),
		zap.String("source", src.Key),
		zap.String("target", tgt.Key),
		zap.Int("rules", len(in.MatchColumns)))
	return s.GetConfig(ctx, cfg.ID)
}

// UpdateConfig renames and optionally replaces the rules.
func (s *Service) UpdateConfig(ctx context.Context, id uint, in ConfigUpdate) (*ConfigView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := s.findConfig(tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			cfg.Name = *in.Name
		}
		if in.MatchColumns != nil {
			if err := tx.Where("config_id = ?", id).Delete(&MatchColumn{}).Error; err != nil {
				return err
			}
			if err := writeColumns(tx, id, in.MatchColumns); err != nil {
				return err
			}
		}
		return tx.Save(cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetConfig(ctx, id)
}

// DeleteConfig removes a configuration with its rules and results.
func (s *Service) DeleteConfig(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findConfig(tx, id); err != nil {
			return err
		}
		return deleteConfig(tx, id)
	})
}

func writeColumns(tx *gorm.DB, configID uint, in []ColumnInput) error {
	if len(in) == 0 {
		return nil
	}
	cols := make([]MatchColumn, len(in))
	for i, c := range in {
		cols[i] = MatchColumn{
			ConfigID:       configID,
			Position:       i,
			SourceColumn:   c.SourceColumn,
			TargetColumn:   c.TargetColumn,
			ValueMappingID: c.ValueMappingID,
			CaseSensitive:  c.CaseSensitive,
		}
	}
	if err := tx.Create(&cols).Error; err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}
	return nil
}

func (s *Service) findConfig(db *gorm.DB, id uint) (*MatchConfig, error) {
	var cfg MatchConfig
	if err := db.First(&cfg, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("match config %d", id))
	}
	return &cfg, nil
}

func (s *Service) columns(db *gorm.DB, configID uint) ([]MatchColumn, error) {
	var cols []MatchColumn
	if err := db.Where("config_id = ?", configID).Order("position").Order("id").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to load rules of config %d: %w", configID, err)
	}
	return cols, nil
}

func (s *Service) configView(ctx context.Context, cfg *MatchConfig) (*ConfigView, error) {
	cols, err := s.columns(s.db.WithContext(ctx), cfg.ID)
	if err != nil {
		return nil, err
	}
	keys, err := s.tables.KeysByID(ctx, cfg.SourceTableID, cfg.TargetTableID)
	if err != nil {
		return nil, err
	}
	v := &ConfigView{
		ID:             cfg.ID,
		Name:           cfg.Name,
		SourceTableKey: keys[cfg.SourceTableID],
		TargetTableKey: keys[cfg.TargetTableID],
		MatchColumns:   make([]ColumnView, len(cols)),
		CreatedAt:      cfg.CreatedAt,
	}
	for i, c := range cols {
		v.MatchColumns[i] = ColumnView{
			ID:             c.ID,
			SourceColumn:   c.SourceColumn,
			TargetColumn:   c.TargetColumn,
			ValueMappingID: c.ValueMappingID,
			CaseSensitive:  c.CaseSensitive,
		}
	}
	return v, nil
}

// Execute runs configuration configID and stores exactly one result. Nothing
// is stored when the configuration or either table is missing or the store
// fails.
func (s *Service) Execute(ctx context.Context, configID uint) (*ResultView, error) {
	start := time.Now()
	db := s.db.WithContext(ctx)

	cfg, err := s.findConfig(db, configID)
	if err != nil {
		return nil, err
	}
	cols, err := s.columns(db, configID)
	if err != nil {
		return nil, err
	}

	job := match.Job{
		SourceTableID: cfg.SourceTableID,
		TargetTableID: cfg.TargetTableID,
		Rules:         make([]match.Rule, len(cols)),
	}
	for i, c := range cols {
		job.Rules[i] = c.Rule()
	}

	outcome, err := match.Execute(ctx, job, s.tables, s.mappings)
	if err != nil {
		s.logger.Error("Match execution failed", zap.Uint("config_id", configID), zap.Error(err))
		return nil, err
	}

	matched, unmatchedSource, unmatchedTarget := outcome.Counts()
	res := &MatchResult{
		ConfigID:             configID,
		MatchedCount:         matched,
		UnmatchedSourceCount: unmatchedSource,
		UnmatchedTargetCount: unmatchedTarget,
		PayloadVersion:       PayloadVersion,
		MatchedPairs:         datatypes.NewJSONSlice(outcome.Pairs),
		UnmatchedSource:      datatypes.NewJSONSlice(outcome.UnmatchedSource),
		UnmatchedTarget:      datatypes.NewJSONSlice(outcome.UnmatchedTarget),
	}
	if err := db.Create(res).Error; err != nil {
		s.logger.Error("Failed to store match result", zap.Uint("config_id", configID), zap.Error(err))
		return nil, fmt.Errorf("failed to store match result: %w", err)
	}

	s.logger.Info("Match executed",
		zap.Uint("config_id", configID),
		zap.Uint("result_id", res.ID),
		zap.Int("matched", matched),
		zap.Int("unmatched_source", unmatchedSource),
		zap.Int("unmatched_target", unmatchedTarget),
		zap.Duration("duration", time.Since(start)))

	return s.resultView(ctx, res, cfg)
}

// ListResults returns results newest first, optionally for one config.
func (s *Service) ListResults(ctx context.Context, configID uint, limit int) ([]ResultView, error) {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	if limit > MaxResultLimit {
		limit = MaxResultLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit)
	if configID != 0 {
		q = q.Where("config_id = ?", configID)
	}
	var rows []MatchResult
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}

	out := make([]ResultView, 0, len(rows))
	for i := range rows {
		v, err := s.resultView(ctx, &rows[i], nil)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// GetResult returns one stored result.
func (s *Service) GetResult(ctx context.Context, id uint) (*ResultView, error) {
	var res MatchResult
	if err := s.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("match result %d", id))
	}
	return s.resultView(ctx, &res, nil)
}

// DeleteResult removes one stored result.
func (s *Service) DeleteResult(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Delete(&MatchResult{}, id)
	if tx.Error != nil {
		return fmt.Errorf("failed to delete match result %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("match result %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *Service) resultView(ctx context.Context, res *MatchResult, cfg *MatchConfig) (*ResultView, error) {
	if cfg == nil {
		var found MatchConfig
		err := s.db.WithContext(ctx).First(&found, res.ConfigID).Error
		if err == nil {
			cfg = &found
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load config of result %d: %w", res.ID, err)
		}
	}

	v := &ResultView{
		ID:                   res.ID,
		ConfigID:             res.ConfigID,
		MatchedCount:         res.MatchedCount,
		UnmatchedSourceCount: res.UnmatchedSourceCount,
		UnmatchedTargetCount: res.UnmatchedTargetCount,
		PayloadVersion:       res.PayloadVersion,
		MatchedPairs:         nonNil([]match.Pair(res.MatchedPairs)),
		UnmatchedSource:      nonNil([]match.Unmatched(res.UnmatchedSource)),
		UnmatchedTarget:      nonNil([]match.Unmatched(res.UnmatchedTarget)),
		CreatedAt:            res.CreatedAt,
	}
	if cfg != nil {
		keys, err := s.tables.KeysByID(ctx, cfg.SourceTableID, cfg.TargetTableID)
		if err != nil {
			return nil, err
		}
		v.ConfigName = cfg.Name
		v.SourceTableKey = keys[cfg.SourceTableID]
		v.TargetTableKey = keys[cfg.TargetTableID]
	}
	return v, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
