package matching

import (
	"time"

	"didp/core/match"

	"gorm.io/datatypes"
)

// PayloadVersion is written with every result so stored collections can be
// migrated when their shape changes.
const PayloadVersion = 1

// MatchConfig pairs a source and a target table with ordered rules.
type MatchConfig struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	SourceTableID uint   `gorm:"index;not null"`
	TargetTableID uint   `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MatchConfig) TableName() string { return "match_configs" }

// MatchColumn is one rule of a configuration.
type MatchColumn struct {
	ID             uint   `gorm:"primaryKey"`
	ConfigID       uint   `gorm:"index;not null"`
	Position       int    `gorm:"not null"`
	SourceColumn   string `gorm:"size:255;not null"`
	TargetColumn   string `gorm:"size:255;not null"`
	ValueMappingID *uint  `gorm:"index"`
	CaseSensitive  bool   `gorm:"not null"`
}

func (MatchColumn) TableName() string { return "match_columns" }

// Rule converts the stored column into an engine rule.
func (c MatchColumn) Rule() match.Rule {
	return match.Rule{
		SourceColumn:  c.SourceColumn,
		TargetColumn:  c.TargetColumn,
		MappingID:     c.ValueMappingID,
		CaseSensitive: c.CaseSensitive,
	}
}

// MatchResult is the immutable snapshot of one execution.
type MatchResult struct {
	ID                   uint                                 `gorm:"primaryKey"`
	ConfigID             uint                                 `gorm:"index;not null"`
	MatchedCount         int                                  `gorm:"not null"`
	UnmatchedSourceCount int                                  `gorm:"not null"`
	UnmatchedTargetCount int                                  `gorm:"not null"`
	PayloadVersion       int                                  `gorm:"not null"`
	MatchedPairs         datatypes.JSONSlice[match.Pair]      `gorm:"not null"`
	UnmatchedSource      datatypes.JSONSlice[match.Unmatched] `gorm:"not null"`
	UnmatchedTarget      datatypes.JSONSlice[match.Unmatched] `gorm:"not null"`
	CreatedAt            time.Time                            `gorm:"index"`
}

func (MatchResult) TableName() string { return "match_results" }

// Models lists the schema owned by this feature.
func Models() []any {
	return []any{&MatchConfig{}, &MatchColumn{}, &MatchResult{}}
}

// ColumnInput describes one rule.
type ColumnInput struct {
	SourceColumn   string `json:"source_column" validate:"required"`
	TargetColumn   string `json:"target_column" validate:"required"`
	ValueMappingID *uint  `json:"value_mapping_id"`
	CaseSensitive  bool   `json:"case_sensitive"`
}

// ConfigInput creates a configuration.
type ConfigInput struct {
	Name           string        `json:"name" validate:"required,max=255"`
	SourceTableKey string        `json:"source_table_key" validate:"required"`
	TargetTableKey string        `json:"target_table_key" validate:"required"`
	MatchColumns   []ColumnInput `json:"match_columns" validate:"dive"`
}

// ConfigUpdate renames a configuration and, when MatchColumns is non-nil,
// replaces its rules wholesale.
type ConfigUpdate struct {
	Name         *string       `json:"name" validate:"omitempty,min=1,max=255"`
	MatchColumns []ColumnInput `json:"match_columns" validate:"omitempty,dive"`
}

// ExecuteInput requests one execution.
type ExecuteInput struct {
	ConfigID uint `json:"config_id" validate:"required"`
}

// ColumnView is the API shape of a rule.
type ColumnView struct {
	ID             uint   `json:"id"`
	SourceColumn   string `json:"source_column"`
	TargetColumn   string `json:"target_column"`
	ValueMappingID *uint  `json:"value_mapping_id"`
	CaseSensitive  bool   `json:"case_sensitive"`
}

// ConfigView is the API shape of a configuration.
type ConfigView struct {
	ID             uint         `json:"id"`
	Name           string       `json:"name"`
	SourceTableKey string       `json:"source_table_key"`
	TargetTableKey string       `json:"target_table_key"`
	MatchColumns   []ColumnView `json:"match_columns"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ResultView is the API shape of a result.
type ResultView struct {
	ID                   uint              `json:"id"`
	ConfigID             uint              `json:"config_id"`
	ConfigName           string            `json:"config_name"`
	SourceTableKey       string            `json:"source_table_key"`
	TargetTableKey       string            `json:"target_table_key"`
	MatchedCount         int               `json:"matched_count"`
	UnmatchedSourceCount int               `json:"unmatched_source_count"`
	UnmatchedTargetCount int               `json:"unmatched_target_count"`
	PayloadVersion       int               `json:"payload_version"`
	MatchedPairs         []match.Pair      `json:"matched_pairs"`
	UnmatchedSource      []match.Unmatched `json:"unmatched_source"`
	UnmatchedTarget      []match.Unmatched `json:"unmatched_target"`
	CreatedAt            time.Time         `json:"created_at"`
}
