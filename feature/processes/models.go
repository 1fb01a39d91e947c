package processes

import (
	"time"

	"gorm.io/datatypes"
)

// ConfigVersion is the current ProcessConfig layout.
const ConfigVersion = 1

// Process types.
const (
	TypeMatch  = "match"
	TypeSQL    = "sql"
	TypeScript = "script"
	TypeExport = "export"
)

// ProcessConfig holds what a process needs to run. Only the fields of its
// process type are read.
type ProcessConfig struct {
	Version       int               `json:"version"`
	TableKeys     []string          `json:"table_keys,omitempty"`
	MatchConfigID *uint             `json:"match_config_id,omitempty"`
	Query         string            `json:"query,omitempty"`
	Script        string            `json:"script,omitempty"`
	Options       map[string]string `json:"options,omitempty"`
}

// SavedProcess is a named, reusable operation.
type SavedProcess struct {
	ID          uint                              `gorm:"primaryKey"`
	Name        string                            `gorm:"size:255;not null"`
	Description *string                           `gorm:"type:text"`
	ProcessType string                            `gorm:"size:32;not null"`
	Config      datatypes.JSONType[ProcessConfig] `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SavedProcess) TableName() string { return "saved_processes" }

// ProcessChain is an ordered list of steps run one after another.
type ProcessChain struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProcessChain) TableName() string { return "process_chains" }

// ChainStep is one step of a chain.
type ChainStep struct {
	ID          uint                              `gorm:"primaryKey"`
	ChainID     uint                              `gorm:"index;not null"`
	Order       int                               `gorm:"column:step_order;not null"`
	ProcessType string                            `gorm:"size:32;not null"`
	Config      datatypes.JSONType[ProcessConfig] `gorm:"not null"`
}

func (ChainStep) TableName() string { return "process_chain_steps" }

// Models lists the schema owned by this feature.
func Models() []any {
	return []any{&SavedProcess{}, &ProcessChain{}, &ChainStep{}}
}

// ProcessInput creates a saved process.
type ProcessInput struct {
	Name        string        `json:"name" validate:"required,max=255"`
	Description *string       `json:"description"`
	ProcessType string        `json:"process_type" validate:"required,oneof=match sql script export"`
	Config      ProcessConfig `json:"config"`
}

// ProcessUpdate changes the fields that are set.
type ProcessUpdate struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description"`
	ProcessType *string        `json:"process_type" validate:"omitempty,oneof=match sql script export"`
	Config      *ProcessConfig `json:"config"`
}

// StepInput describes one chain step.
type StepInput struct {
	ProcessType string        `json:"process_type" validate:"required,oneof=match sql script export"`
	Config      ProcessConfig `json:"config"`
}

// ChainInput creates a chain.
type ChainInput struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Description *string     `json:"description"`
	Steps       []StepInput `json:"steps" validate:"dive"`
}

// ChainUpdate renames a chain and, when Steps is non-nil, replaces its steps.
type ChainUpdate struct {
	Name        *string     `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description"`
	Steps       []StepInput `json:"steps" validate:"omitempty,dive"`
}

// ProcessView is the API shape of a saved process.
type ProcessView struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	ProcessType string        `json:"process_type"`
	Config      ProcessConfig `json:"config"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// StepView is the API shape of a chain step.
type StepView struct {
	ID          uint          `json:"id"`
	Order       int           `json:"order"`
	ProcessType string        `json:"process_type"`
	Config      ProcessConfig `json:"config"`
}

// ChainView is the API shape of a chain.
type ChainView struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Steps       []StepView `json:"steps"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Step statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// StepReport is the outcome of one step.
type StepReport struct {
	Order       int    `json:"order"`
	ProcessType string `json:"process_type"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Output      any    `json:"output,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// RunReport is the outcome of a chain or single process run.
type RunReport struct {
	ChainID    uint         `json:"chain_id,omitempty"`
	ProcessID  uint         `json:"process_id,omitempty"`
	Succeeded  bool         `json:"succeeded"`
	Steps      []StepReport `json:"steps"`
	DurationMS int64        `json:"duration_ms"`
}
