package processes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"didp/core/server"
	"didp/feature/matching"
	"didp/feature/scripts"
	"didp/feature/sqlexec"
	"didp/feature/tables"
)

// Matcher runs a saved match configuration.
type Matcher interface {
	Execute(ctx context.Context, configID uint) (*matching.ResultView, error)
}

// QueryRunner runs ad-hoc SQL.
type QueryRunner interface {
	Execute(ctx context.Context, in sqlexec.ExecuteInput) (*sqlexec.Result, error)
}

// ScriptRunner runs a script.
type ScriptRunner interface {
	Execute(ctx context.Context, in scripts.ExecuteInput) (*scripts.Result, error)
}

// TableLookup resolves a table key.
type TableLookup interface {
	Lookup(ctx context.Context, key string) (*tables.Table, error)
}

// Runner dispatches a step to the executor of its process type.
type Runner struct {
	Matcher Matcher
	SQL     QueryRunner
	Scripts ScriptRunner
	Tables  TableLookup
}

// errStepFailed marks an executor that ran but reported a failure of its own.
var errStepFailed = errors.New("step failed")

func checkConfig(processType string, cfg ProcessConfig) error {
	if cfg.Version > ConfigVersion {
		return server.Invalid("unsupported config version %d", cfg.Version)
	}
	switch processType {
	case TypeMatch:
		if cfg.MatchConfigID == nil || *cfg.MatchConfigID == 0 {
			return server.Invalid("match process needs match_config_id")
		}
	case TypeSQL:
		if cfg.Query == "" {
			return server.Invalid("sql process needs a query")
		}
	case TypeScript:
		if cfg.Script == "" {
			return server.Invalid("script process needs a script")
		}
	case TypeExport:
		if len(cfg.TableKeys) == 0 {
			return server.Invalid("export process needs table_keys")
		}
	default:
		return server.Invalid("unknown process type %q", processType)
	}
	return nil
}

// Run executes one step and returns a short summary of what it produced.
func (r *Runner) Run(ctx context.Context, processType string, cfg ProcessConfig) (any, error) {
	if err := checkConfig(processType, cfg); err != nil {
		return nil, err
	}
	switch processType {
	case TypeMatch:
		res, err := r.Matcher.Execute(ctx, *cfg.MatchConfigID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"result_id":              res.ID,
			"matched_count":          res.MatchedCount,
			"unmatched_source_count": res.UnmatchedSourceCount,
			"unmatched_target_count": res.UnmatchedTargetCount,
		}, nil

	case TypeSQL:
		res, err := r.SQL.Execute(ctx, sqlexec.ExecuteInput{Query: cfg.Query, TableKeys: cfg.TableKeys})
		if err != nil {
			return nil, err
		}
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s", errStepFailed, res.Error)
		}
		return map[string]any{"columns": res.Columns, "row_count": res.RowCount}, nil

	case TypeScript:
		res, err := r.Scripts.Execute(ctx, scripts.ExecuteInput{Script: cfg.Script, TableKeys: cfg.TableKeys})
		if err != nil {
			return nil, err
		}
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s", errStepFailed, res.Error)
		}
		return map[string]any{
			"output":         res.Output,
			"result_columns": res.ResultColumns,
			"result_rows":    len(res.ResultData),
		}, nil

	default: // export
		for _, key := range cfg.TableKeys {
			if _, err := r.Tables.Lookup(ctx, key); err != nil {
				return nil, err
			}
		}
		return map[string]any{"table_keys": cfg.TableKeys}, nil
	}
}

type step struct {
	order       int
	processType string
	config      ProcessConfig
}

// runSteps runs steps in order and skips everything after the first failure.
func (r *Runner) runSteps(ctx context.Context, steps []step) RunReport {
	start := time.Now()
	rep := RunReport{Succeeded: true, Steps: make([]StepReport, len(steps))}
	for i, st := range steps {
		sr := StepReport{Order: st.order, ProcessType: st.processType}
		if !rep.Succeeded {
			sr.Status = StatusSkipped
			rep.Steps[i] = sr
			continue
		}

		t := time.Now()
		out, err := r.Run(ctx, st.processType, st.config)
		sr.DurationMS = time.Since(t).Milliseconds()
		if err != nil {
			sr.Status = StatusFailed
			sr.Error = err.Error()
			rep.Succeeded = false
		} else {
			sr.Status = StatusSucceeded
			sr.Output = out
		}
		rep.Steps[i] = sr
	}
	rep.DurationMS = time.Since(start).Milliseconds()
	return rep
}
