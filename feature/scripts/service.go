package scripts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"didp/core/formula"
	"didp/feature/tables"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ExecuteInput is one script run. An empty TableKeys exposes every table.
type ExecuteInput struct {
	Script    string   `json:"script" validate:"required"`
	TableKeys []string `json:"table_keys"`
}

// Result is the outcome of a script. Script failures are reported in Error.
type Result struct {
	Output          string     `json:"output"`
	Error           string     `json:"error,omitempty"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
	ResultColumns   []string   `json:"result_columns,omitempty"`
	ResultData      [][]string `json:"result_data,omitempty"`
}

// TableInfo describes a table available to scripts.
type TableInfo struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}

type interrupt struct {
	after time.Duration
}

func (i interrupt) String() string {
	return fmt.Sprintf("script exceeded %s timeout", i.after)
}

// Service runs JavaScript over stored tables.
type Service struct {
	tables *tables.Service
	sem    *semaphore.Weighted
	cfg    Config
	logger *zap.Logger
}

// NewService creates a script executor.
func NewService(tbl *tables.Service, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		tables: tbl,
		sem:    semaphore.NewWeighted(cfg.maxConcurrent()),
		cfg:    cfg,
		logger: logger,
	}
}

// Datasets loads tables as formula datasets keyed by table key. Tables
// without columns are left out.
func (s *Service) Datasets(ctx context.Context, keys []string) (map[string]*formula.Dataset, error) {
	details, err := s.tables.LoadMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*formula.Dataset, len(details))
	for _, d := range details {
		if len(d.Columns) == 0 {
			continue
		}
		out[d.Key] = formula.NewDataset(d.Key, d.Columns, d.Data)
	}
	return out, nil
}

// Execute runs the script. Unknown tables and storage failures are errors;
// exceptions, syntax errors and timeouts land in Result.Error.
func (s *Service) Execute(ctx context.Context, in ExecuteInput) (*Result, error) {
	start := time.Now()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("script executor busy: %w", err)
	}
	defer s.sem.Release(1)

	datasets, err := s.Datasets(ctx, in.TableKeys)
	if err != nil {
		return nil, err
	}

	out := &output{max: s.cfg.maxOutput()}
	vm, err := newRuntime(datasets, out)
	if err != nil {
		return nil, err
	}

	timeout := s.cfg.timeout()
	timer := time.AfterFunc(timeout, func() { vm.Interrupt(interrupt{after: timeout}) })
	stop := context.AfterFunc(ctx, func() { vm.Interrupt("request cancelled") })
	defer stop()

	res := &Result{}
	if _, runErr := vm.RunString(in.Script); runErr != nil {
		res.Error = scriptError(runErr)
	} else if convErr := s.convert(vm, res); convErr != nil {
		res.Error = scriptError(convErr)
		res.ResultColumns, res.ResultData = nil, nil
	}
	timer.Stop()
	res.Output = out.String()
	res.ExecutionTimeMS = time.Since(start).Milliseconds()

	fields := []zap.Field{
		zap.Int("tables", len(datasets)),
		zap.Int("result_rows", len(res.ResultData)),
		zap.Int64("duration_ms", res.ExecutionTimeMS),
	}
	if res.Error != "" {
		s.logger.Info("Script failed", append(fields, zap.String("error", res.Error))...)
	} else {
		s.logger.Info("Script executed", fields...)
	}
	return res, nil
}

// convert fills the result table from the script's result variable.
// Exceptions thrown by getters and interrupts are returned as errors.
func (s *Service) convert(vm *goja.Runtime, res *Result) (err error) {
	defer func() {
		if x := recover(); x != nil {
			e, ok := x.(error)
			if !ok {
				e = fmt.Errorf("%v", x)
			}
			err = e
		}
	}()

	lim := limits{rows: s.cfg.maxRows(), columns: s.cfg.maxColumns()}
	if ex := vm.Try(func() {
		res.ResultColumns, res.ResultData = convertResult(vm.Get("result"), lim)
	}); ex != nil {
		return ex
	}
	return nil
}

func scriptError(err error) string {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if v, ok := ie.Value().(interrupt); ok {
			return v.String()
		}
		return fmt.Sprint(ie.Value())
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return ex.String()
	}
	return err.Error()
}

// Tables lists every table a script can reach.
func (s *Service) Tables(ctx context.Context) ([]TableInfo, error) {
	schemas, err := s.tables.Schemas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TableInfo, len(schemas))
	for i, sc := range schemas {
		out[i] = TableInfo{Key: sc.Key, Name: sc.Name, Columns: sc.Columns, RowCount: sc.RowCount}
	}
	return out, nil
}
