package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"didp/core/database"
	"didp/feature/tables"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ExecuteInput is one ad-hoc query. An empty TableKeys loads every table.
type ExecuteInput struct {
	Query     string   `json:"query" validate:"required"`
	TableKeys []string `json:"table_keys"`
}

// Result is the outcome of a query. Query failures are reported in Error.
type Result struct {
	Columns         []string   `json:"columns"`
	Data            [][]string `json:"data"`
	RowCount        int        `json:"row_count"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
	Error           string     `json:"error,omitempty"`
}

// ScratchTable is a loaded table as SQLite sees it.
type ScratchTable struct {
	Name    string                `json:"name"`
	Columns []database.ColumnInfo `json:"columns"`
}

// Service runs read-only style SQL over private copies of stored tables.
type Service struct {
	tables *tables.Service
	sem    *semaphore.Weighted
	cfg    Config
	logger *zap.Logger
}

// NewService creates a SQL executor.
func NewService(tbl *tables.Service, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		tables: tbl,
		sem:    semaphore.NewWeighted(cfg.maxConcurrent()),
		cfg:    cfg,
		logger: logger,
	}
}

// Execute copies the requested tables into a fresh in-memory database and
// runs the query there. Unknown table keys and storage failures are errors;
// anything the query itself does wrong lands in Result.Error.
func (s *Service) Execute(ctx context.Context, in ExecuteInput) (*Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout())
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("sql executor busy: %w", err)
	}
	defer s.sem.Release(1)

	details, err := s.tables.LoadMany(ctx, in.TableKeys)
	if err != nil {
		return nil, err
	}

	sc, err := openScratch()
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	res := &Result{Columns: []string{}, Data: [][]string{}}
	if err := sc.load(ctx, details); err != nil {
		res.Error = err.Error()
	} else if cols, data, err := sc.query(ctx, in.Query, s.cfg.maxRows()); err != nil {
		res.Error = err.Error()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Error = fmt.Sprintf("query exceeded %s timeout", s.cfg.timeout())
		}
	} else {
		res.Columns, res.Data = cols, data
	}
	res.RowCount = len(res.Data)
	res.ExecutionTimeMS = time.Since(start).Milliseconds()

	fields := []zap.Field{
		zap.Int("tables", len(details)),
		zap.Int("rows", res.RowCount),
		zap.Int64("duration_ms", res.ExecutionTimeMS),
	}
	if res.Error != "" {
		s.logger.Info("SQL query failed", append(fields, zap.String("error", res.Error))...)
	} else {
		s.logger.Info("SQL query executed", fields...)
	}
	return res, nil
}

// Schema renders suggested DDL for every stored table.
func (s *Service) Schema(ctx context.Context) (string, error) {
	schemas, err := s.tables.Schemas(ctx)
	if err != nil {
		return "", err
	}
	return GenerateDDL(schemas, time.Now()), nil
}

// ScratchTables loads the requested tables and reports the schema SQLite
// sees for them.
func (s *Service) ScratchTables(ctx context.Context, keys []string) ([]ScratchTable, error) {
	details, err := s.tables.LoadMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	sc, err := openScratch()
	if err != nil {
		return nil, err
	}
	defer sc.Close()
	if err := sc.load(ctx, details); err != nil {
		return nil, err
	}

	names, err := database.ListTables(sc.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]ScratchTable, 0, len(names))
	for _, n := range names {
		cols, err := database.GetTableColumns(sc.db.WithContext(ctx), n)
		if err != nil {
			return nil, err
		}
		out = append(out, ScratchTable{Name: n, Columns: cols})
	}
	return out, nil
}
