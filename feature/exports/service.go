package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"didp/core/database"
	"didp/core/server"
	"didp/core/storage"
	"didp/feature/matching"
	"didp/feature/tables"

	"go.uber.org/zap"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// ObjectKey is set when the file was archived.
	ObjectKey string
}

// TablesInput selects tables for a workbook export.
type TablesInput struct {
	TableKeys      []string `json:"table_keys" validate:"required,min=1"`
	IncludeHeaders *bool    `json:"include_headers"`
}

// MatchResultOptions selects the sheets of a match result export.
type MatchResultOptions struct {
	IncludeMatched   bool
	IncludeUnmatched bool
	Archive          bool
}

// SQLResultsInput is a query result to export.
type SQLResultsInput struct {
	Columns []string   `json:"columns" validate:"required,min=1"`
	Data    [][]string `json:"data" validate:"required,min=1"`
}

// ComparisonRow is one row of a side by side comparison.
type ComparisonRow struct {
	TableKey string   `json:"table_key" validate:"required"`
	RowIndex int      `json:"row_index" validate:"min=0"`
	Data     []string `json:"data"`
}

// ComparisonInput holds rows from several tables plus display names.
type ComparisonInput struct {
	Rows       []ComparisonRow   `json:"rows" validate:"required,min=1,dive"`
	TableNames map[string]string `json:"table_names"`
}

// Service renders tables and match results as spreadsheets.
type Service struct {
	tables   *tables.Service
	matching *matching.Service
	archive  *storage.Archive
	logger   *zap.Logger
}

// NewService creates an export service. archive may be nil.
func NewService(tbl *tables.Service, m *matching.Service, archive *storage.Archive, logger *zap.Logger) *Service {
	return &Service{tables: tbl, matching: m, archive: archive, logger: logger}
}

// Tables renders one sheet per table, in the order given. Unknown keys are
// skipped; if none resolve the workbook holds one empty sheet.
func (s *Service) Tables(ctx context.Context, in TablesInput) (*File, error) {
	headers := in.IncludeHeaders == nil || *in.IncludeHeaders

	var sheets []Sheet
	for _, key := range in.TableKeys {
		d, err := s.tables.GetByKey(ctx, key)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				s.logger.Debug("Export skipped unknown table", zap.String("table", key))
				continue
			}
			return nil, err
		}
		sheets = append(sheets, TableSheet(d.Name, d.Columns, d.Data, headers))
	}

	data, err := Build(sheets...)
	if err != nil {
		return nil, err
	}
	return &File{Name: "DIDP_Export.xlsx", ContentType: ContentTypeXLSX, Data: data}, nil
}

// CSV renders one table as CSV with a header row.
func (s *Service) CSV(ctx context.Context, key string) (*File, error) {
	d, err := s.tables.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := TableCSV(d.Columns, d.Data)
	if err != nil {
		return nil, err
	}
	return &File{Name: key + ".csv", ContentType: ContentTypeCSV, Data: data}, nil
}

// MatchResult renders a stored result with a Summary sheet followed by the
// requested row sheets. Empty collections get no sheet.
func (s *Service) MatchResult(ctx context.Context, id uint, opts MatchResultOptions) (*File, error) {
	res, err := s.matching.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}

	sheets := []Sheet{{
		Name: "Summary",
		Rows: [][]any{
			{"Match Result Summary"},
			{""},
			{"Config ID", res.ConfigID},
			{"Config Name", res.ConfigName},
			{"Source Table", res.SourceTableKey},
			{"Target Table", res.TargetTableKey},
			{"Matched Count", res.MatchedCount},
			{"Unmatched Source", res.UnmatchedSourceCount},
			{"Unmatched Target", res.UnmatchedTargetCount},
			{"Created At", res.CreatedAt.UTC().Format(time.RFC3339)},
		},
	}}
	if opts.IncludeMatched && len(res.MatchedPairs) > 0 {
		sheets = append(sheets, pairsSheet(res.MatchedPairs))
	}
	if opts.IncludeUnmatched && len(res.UnmatchedSource) > 0 {
		sheets = append(sheets, unmatchedSheet("Unmatched Source", res.UnmatchedSource))
	}
	if opts.IncludeUnmatched && len(res.UnmatchedTarget) > 0 {
		sheets = append(sheets, unmatchedSheet("Unmatched Target", res.UnmatchedTarget))
	}

	data, err := Build(sheets...)
	if err != nil {
		return nil, err
	}
	f := &File{Name: fmt.Sprintf("match_results_%d.xlsx", id), ContentType: ContentTypeXLSX, Data: data}

	if opts.Archive {
		if !s.archive.Enabled() {
			return nil, server.Invalid("archive storage is not enabled")
		}
		key := storage.ObjectKey("exports", f.Name, time.Now())
		if err := s.archive.Put(ctx, key, f.Data, f.ContentType); err != nil {
			return nil, err
		}
		f.ObjectKey = key
		s.logger.Info("Match result archived", zap.Uint("result_id", id), zap.String("object", key))
	}
	return f, nil
}

// SQLResults renders a query result as a single sheet.
func (s *Service) SQLResults(in SQLResultsInput) (*File, error) {
	data, err := Build(Sheet{Name: "SQL Results", Header: in.Columns, Rows: textRows(in.Data)})
	if err != nil {
		return nil, err
	}
	return &File{Name: "DIDP_SQL_Results.xlsx", ContentType: ContentTypeXLSX, Data: data}, nil
}

// Comparison renders rows from several tables on one sheet, labelled with
// the table's display name and a 1-based row number.
func (s *Service) Comparison(in ComparisonInput) (*File, error) {
	width := 0
	for _, r := range in.Rows {
		width = max(width, len(r.Data))
	}
	sheet := Sheet{
		Name:       "Comparison",
		Header:     append([]string{"Source Table", "Row #"}, numbered("Column", width)...),
		FixedWidth: 15,
	}
	for _, r := range in.Rows {
		name := r.TableKey
		if n, ok := in.TableNames[r.TableKey]; ok && n != "" {
			name = n
		}
		row := []any{name, r.RowIndex + 1}
		for _, c := range r.Data {
			row = append(row, c)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	data, err := Build(sheet)
	if err != nil {
		return nil, err
	}
	return &File{Name: "DIDP_Comparison.xlsx", ContentType: ContentTypeXLSX, Data: data}, nil
}
