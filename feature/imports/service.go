package imports

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"didp/core/server"
	"didp/core/storage"
	"didp/feature/tables"

	"go.uber.org/zap"
)

// ErrUploadNotFound is returned for unknown, confirmed or expired uploads.
var ErrUploadNotFound = fmt.Errorf("%w: file not found, please upload again", server.ErrInvalidRequest)

// UploadResult is the preview returned right after an upload.
type UploadResult struct {
	FileID     string     `json:"file_id"`
	Filename   string     `json:"filename"`
	Sheets     []string   `json:"sheets"`
	Columns    []string   `json:"columns"`
	Preview    [][]string `json:"preview"`
	HasHeaders bool       `json:"has_headers"`
	RowCount   int        `json:"row_count"`
}

// PreviewResult is the preview of one sheet with a chosen header mode.
type PreviewResult struct {
	Columns  []string   `json:"columns"`
	Preview  [][]string `json:"preview"`
	RowCount int        `json:"row_count"`
}

// ConfirmInput turns one sheet of an upload into a table.
type ConfirmInput struct {
	FileID     string  `json:"file_id" form:"file_id" validate:"required"`
	TableKey   string  `json:"table_key" form:"table_key" validate:"required,max=255"`
	TableName  string  `json:"table_name" form:"table_name" validate:"required,max=255"`
	SheetName  string  `json:"sheet_name" form:"sheet_name"`
	HasHeaders bool    `json:"has_headers" form:"has_headers"`
	Category   *string `json:"category" form:"category"`
}

// BatchItem is one sheet to import in a batch.
type BatchItem struct {
	TableKey  string `json:"table_key" validate:"required,max=255"`
	TableName string `json:"table_name" validate:"required,max=255"`
	SheetName string `json:"sheet_name"`
}

// BatchInput imports several sheets of the same upload.
type BatchInput struct {
	FileID     string      `json:"file_id" validate:"required"`
	HasHeaders bool        `json:"has_headers"`
	Category   *string     `json:"category"`
	Imports    []BatchItem `json:"imports" validate:"required,min=1,dive"`
}

// Service runs the upload, preview and confirm workflow.
type Service struct {
	tables  *tables.Service
	archive *storage.Archive
	staging *Staging
	cfg     Config
	logger  *zap.Logger
}

// NewService creates an import service. archive may be nil.
func NewService(tbl *tables.Service, archive *storage.Archive, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		tables:  tbl,
		archive: archive,
		staging: NewStaging(cfg.TTL()),
		cfg:     cfg,
		logger:  logger,
	}
}

// Staging exposes the upload store.
func (s *Service) Staging() *Staging {
	return s.staging
}

// Upload stages a file and previews its first sheet with detected headers.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if len(data) > s.cfg.maxUploadBytes() {
		return nil, server.Invalid("file exceeds %d MB", s.cfg.maxUploadBytes()/(1024*1024))
	}

	u := &Upload{Filename: filepath.Base(filename), Format: format, Data: data}
	if u.Sheets, err = Sheets(u); err != nil {
		return nil, err
	}
	grid, err := ParseSheet(u, "")
	if err != nil {
		return nil, err
	}

	id := s.staging.Put(u)
	first := ""
	if len(u.Sheets) > 0 {
		first = u.Sheets[0]
	}
	// Seed the parse cache so the usual preview/confirm of the first sheet is free
	_, _ = s.staging.Grid(id, first, func(*Upload) (*Grid, error) { return grid, nil })

	hasHeaders := DetectHeaders(grid)
	p := s.preview(grid, hasHeaders)

	s.logger.Info("File staged",
		zap.String("file_id", id),
		zap.String("filename", u.Filename),
		zap.Int("bytes", len(data)),
		zap.Int("sheets", len(u.Sheets)))

	return &UploadResult{
		FileID:     id,
		Filename:   u.Filename,
		Sheets:     u.Sheets,
		Columns:    p.Columns,
		Preview:    p.Preview,
		HasHeaders: hasHeaders,
		RowCount:   p.RowCount,
	}, nil
}

// Preview re-reads a staged upload for a given sheet and header mode.
func (s *Service) Preview(ctx context.Context, fileID, sheet string, hasHeaders bool) (*PreviewResult, error) {
	grid, err := s.grid(fileID, sheet)
	if err != nil {
		return nil, err
	}
	return s.preview(grid, hasHeaders), nil
}

func (s *Service) preview(g *Grid, hasHeaders bool) *PreviewResult {
	body := Body(g, hasHeaders)
	n := min(len(body), s.cfg.previewRows())
	rows := make([][]string, n)
	copy(rows, body[:n])
	return &PreviewResult{
		Columns:  Columns(g, hasHeaders),
		Preview:  rows,
		RowCount: len(body),
	}
}

func (s *Service) grid(fileID, sheet string) (*Grid, error) {
	u, ok := s.staging.Get(fileID)
	if !ok {
		return nil, ErrUploadNotFound
	}
	if sheet == "" && len(u.Sheets) > 0 {
		sheet = u.Sheets[0]
	}
	return s.staging.Grid(fileID, sheet, func(u *Upload) (*Grid, error) {
		return ParseSheet(u, sheet)
	})
}

// Confirm creates a table from one sheet and evicts the upload.
func (s *Service) Confirm(ctx context.Context, in ConfirmInput) (*tables.Detail, error) {
	d, err := s.confirm(ctx, in)
	if err != nil {
		return nil, err
	}
	s.release(ctx, in.FileID)
	return d, nil
}

func (s *Service) confirm(ctx context.Context, in ConfirmInput) (*tables.Detail, error) {
	u, ok := s.staging.Get(in.FileID)
	if !ok {
		return nil, ErrUploadNotFound
	}
	if _, err := s.tables.Lookup(ctx, in.TableKey); err == nil {
		return nil, server.Invalid("table with key %q already exists", in.TableKey)
	}

	grid, err := s.grid(in.FileID, in.SheetName)
	if err != nil {
		return nil, err
	}

	filename := u.Filename
	var sheet *string
	if in.SheetName != "" {
		sheet = &in.SheetName
	}

	start := time.Now()
	d, err := s.tables.Create(ctx, tables.CreateInput{
		Key:        in.TableKey,
		Name:       in.TableName,
		Category:   in.Category,
		SourceType: tables.SourceImported,
		FileName:   &filename,
		SheetName:  sheet,
		Columns:    Columns(grid, in.HasHeaders),
		Data:       Body(grid, in.HasHeaders),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Import confirmed",
		zap.String("file_id", in.FileID),
		zap.String("table", d.Key),
		zap.Int("rows", d.RowCount),
		zap.Duration("duration", time.Since(start)))
	return d, nil
}

// Batch imports several sheets of one upload. The upload is evicted after
// the last import; a failure stops the batch and keeps the upload staged.
func (s *Service) Batch(ctx context.Context, in BatchInput) ([]*tables.Detail, error) {
	if _, ok := s.staging.Get(in.FileID); !ok {
		return nil, ErrUploadNotFound
	}

	out := make([]*tables.Detail, 0, len(in.Imports))
	for _, item := range in.Imports {
		d, err := s.confirm(ctx, ConfirmInput{
			FileID:     in.FileID,
			TableKey:   item.TableKey,
			TableName:  item.TableName,
			SheetName:  item.SheetName,
			HasHeaders: in.HasHeaders,
			Category:   in.Category,
		})
		if err != nil {
			return out, fmt.Errorf("import %s: %w", item.TableKey, err)
		}
		out = append(out, d)
	}
	s.release(ctx, in.FileID)
	return out, nil
}

// Cleanup drops a staged upload. Unknown ids are ignored.
func (s *Service) Cleanup(fileID string) {
	if s.staging.Delete(fileID) {
		s.logger.Debug("Staged file removed", zap.String("file_id", fileID))
	}
}

// release archives the raw upload when storage is enabled, then evicts it.
func (s *Service) release(ctx context.Context, fileID string) {
	u, ok := s.staging.Get(fileID)
	s.staging.Delete(fileID)
	if !ok || !s.archive.Enabled() {
		return
	}

	key := storage.ObjectKey("uploads", u.Filename, time.Now())
	if err := s.archive.Put(ctx, key, u.Data, contentType(u.Format)); err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			s.logger.Warn("Failed to archive upload", zap.String("file_id", fileID), zap.Error(err))
		}
		return
	}
	s.logger.Info("Upload archived", zap.String("object", key))
}

func contentType(f Format) string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
