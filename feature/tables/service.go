package tables

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"didp/core/database"
	"didp/core/match"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
	batchSize    = 500
)

// DeleteHook runs inside the delete transaction of a table so dependent
// records can be removed with it.
type DeleteHook func(tx *gorm.DB, tableID uint) error

// Service is the generic row store.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.RWMutex
	hooks []DeleteHook
}

// NewService creates a new table service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// OnDelete registers a hook run before a table is removed.
func (s *Service) OnDelete(h DeleteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// List returns table summaries ordered by id.
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	q := s.db.WithContext(ctx).Model(&Table{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.SourceType != "" {
		q = q.Where("source_type = ?", f.SourceType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	var rows []Table
	if err := q.Order("id").Offset(f.Skip).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	counts, err := s.columnCounts(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := &ListResult{Tables: make([]Summary, len(rows)), Total: total}
	for i, t := range rows {
		out.Tables[i] = Summary{Table: t, ColumnCount: counts[t.ID]}
	}
	return out, nil
}

func (s *Service) columnCounts(ctx context.Context, rows []Table) (map[uint]int, error) {
	counts := make(map[uint]int, len(rows))
	if len(rows) == 0 {
		return counts, nil
	}
	ids := make([]uint, len(rows))
	for i, t := range rows {
		ids[i] = t.ID
	}

	var res []struct {
		TableID uint
		N       int
	}
	err := s.db.WithContext(ctx).Model(&Column{}).
		Select("table_id, count(*) as n").
		Where("table_id IN ?", ids).
		Group("table_id").
		Scan(&res).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count columns: %w", err)
	}
	for _, r := range res {
		counts[r.TableID] = r.N
	}
	return counts, nil
}

// Lookup returns the metadata of the table stored under key.
func (s *Service) Lookup(ctx context.Context, key string) (*Table, error) {
	var t Table
	if err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&t).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("table %q", key))
	}
	return &t, nil
}

// GetByKey returns the table stored under key with columns and rows.
func (s *Service) GetByKey(ctx context.Context, key string) (*Detail, error) {
	t, err := s.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.detail(s.db.WithContext(ctx), t)
}

// GetByID returns the table with the given id with columns and rows.
func (s *Service) GetByID(ctx context.Context, id uint) (*Detail, error) {
	var t Table
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, database.Translate(err, fmt.Sprintf("table %d", id))
	}
	return s.detail(s.db.WithContext(ctx), &t)
}

// KeysByID resolves table ids to keys. Unknown ids are absent from the map.
func (s *Service) KeysByID(ctx context.Context, ids ...uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Table
	if err := s.db.WithContext(ctx).Select("id", "key").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve table keys: %w", err)
	}
	for _, t := range rows {
		out[t.ID] = t.Key
	}
	return out, nil
}

// LoadMany returns the named tables in the order given. An empty key list
// loads every table ordered by key.
func (s *Service) LoadMany(ctx context.Context, keys []string) ([]*Detail, error) {
	db := s.db.WithContext(ctx)
	var metas []Table
	if len(keys) == 0 {
		if err := db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&metas).Error; err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
	} else {
		for _, k := range keys {
			t, err := s.Lookup(ctx, k)
			if err != nil {
				return nil, err
			}
			metas = append(metas, *t)
		}
	}

	out := make([]*Detail, 0, len(metas))
	for i := range metas {
		d, err := s.detail(db, &metas[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Schemas returns every table with its column names, without row data,
// ordered by key.
func (s *Service) Schemas(ctx context.Context) ([]Schema, error) {
	db := s.db.WithContext(ctx)
	var metas []Table
	if err := db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&metas).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var cols []Column
	if err := db.Order("table_id").Order("position").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	byTable := make(map[uint][]string, len(metas))
	for _, c := range cols {
		byTable[c.TableID] = append(byTable[c.TableID], c.Name)
	}

	out := make([]Schema, len(metas))
	for i, t := range metas {
		names := byTable[t.ID]
		if names == nil {
			names = []string{}
		}
		out[i] = Schema{Table: t, Columns: names}
	}
	return out, nil
}

// LoadTable implements match.TableSource.
func (s *Service) LoadTable(ctx context.Context, id uint) (*match.Table, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMatchTable(d), nil
}

// ToMatchTable converts a detail into the engine view. Rows keep their stored
// indices; a detail without them falls back to positions.
func ToMatchTable(d *Detail) *match.Table {
	stored := len(d.RowIndexes) == len(d.Data)
	rows := make([]match.Row, len(d.Data))
	for i, cells := range d.Data {
		idx := i
		if stored {
			idx = d.RowIndexes[i]
		}
		rows[i] = match.Row{Index: idx, Cells: cells}
	}
	return &match.Table{ID: d.ID, Key: d.Key, Columns: d.Columns, Rows: rows}
}

func (s *Service) detail(db *gorm.DB, t *Table) (*Detail, error) {
	var cols []Column
	if err := db.Where("table_id = ?", t.ID).Order("position").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to load columns of %s: %w", t.Key, err)
	}
	var rows []Row
	if err := db.Where("table_id = ?", t.ID).Order("row_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load rows of %s: %w", t.Key, err)
	}
	// storage order is not trusted
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RowIndex < rows[j].RowIndex })

	d := &Detail{
		Table:      *t,
		Columns:    make([]string, len(cols)),
		Data:       make([][]string, len(rows)),
		RowIndexes: make([]int, len(rows)),
	}
	for i, c := range cols {
		d.Columns[i] = c.Name
	}
	for i, r := range rows {
		d.Data[i] = fitRow(r.Data, len(cols))
		d.RowIndexes[i] = r.RowIndex
	}
	return d, nil
}

// Create stores a new table. A taken key is a database.ErrConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Detail, error) {
	if in.SourceType == "" {
		in.SourceType = SourceMaster
	}
	t := &Table{
		Key:        in.Key,
		Name:       in.Name,
		Category:   in.Category,
		SourceType: in.SourceType,
		FileName:   in.FileName,
		SheetName:  in.SheetName,
		RowCount:   len(in.Data),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Table{}).Where(map[string]any{"key": in.Key}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("table with key %q already exists: %w", in.Key, database.ErrConflict)
		}
		if err := tx.Create(t).Error; err != nil {
			return database.Translate(err, fmt.Sprintf("table %q", in.Key))
		}
		return writeContents(tx, t.ID, in.Columns, in.Data)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Table created",
		zap.String("key", t.Key),
		zap.Int("columns", len(in.Columns)),
		zap.Int("rows", t.RowCount))
	return s.GetByKey(ctx, t.Key)
}

// Update changes metadata and optionally replaces the contents.
func (s *Service) Update(ctx context.Context, key string, in UpdateInput) (*Detail, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Table
		if err := tx.Where(map[string]any{"key": key}).First(&t).Error; err != nil {
			return database.Translate(err, fmt.Sprintf("table %q", key))
		}
		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Category != nil {
			t.Category = in.Category
		}
		if in.Columns != nil && in.Data != nil {
			if err := clearContents(tx, t.ID); err != nil {
				return err
			}
			if err := writeContents(tx, t.ID, in.Columns, in.Data); err != nil {
				return err
			}
			t.RowCount = len(in.Data)
		}
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByKey(ctx, key)
}

// ReplaceData overwrites columns and rows of the table stored under key.
func (s *Service) ReplaceData(ctx context.Context, key string, in DataInput) (*Detail, error) {
	data := in.Data
	if data == nil {
		data = [][]string{}
	}
	return s.Update(ctx, key, UpdateInput{Columns: in.Columns, Data: data})
}

// Delete removes the table under key, its contents and everything the
// registered hooks attach to it.
func (s *Service) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	hooks := append([]DeleteHook(nil), s.hooks...)
	s.mu.RUnlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Table
		if err := tx.Where(map[string]any{"key": key}).First(&t).Error; err != nil {
			return database.Translate(err, fmt.Sprintf("table %q", key))
		}
		for _, h := range hooks {
			if err := h(tx, t.ID); err != nil {
				return err
			}
		}
		if err := clearContents(tx, t.ID); err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("Table deleted", zap.String("key", key))
	return nil
}

func clearContents(tx *gorm.DB, tableID uint) error {
	if err := tx.Where("table_id = ?", tableID).Delete(&Column{}).Error; err != nil {
		return fmt.Errorf("failed to delete columns: %w", err)
	}
	if err := tx.Where("table_id = ?", tableID).Delete(&Row{}).Error; err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	return nil
}

func writeContents(tx *gorm.DB, tableID uint, columns []string, data [][]string) error {
	if len(columns) > 0 {
		cols := make([]Column, len(columns))
		for i, name := range columns {
			cols[i] = Column{TableID: tableID, Position: i, Name: name, DataType: "string"}
		}
		if err := tx.Create(&cols).Error; err != nil {
			return fmt.Errorf("failed to write columns: %w", err)
		}
	}
	if len(data) > 0 {
		rows := make([]Row, len(data))
		for i, cells := range data {
			rows[i] = Row{TableID: tableID, RowIndex: i, Data: fitRow(cells, len(columns))}
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
	}
	return nil
}

// fitRow pads or truncates cells to width.
func fitRow(cells []string, width int) []string {
	if len(cells) == width {
		return cells
	}
	out := make([]string, width)
	copy(out, cells)
	return out
}
