package tables

import "time"

const (
	SourceMaster   = "master"
	SourceImported = "imported"
)

// Table is the metadata of one stored table.
type Table struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Key        string    `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Category   *string   `gorm:"size:100;index" json:"category"`
	SourceType string    `gorm:"size:50;not null" json:"source_type"`
	FileName   *string   `gorm:"size:255" json:"file_name"`
	SheetName  *string   `gorm:"size:255" json:"sheet_name"`
	RowCount   int       `gorm:"not null;default:0" json:"row_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Table) TableName() string { return "data_tables" }

// Column is one named column at a fixed position.
type Column struct {
	ID       uint   `gorm:"primaryKey"`
	TableID  uint   `gorm:"index;not null"`
	Position int    `gorm:"not null"`
	Name     string `gorm:"size:255;not null"`
	DataType string `gorm:"size:50;not null"`
}

func (Column) TableName() string { return "data_columns" }

// Row holds the ordered cells of one row.
type Row struct {
	ID       uint     `gorm:"primaryKey"`
	TableID  uint     `gorm:"index:idx_data_rows_table_row,priority:1;not null"`
	RowIndex int      `gorm:"index:idx_data_rows_table_row,priority:2;not null"`
	Data     []string `gorm:"serializer:json;type:text;not null"`
}

func (Row) TableName() string { return "data_rows" }

// Models lists the schema owned by this feature.
func Models() []any {
	return []any{&Table{}, &Column{}, &Row{}}
}

// Summary is the list view of a table.
type Summary struct {
	Table
	ColumnCount int `json:"column_count"`
}

// Detail is a table with its ordered columns and rows. RowIndexes holds the
// stored index of each entry in Data.
type Detail struct {
	Table
	Columns    []string   `json:"columns"`
	Data       [][]string `json:"data"`
	RowIndexes []int      `json:"-"`
}

// Schema is a table with its ordered column names only.
type Schema struct {
	Table
	Columns []string `json:"columns"`
}

// ListFilter narrows List.
type ListFilter struct {
	Category   string
	SourceType string
	Skip       int
	Limit      int
}

// ListResult is one page of summaries plus the unpaged total.
type ListResult struct {
	Tables []Summary `json:"tables"`
	Total  int64     `json:"total"`
}

// CreateInput describes a new table.
type CreateInput struct {
	Key        string     `json:"key" validate:"required,max=255"`
	Name       string     `json:"name" validate:"required,max=255"`
	Category   *string    `json:"category"`
	SourceType string     `json:"-"`
	FileName   *string    `json:"-"`
	SheetName  *string    `json:"-"`
	Columns    []string   `json:"columns"`
	Data       [][]string `json:"data"`
}

// UpdateInput changes metadata and, when both Columns and Data are set,
// replaces the contents.
type UpdateInput struct {
	Name     *string    `json:"name" validate:"omitempty,min=1,max=255"`
	Category *string    `json:"category"`
	Columns  []string   `json:"columns"`
	Data     [][]string `json:"data"`
}

// DataInput replaces the contents of a table.
type DataInput struct {
	Columns []string   `json:"columns" validate:"required"`
	Data    [][]string `json:"data"`
}
