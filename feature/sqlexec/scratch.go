package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"didp/core/database"
	"didp/feature/tables"

	"gorm.io/gorm"
)

// sqlite binds at most 999 host parameters per statement on older builds.
const maxParams = 999

// scratch is a private in-memory SQLite database holding copies of tables.
type scratch struct {
	db *gorm.DB
}

func openScratch() (*scratch, error) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database: %w", err)
	}
	return &scratch{db: db}, nil
}

func (s *scratch) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// load creates one TEXT-only table per detail, named by its key, and copies
// the rows in order. Tables without columns are skipped.
func (s *scratch) load(ctx context.Context, details []*tables.Detail) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range details {
			if len(d.Columns) == 0 {
				continue
			}
			if err := loadTable(tx, d); err != nil {
				return fmt.Errorf("failed to load table %s: %w", d.Key, err)
			}
		}
		return nil
	})
}

func loadTable(tx *gorm.DB, d *tables.Detail) error {
	defs := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		defs[i] = database.QuoteIdent(c) + " TEXT"
	}
	name := database.QuoteIdent(d.Key)
	if err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))).Error; err != nil {
		return err
	}

	width := len(d.Columns)
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	per := max(1, maxParams/width)

	for start := 0; start < len(d.Data); start += per {
		end := min(start+per, len(d.Data))
		tuples := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*width)
		for _, row := range d.Data[start:end] {
			tuples = append(tuples, tuple)
			for i := 0; i < width; i++ {
				if i < len(row) {
					args = append(args, row[i])
				} else {
					args = append(args, "")
				}
			}
		}
		stmt := fmt.Sprintf("INSERT INTO %s VALUES %s", name, strings.Join(tuples, ", "))
		if err := tx.Exec(stmt, args...).Error; err != nil {
			return err
		}
	}
	return nil
}

// query runs q and returns its column names and up to limit rows rendered
// as strings. NULL becomes the empty string.
func (s *scratch) query(ctx context.Context, q string, limit int) ([]string, [][]string, error) {
	rows, err := s.db.WithContext(ctx).Raw(q).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	data := [][]string{}
	for len(data) < limit && rows.Next() {
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out := make([]string, len(columns))
		for i, v := range vals {
			out[i] = v.String
		}
		data = append(data, out)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, data, nil
}
