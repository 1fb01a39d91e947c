package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a physical table.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// GetTableColumns retrieves the column definitions for a given table in
// declaration order. Unknown tables yield an empty slice on SQLite.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == DriverSQLite {
		type pragmaColumn struct {
			Cid       int
			Name      string
			Type      string
			Notnull   int
			DfltValue *string
			Pk        int
		}
		var rows []pragmaColumn
		query := fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(tableName))
		if err := db.Raw(query).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range rows {
			columns = append(columns, ColumnInfo{
				Name:       col.Name,
				Type:       strings.ToLower(col.Type),
				Nullable:   col.Notnull == 0,
				PrimaryKey: col.Pk > 0,
			})
		}
		return columns, nil
	}

	type showColumn struct {
		Field string
		Type  string
		Null  string
		Key   string
	}
	var rows []showColumn
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(tableName, "`", "``"))).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for _, col := range rows {
		columns = append(columns, ColumnInfo{
			Name:       col.Field,
			Type:       strings.ToLower(col.Type),
			Nullable:   strings.EqualFold(col.Null, "YES"),
			PrimaryKey: col.Key == "PRI",
		})
	}
	return columns, nil
}

// ListTables returns the user tables of a SQLite database.
func ListTables(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
