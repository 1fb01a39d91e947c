package imports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"didp/core/server"

	"github.com/xuri/excelize/v2"
)

// Format is the detected kind of an uploaded file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFile is returned for uploads that are neither xlsx nor csv.
var ErrUnsupportedFile = fmt.Errorf("%w: only .xlsx, .xlsm and .csv files are supported", server.ErrInvalidRequest)

// DetectFormat picks the parser from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFile
	}
}

// Grid is a rectangular block of cells read from one sheet.
type Grid struct {
	Rows  [][]string
	Width int
}

func newGrid(rows [][]string) *Grid {
	// Trailing blank rows are dropped by excelize but not by csv
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return &Grid{Rows: rows, Width: width}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Sheets lists the worksheet names of an upload. CSV files have none.
func Sheets(u *Upload) ([]string, error) {
	if u.Format != FormatXLSX {
		return nil, nil
	}
	f, err := excelize.OpenReader(bytes.NewReader(u.Data))
	if err != nil {
		return nil, server.Invalid("cannot read workbook: %v", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ParseSheet reads one sheet of u, the first one when sheet is empty.
func ParseSheet(u *Upload, sheet string) (*Grid, error) {
	switch u.Format {
	case FormatCSV:
		return parseCSV(u.Data)
	case FormatXLSX:
		return parseWorkbook(u.Data, sheet)
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseWorkbook(data []byte, sheet string) (*Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, server.Invalid("cannot read workbook: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return newGrid(nil), nil
		}
		sheet = list[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, server.Invalid("sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return newGrid(rows), nil
}

func parseCSV(data []byte) (*Grid, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, server.Invalid("cannot read csv: %v", err)
		}
		rows = append(rows, rec)
	}
	return newGrid(rows), nil
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return err == nil
}

func labelLike(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !numeric(s) && len(s) < 50
}

// DetectHeaders guesses whether the first row of g names its columns.
// The first row must carry more non-numeric text than the second, or more
// than half of its cells must look like short labels.
func DetectHeaders(g *Grid) bool {
	if len(g.Rows) < 2 || g.Width == 0 {
		return false
	}
	first, second := g.Rows[0], g.Rows[1]

	textual := func(row []string) int {
		n := 0
		for _, c := range row {
			if strings.TrimSpace(c) != "" && !numeric(c) {
				n++
			}
		}
		return n
	}
	if textual(first) > textual(second) {
		return true
	}

	labels := 0
	for _, c := range first {
		if labelLike(c) {
			labels++
		}
	}
	return labels > g.Width/2
}

// Columns names the columns of g. Without headers they are Column_1..n.
// Blank header cells fall back to Column_i and repeats get .1, .2 suffixes.
func Columns(g *Grid, hasHeaders bool) []string {
	cols := make([]string, g.Width)
	if !hasHeaders || len(g.Rows) == 0 {
		for i := range cols {
			cols[i] = fmt.Sprintf("Column_%d", i+1)
		}
		return cols
	}

	used := make(map[string]bool, g.Width)
	suffix := make(map[string]int)
	for i, raw := range g.Rows[0] {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		for base := name; used[name]; {
			suffix[base]++
			name = fmt.Sprintf("%s.%d", base, suffix[base])
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}

// Body returns the data rows of g, skipping the header row when present.
func Body(g *Grid, hasHeaders bool) [][]string {
	if hasHeaders && len(g.Rows) > 0 {
		return g.Rows[1:]
	}
	return g.Rows
}
