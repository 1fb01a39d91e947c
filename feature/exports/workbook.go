package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"didp/core/match"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	maxColWidth  = 50
	// column widths are estimated from this many rows
	widthSample = 100
)

// Sheet is one worksheet to render: an optional header row plus data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
	// FixedWidth overrides the sampled column width when positive.
	FixedWidth float64
}

// workbook assembles sheets with unique, valid names.
type workbook struct {
	f     *excelize.File
	names map[string]bool
	bold  int
	count int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{f: f, names: map[string]bool{}, bold: bold}, nil
}

// sheetName strips characters Excel rejects, truncates to 31 characters
// and appends " (n)" until the name is unique, ignoring case.
func (w *workbook) sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Sheet"
	}
	base := truncate(name, maxSheetName)
	out := base
	for n := 2; w.names[strings.ToLower(out)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		out = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	w.names[strings.ToLower(out)] = true
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// add streams one sheet into the workbook.
func (w *workbook) add(s Sheet) error {
	name := w.sheetName(s.Name)
	if w.count == 0 {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.count++

	sw, err := w.f.NewStreamWriter(name)
	if err != nil {
		return err
	}
	for i, width := range columnWidths(s) {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	row := 1
	if len(s.Header) > 0 {
		if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
		cells := make([]any, len(s.Header))
		for i, h := range s.Header {
			cells[i] = excelize.Cell{StyleID: w.bold, Value: h}
		}
		if err := sw.SetRow("A1", cells); err != nil {
			return err
		}
		row++
	}
	for _, r := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", row, name, err)
		}
		row++
	}
	return sw.Flush()
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.count == 0 {
		if err := w.f.SetSheetName("Sheet1", "Empty"); err != nil {
			return nil, err
		}
	}
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(s Sheet) []float64 {
	width := len(s.Header)
	for _, r := range s.Rows {
		width = max(width, len(r))
	}
	out := make([]float64, width)
	for i := range out {
		if s.FixedWidth > 0 {
			out[i] = s.FixedWidth
			continue
		}
		longest := 0
		if i < len(s.Header) {
			longest = utf8.RuneCountInString(s.Header[i])
		}
		for _, r := range s.Rows[:min(len(s.Rows), widthSample)] {
			if i < len(r) {
				longest = max(longest, utf8.RuneCountInString(fmt.Sprint(r[i])))
			}
		}
		out[i] = float64(min(longest+2, maxColWidth))
	}
	return out
}

// Build renders sheets into an xlsx file. With no sheets the workbook holds
// a single empty sheet named "Empty".
func Build(sheets ...Sheet) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if err := w.add(s); err != nil {
			w.f.Close()
			return nil, fmt.Errorf("failed to build sheet %s: %w", s.Name, err)
		}
	}
	return w.bytes()
}

func textRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		cells := make([]any, len(r))
		for j, c := range r {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}

// TableSheet renders a stored table.
func TableSheet(name string, columns []string, data [][]string, includeHeaders bool) Sheet {
	s := Sheet{Name: name, Rows: textRows(data)}
	if includeHeaders {
		s.Header = columns
	}
	return s
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

func unmatchedSheet(name string, items []match.Unmatched) Sheet {
	width := 0
	for _, u := range items {
		width = max(width, len(u.Row))
	}
	s := Sheet{Name: name, Header: append([]string{"Row #"}, numbered("Column", width)...)}
	for _, u := range items {
		row := []any{u.RowIndex}
		for _, c := range u.Row {
			row = append(row, c)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func pairsSheet(pairs []match.Pair) Sheet {
	srcW, tgtW := 0, 0
	for _, p := range pairs {
		srcW = max(srcW, len(p.SourceRow))
		tgtW = max(tgtW, len(p.TargetRow))
	}
	header := append([]string{"Source Row #"}, numbered("Source Col", srcW)...)
	header = append(header, "Target Row #")
	header = append(header, numbered("Target Col", tgtW)...)

	s := Sheet{Name: "Matched Pairs", Header: header}
	for _, p := range pairs {
		row := make([]any, 0, len(header))
		row = append(row, p.SourceIndex)
		for i := 0; i < srcW; i++ {
			row = append(row, cellAt(p.SourceRow, i))
		}
		row = append(row, p.TargetIndex)
		for _, c := range p.TargetRow {
			row = append(row, c)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// TableCSV renders columns and data as RFC 4180 CSV.
func TableCSV(columns []string, data [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(data); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
