package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"trades.xlsx", FormatXLSX, false},
		{"MACRO.XLSM", FormatXLSX, false},
		{"confirms.csv", FormatCSV, false},
		{"legacy.xls", "", true},
		{"notes.txt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV(t *testing.T) {
	u := &Upload{Format: FormatCSV, Data: []byte("\xef\xbb\xbfRef,Amount,Ccy\nT1,100\nT2,\"2,000\",EUR\n\n")}
	g, err := ParseSheet(u, "")
	require.NoError(t, err)

	assert.Equal(t, 3, g.Width)
	assert.Equal(t, [][]string{
		{"Ref", "Amount", "Ccy"},
		{"T1", "100", ""},
		{"T2", "2,000", "EUR"},
	}, g.Rows)
}

func TestParseWorkbook(t *testing.T) {
	data := workbook(t, map[string][][]any{
		"Trades":   {{"Ref", "Amount"}, {"T1", 100}, {"T2", 250.5}},
		"Confirms": {{"C1", "T1"}},
	}, "Trades", "Confirms")
	u := &Upload{Format: FormatXLSX, Data: data}

	sheets, err := Sheets(u)
	require.NoError(t, err)
	assert.Equal(t, []string{"Trades", "Confirms"}, sheets)

	g, err := ParseSheet(u, "")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ref", "Amount"}, {"T1", "100"}, {"T2", "250.5"}}, g.Rows)

	g, err = ParseSheet(u, "Confirms")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"C1", "T1"}}, g.Rows)

	_, err = ParseSheet(u, "Missing")
	assert.Error(t, err)
}

func TestDetectHeaders(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want bool
	}{
		{"labels over numbers", [][]string{{"Ref", "Amount"}, {"1", "100"}}, true},
		{"labels over labels", [][]string{{"Ref", "Desk", "Ccy"}, {"T1", "FX", "EUR"}}, true},
		{"numbers only", [][]string{{"1", "2"}, {"3", "4"}}, false},
		{"thousands separators are numbers", [][]string{{"1,000", "2"}, {"3", "4"}}, false},
		{"single row", [][]string{{"Ref", "Amount"}}, false},
		{"mostly blank first row", [][]string{{"", "", "x"}, {"a", "b", "c"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectHeaders(newGrid(tt.rows)))
		})
	}
}

func TestColumns(t *testing.T) {
	g := newGrid([][]string{{"Ref", "", "Ref", " Amount ", "Ref"}, {"1", "2", "3", "4", "5"}})

	assert.Equal(t, []string{"Ref", "Column_2", "Ref.1", "Amount", "Ref.2"}, Columns(g, true))
	assert.Equal(t, []string{"Column_1", "Column_2", "Column_3", "Column_4", "Column_5"}, Columns(g, false))
	assert.Len(t, Body(g, true), 1)
	assert.Len(t, Body(g, false), 2)
}
