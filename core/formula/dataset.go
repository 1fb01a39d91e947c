package formula

// Dataset is the tabular view handed to formula helpers and scripts.
type Dataset struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewDataset builds a dataset; rows shorter than columns are padded.
func NewDataset(name string, columns []string, rows [][]string) *Dataset {
	padded := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) < len(columns) {
			cells := make([]string, len(columns))
			copy(cells, r)
			r = cells
		}
		padded[i] = r
	}
	return &Dataset{Name: name, Columns: columns, Rows: padded}
}

// ColumnIndex returns the first position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells under name. Unknown columns yield nil.
func (d *Dataset) Column(name string) []string {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out
}

// Records returns one column-name keyed map per row.
func (d *Dataset) Records() []map[string]string {
	out := make([]map[string]string, len(d.Rows))
	for i, r := range d.Rows {
		rec := make(map[string]string, len(d.Columns))
		for j, c := range d.Columns {
			if j < len(r) {
				rec[c] = r[j]
			} else {
				rec[c] = ""
			}
		}
		out[i] = rec
	}
	return out
}

// Len returns the row count.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
