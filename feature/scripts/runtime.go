package scripts

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"didp/core/formula"

	"github.com/dop251/goja"
)

const truncatedMarker = "\n... output truncated"

// output collects printed lines up to a byte budget.
type output struct {
	b         strings.Builder
	max       int
	truncated bool
}

func (o *output) println(line string) {
	if o.truncated {
		return
	}
	if o.b.Len()+len(line)+1 > o.max {
		o.b.WriteString(truncatedMarker)
		o.truncated = true
		return
	}
	o.b.WriteString(line)
	o.b.WriteByte('\n')
}

func (o *output) String() string {
	return o.b.String()
}

// newRuntime builds a VM exposing the datasets, the formula helpers and
// print functions that write to out. The VM has no file, network or module
// access.
func newRuntime(datasets map[string]*formula.Dataset, out *output) (*goja.Runtime, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	printFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = display(a)
		}
		out.println(strings.Join(parts, " "))
		return goja.Undefined()
	}

	console := vm.NewObject()
	for _, name := range []string{"log", "info", "warn", "error"} {
		if err := console.Set(name, printFn); err != nil {
			return nil, err
		}
	}

	globals := map[string]any{
		"tables":  datasets,
		"excel":   formula.Registry(),
		"print":   printFn,
		"console": console,
	}
	for name, v := range globals {
		if err := vm.Set(name, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return vm, nil
}

// display renders a value the way print shows it. Objects are shown as JSON
// when they serialize.
func display(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	if _, ok := v.(*goja.Object); ok {
		if s, err := jsonString(v); err == nil {
			return s
		}
	}
	return v.String()
}

func jsonString(v goja.Value) (string, error) {
	obj := v.(*goja.Object)
	if d, ok := dataset(obj); ok {
		return fmt.Sprintf("<dataset %s: %d columns, %d rows>", d.Name, len(d.Columns), len(d.Rows)), nil
	}
	if inlineSize(obj, maxInlineValues, 0) > maxInlineValues {
		if arr, ok := isArray(obj); ok {
			return fmt.Sprintf("<array of %d items>", arr.Get("length").ToInteger()), nil
		}
		return "<object>", nil
	}
	b, err := obj.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// cell renders a result value as a table cell. null and undefined are empty.
func cell(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	if _, ok := v.(*goja.Object); ok {
		return display(v)
	}
	return v.String()
}

func isArray(v goja.Value) (*goja.Object, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	if obj.ClassName() == "Array" {
		return obj, true
	}
	// Go slices handed in from datasets
	if t := obj.ExportType(); t != nil && t.Kind() == reflect.Slice {
		return obj, true
	}
	return nil, false
}

var datasetType = reflect.TypeOf((*formula.Dataset)(nil))

// dataset unwraps a table handed to the script. Other values are never
// exported, since exporting copies the whole value.
func dataset(obj *goja.Object) (*formula.Dataset, bool) {
	if obj.ExportType() != datasetType {
		return nil, false
	}
	d, ok := obj.Export().(*formula.Dataset)
	return d, ok
}

const (
	maxInlineValues = 10000
	maxInlineDepth  = 32
)

// inlineSize counts the values nested under v, giving up once the count
// passes budget. Values deeper than maxInlineDepth count as over budget.
func inlineSize(v goja.Value, budget, depth int) int {
	obj, ok := v.(*goja.Object)
	if !ok {
		return 1
	}
	if depth > maxInlineDepth {
		return budget + 1
	}
	if arr, ok := isArray(obj); ok {
		n := int(arr.Get("length").ToInteger())
		if n > budget {
			return budget + 1
		}
		total := 1
		for i := 0; i < n && total <= budget; i++ {
			total += inlineSize(arr.Get(strconv.Itoa(i)), budget-total, depth+1)
		}
		return total
	}
	keys := obj.Keys()
	if len(keys) > budget {
		return budget + 1
	}
	total := 1
	for _, k := range keys {
		if total > budget {
			break
		}
		total += inlineSize(obj.Get(k), budget-total, depth+1)
	}
	return total
}

// limits bounds the table converted from a result value.
type limits struct {
	rows    int
	columns int
}

func elements(obj *goja.Object, limit int) []goja.Value {
	n := int(obj.Get("length").ToInteger())
	if limit >= 0 && n > limit {
		n = limit
	}
	out := make([]goja.Value, n)
	for i := range out {
		out[i] = obj.Get(strconv.Itoa(i))
	}
	return out
}

// convertResult turns the script's result variable into columns and rows.
// Accepted shapes are a dataset, {columns, rows}, an array of arrays, an
// array of objects, an array of scalars or a single scalar. Reading the
// value can run script getters, so callers convert under the interrupt.
func convertResult(v goja.Value, lim limits) ([]string, [][]string) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	obj, isObj := v.(*goja.Object)
	if !isObj {
		return []string{"result"}, [][]string{{cell(v)}}
	}
	if d, ok := dataset(obj); ok {
		cols, rows := d.Columns, d.Rows
		if len(rows) > lim.rows {
			rows = rows[:lim.rows]
		}
		if len(cols) > lim.columns {
			cols = cols[:lim.columns]
			trimmed := make([][]string, len(rows))
			for i, r := range rows {
				trimmed[i] = r[:min(len(r), lim.columns)]
			}
			rows = trimmed
		}
		return cols, rows
	}

	arr, ok := isArray(obj)
	if !ok {
		cols, rows := obj.Get("columns"), obj.Get("rows")
		colArr, okCols := isArray(cols)
		rowArr, okRows := isArray(rows)
		if okCols && okRows {
			var names []string
			for _, c := range elements(colArr, lim.columns) {
				names = append(names, cell(c))
			}
			return names, arrayRows(elements(rowArr, lim.rows), len(names))
		}
		return []string{"result"}, [][]string{{cell(v)}}
	}

	items := elements(arr, lim.rows)
	if len(items) == 0 {
		return []string{"result"}, [][]string{}
	}
	if _, nested := isArray(items[0]); nested {
		width := 0
		for _, it := range items {
			if a, ok := isArray(it); ok {
				width = max(width, int(a.Get("length").ToInteger()))
			}
		}
		width = min(width, lim.columns)
		names := make([]string, width)
		for i := range names {
			names[i] = fmt.Sprintf("col_%d", i+1)
		}
		return names, arrayRows(items, width)
	}
	if first, ok := items[0].(*goja.Object); ok && first.ClassName() == "Object" {
		return recordRows(items, lim.columns)
	}

	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{cell(it)}
	}
	return []string{"result"}, rows
}

func arrayRows(items []goja.Value, width int) [][]string {
	rows := make([][]string, len(items))
	for i, it := range items {
		row := make([]string, width)
		if a, ok := isArray(it); ok {
			for j, c := range elements(a, width) {
				row[j] = cell(c)
			}
		} else if width > 0 {
			row[0] = cell(it)
		}
		rows[i] = row
	}
	return rows
}

// recordRows uses the union of object keys in first-seen order as columns,
// keeping at most limit of them.
func recordRows(items []goja.Value, limit int) ([]string, [][]string) {
	var names []string
	pos := map[string]int{}
	for _, it := range items {
		obj, ok := it.(*goja.Object)
		if !ok {
			continue
		}
		for _, k := range obj.Keys() {
			if len(names) == limit {
				break
			}
			if _, seen := pos[k]; !seen {
				pos[k] = len(names)
				names = append(names, k)
			}
		}
	}

	rows := make([][]string, len(items))
	for i, it := range items {
		row := make([]string, len(names))
		if obj, ok := it.(*goja.Object); ok {
			for _, k := range obj.Keys() {
				if p, ok := pos[k]; ok {
					row[p] = cell(obj.Get(k))
				}
			}
		}
		rows[i] = row
	}
	return names, rows
}
