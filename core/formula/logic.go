package formula

import (
	"math"
	"reflect"

	"didp/core/utils"
)

// If returns whenTrue when cond is truthy.
func If(cond any, whenTrue, whenFalse any) any {
	if truthy(cond) {
		return whenTrue
	}
	return whenFalse
}

// IfError returns fallback when value is nil or NaN.
func IfError(value, fallback any) any {
	if value == nil {
		return fallback
	}
	if f, ok := value.(float64); ok && math.IsNaN(f) {
		return fallback
	}
	return value
}

// Ifs evaluates condition/value pairs and returns the first value whose
// condition is truthy, or nil.
func Ifs(pairs ...any) any {
	for i := 0; i+1 < len(pairs); i += 2 {
		if truthy(pairs[i]) {
			return pairs[i+1]
		}
	}
	return nil
}

// Switch compares expr against match/result pairs. A trailing odd argument
// is the default.
func Switch(expr any, cases ...any) any {
	for i := 0; i+1 < len(cases); i += 2 {
		if equalValues(expr, cases[i]) {
			return cases[i+1]
		}
	}
	if len(cases)%2 == 1 {
		return cases[len(cases)-1]
	}
	return nil
}

// Choose returns the 1-based index-th value, or nil.
func Choose(index int, values ...any) any {
	if index < 1 || index > len(values) {
		return nil
	}
	return values[index-1]
}

// And is true when every condition is truthy.
func And(conds ...any) bool {
	for _, c := range conds {
		if !truthy(c) {
			return false
		}
	}
	return true
}

// Or is true when any condition is truthy.
func Or(conds ...any) bool {
	for _, c := range conds {
		if truthy(c) {
			return true
		}
	}
	return false
}

func Not(cond any) bool { return !truthy(cond) }

// Xor is true when an odd number of conditions are truthy.
func Xor(conds ...any) bool {
	n := 0
	for _, c := range conds {
		if truthy(c) {
			n++
		}
	}
	return n%2 == 1
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := utils.ToFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

func equalValues(a, b any) bool {
	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			return af == bf
		}
	}
	return utils.ToString(a) == utils.ToString(b)
}

// numeric only accepts real number types so "01" and "1" stay distinct.
func numeric(v any) (float64, bool) {
	switch v.(type) {
	case int, int64, int32, uint, uint64, float64, float32:
		return utils.ToFloat(v)
	}
	return 0, false
}
