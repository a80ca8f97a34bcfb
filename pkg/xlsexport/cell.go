package xlsexport

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Pair is one entry of a Mapping.
type Pair struct {
	Key   string
	Value interface{}
}

// Mapping is an ordered keyed value. Its values are exported as consecutive
// cells in declaration order. Plain Go maps are exported in sorted key order,
// numeric keys numerically.
type Mapping []Pair

// Flatten turns a column value into the cells it occupies. Mappings, maps,
// slices and arrays are expanded recursively; everything else is one cell.
// Values a spreadsheet cannot hold are rendered with fmt.
func Flatten(v interface{}) []interface{} {
	return appendCells(nil, v)
}

func appendCells(cells []interface{}, v interface{}) []interface{} {
	// Pointers are resolved first: a nil one is an empty cell, and a value
	// receiver String must not run on a nil pointer.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return append(cells, nil)
		}
		elem := rv.Elem().Interface()
		if _, ok := elem.(fmt.Stringer); ok || !isStringer(v) {
			return appendCells(cells, elem)
		}
	}

	switch val := v.(type) {
	case nil:
		return append(cells, nil)
	case Mapping:
		for _, p := range val {
			cells = appendCells(cells, p.Value)
		}
		return cells
	case []interface{}:
		for _, item := range val {
			cells = appendCells(cells, item)
		}
		return cells
	case string, bool, time.Time, time.Duration, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return append(cells, val)
	case fmt.Stringer:
		return append(cells, val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return append(cells, nil)
		}
		return appendCells(cells, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			cells = appendCells(cells, rv.Index(i).Interface())
		}
		return cells
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return mapKeyLess(keys[i], keys[j]) })
		for _, k := range keys {
			cells = appendCells(cells, rv.MapIndex(k).Interface())
		}
		return cells
	case reflect.String:
		return append(cells, rv.String())
	case reflect.Bool:
		return append(cells, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(cells, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return append(cells, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return append(cells, rv.Float())
	}
	return append(cells, fmt.Sprint(v))
}

func isStringer(v interface{}) bool {
	_, ok := v.(fmt.Stringer)
	return ok
}

// mapKeyLess orders numeric keys numerically and everything else by its
// printed form.
func mapKeyLess(a, b reflect.Value) bool {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return a.Int() < b.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return a.Uint() < b.Uint()
		case reflect.Float32, reflect.Float64:
			return a.Float() < b.Float()
		case reflect.String:
			return a.String() < b.String()
		}
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}
