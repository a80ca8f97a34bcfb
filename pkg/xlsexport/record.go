package xlsexport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// ErrUnknownAttribute is returned when a record has no attribute with the requested name.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Record is the capability a collection element needs to be exported.
// Types that do not implement it are adapted by reflection, see RecordOf.
type Record interface {
	// RespondsTo reports whether the record exposes an attribute called name.
	RespondsTo(name string) bool
	// Attribute returns the value of the named attribute.
	Attribute(name string) (interface{}, error)
}

// RecordOf adapts v to the Record interface.
// Structs (and pointers to structs) expose their exported fields under the
// `xls` tag or the snake_case field name, then their zero-argument methods
// returning (T) or (T, error). Maps with string keys expose their keys.
func RecordOf(v interface{}) Record {
	if r, ok := v.(Record); ok {
		return r
	}
	return &reflectRecord{item: v, val: reflect.ValueOf(v)}
}

type reflectRecord struct {
	item interface{}
	val  reflect.Value
}

// Unwrap returns the adapted value.
func (r *reflectRecord) Unwrap() interface{} { return r.item }

func (r *reflectRecord) RespondsTo(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *reflectRecord) Attribute(name string) (interface{}, error) {
	get, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q on %T", ErrUnknownAttribute, name, r.item)
	}
	return get()
}

func (r *reflectRecord) lookup(name string) (func() (interface{}, error), bool) {
	if !r.val.IsValid() {
		return nil, false
	}
	// A nil pointer has no attributes, not even its methods.
	if r.val.Kind() == reflect.Ptr && r.val.IsNil() {
		return nil, false
	}

	// Methods may be declared on the pointer receiver, so look there first.
	if idx, ok := attributesOf(r.val.Type()).methods[name]; ok {
		m := r.val.Method(idx)
		return func() (interface{}, error) { return callAttribute(m) }, true
	}

	v := r.val
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		attrs := attributesOf(v.Type())
		if index, ok := attrs.fields[name]; ok {
			f := v.FieldByIndex(index)
			return func() (interface{}, error) { return f.Interface(), nil }, true
		}
		if idx, ok := attrs.methods[name]; ok {
			m := v.Method(idx)
			return func() (interface{}, error) { return callAttribute(m) }, true
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if mv.IsValid() {
			return func() (interface{}, error) { return mv.Interface(), nil }, true
		}
	}
	return nil, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func callAttribute(m reflect.Value) (interface{}, error) {
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// typeAttributes maps attribute names to struct field indices and method indices.
type typeAttributes struct {
	fields  map[string][]int
	methods map[string]int
	order   []string
}

var attributeCache sync.Map // reflect.Type -> *typeAttributes

func attributesOf(t reflect.Type) *typeAttributes {
	if cached, ok := attributeCache.Load(t); ok {
		return cached.(*typeAttributes)
	}

	attrs := &typeAttributes{
		fields:  make(map[string][]int),
		methods: make(map[string]int),
	}
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, attrs)
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !isAttributeMethod(m.Type) {
			continue
		}
		name := SnakeCase(m.Name)
		if _, taken := attrs.fields[name]; !taken {
			attrs.methods[name] = i
		}
	}

	cached, _ := attributeCache.LoadOrStore(t, attrs)
	return cached.(*typeAttributes)
}

func collectFields(t reflect.Type, parent []int, attrs *typeAttributes) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		// Skip unexported
		if field.PkgPath != "" {
			continue
		}
		index := append(append([]int{}, parent...), i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, attrs)
			continue
		}
		name, skip := fieldAttributeName(field)
		if skip {
			continue
		}
		if _, dup := attrs.fields[name]; dup {
			continue
		}
		attrs.fields[name] = index
		attrs.order = append(attrs.order, name)
	}
}

func fieldAttributeName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("xls")
	if tag == "-" {
		return "", true
	}
	if name := strings.Split(tag, ",")[0]; name != "" {
		return name, false
	}
	return SnakeCase(field.Name), false
}

// isAttributeMethod accepts methods (receiver included) of the form
// func() T or func() (T, error).
func isAttributeMethod(mt reflect.Type) bool {
	if mt.NumIn() != 1 {
		return false
	}
	switch mt.NumOut() {
	case 1:
		return true
	case 2:
		return mt.Out(1) == errorType
	}
	return false
}

// SnakeCase converts a Go identifier such as PublishedOn or AuthorID into
// published_on and author_id.
func SnakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteRune('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
