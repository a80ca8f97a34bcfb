package xlsexport

import (
	"reflect"
	"strings"
	"time"
)

// DefaultPrimaryKey is the identifier field used when a schema does not name one.
const DefaultPrimaryKey = "id"

// Schema describes the records of a collection.
type Schema interface {
	// PrimaryKey is the identifier field, exported as the first default column.
	PrimaryKey() string
	// FieldNames lists the content fields in export order. It does not
	// include the primary key.
	FieldNames() []string
	// New returns a zero record, used to evaluate the header scope of an
	// empty collection.
	New() interface{}
}

// StaticSchema is a Schema whose fields are known up front, e.g. from the
// column list of a SQL result.
type StaticSchema struct {
	Key       string
	Fields    []string
	Prototype func() interface{}
}

func (s StaticSchema) PrimaryKey() string {
	if s.Key == "" {
		return DefaultPrimaryKey
	}
	return s.Key
}

func (s StaticSchema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	copy(out, s.Fields)
	return out
}

func (s StaticSchema) New() interface{} {
	if s.Prototype == nil {
		fields := make(map[string]interface{}, len(s.Fields)+1)
		fields[s.PrimaryKey()] = nil
		for _, f := range s.Fields {
			fields[f] = nil
		}
		return fields
	}
	return s.Prototype()
}

// structSchema derives the schema from a struct type.
type structSchema struct {
	typ    reflect.Type
	key    string
	fields []string
}

// SchemaOf builds a Schema from a struct value or pointer. Content fields are
// the exported fields in declaration order, minus the primary key, fields
// tagged `xls:"-"` and foreign keys ending in _id.
func SchemaOf(prototype interface{}) Schema {
	t := reflect.TypeOf(prototype)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s := &structSchema{typ: t, key: DefaultPrimaryKey}
	if t == nil || t.Kind() != reflect.Struct {
		return s
	}
	attrs := attributesOf(t)
	for _, name := range attrs.order {
		if name == s.key || strings.HasSuffix(name, "_id") {
			continue
		}
		if isAssociation(t.FieldByIndex(attrs.fields[name]).Type) {
			continue
		}
		s.fields = append(s.fields, name)
	}
	return s
}

var timeType = reflect.TypeOf(time.Time{})

// isAssociation reports whether a field holds other records rather than a
// plain value: structs, pointers to structs and slices of those.
func isAssociation(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		if t.Kind() != reflect.Ptr && t.Elem().Kind() == reflect.Uint8 {
			return false
		}
		return isAssociation(t.Elem())
	case reflect.Struct:
		return t != timeType
	}
	return false
}

func (s *structSchema) PrimaryKey() string { return s.key }

func (s *structSchema) FieldNames() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *structSchema) New() interface{} {
	if s.typ == nil {
		return nil
	}
	return reflect.New(s.typ).Interface()
}
