package postgres

import (
	"reflect"
	"sync"
)

// structMeta caches per-type reflection results. Populated on first
// use of a type, read-only afterwards.
type structMeta struct {
	fields   []structField
	embedded []int
}

type structField struct {
	index  int
	column string
}

var metaCache sync.Map // reflect.Type -> *structMeta

func metaFor(t reflect.Type) *structMeta {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*structMeta)
	}

	meta := &structMeta{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				meta.embedded = append(meta.embedded, i)
				continue
			}
			col := f.Tag.Get("db")
			if col == "" || col == "-" {
				continue
			}
			meta.fields = append(meta.fields, structField{index: i, column: col})
		}
	}

	metaCache.Store(t, meta)
	return meta
}

// ExtractDBColumns lists the column names declared by T's "db" tags,
// embedded structs included. Repositories call it once at construction
// to build their SELECT lists.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	meta := metaFor(t)
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		cols = append(cols, f.column)
	}
	for _, i := range meta.embedded {
		cols = append(cols, columnsOf(t.Field(i).Type)...)
	}
	return cols
}

// StructToMap turns a struct into a column->value map following the
// same "db" tag rules as ExtractDBColumns. Untagged and "-" fields are
// skipped. Non-structs yield nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metaFor(rv.Type())
	out := make(map[string]any, len(meta.fields))

	for _, f := range meta.fields {
		out[f.column] = rv.Field(f.index).Interface()
	}
	for _, i := range meta.embedded {
		for k, val := range StructToMap(rv.Field(i).Interface()) {
			out[k] = val
		}
	}

	return out
}
