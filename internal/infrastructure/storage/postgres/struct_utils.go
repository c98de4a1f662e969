package postgres

import (
	"reflect"
	"sync"
)

// Columns returns the "db" tagged column names of T, walking embedded structs.
func Columns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	meta := metadataFor(t)
	cols := make([]string, 0, len(meta.fields))
	for _, idx := range meta.embedded {
		cols = append(cols, columnsOf(t.Field(idx).Type)...)
	}
	for _, f := range meta.fields {
		cols = append(cols, f.column)
	}
	return cols
}

type fieldInfo struct {
	index  int
	column string
}

type typeMetadata struct {
	fields   []fieldInfo
	embedded []int
}

var typeCache sync.Map // reflect.Type -> *typeMetadata

func metadataFor(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				meta.embedded = append(meta.embedded, i)
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, column: tag})
		}
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a column map using "db" tags.
// Fields tagged "-" (items, loaded relations) are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta.fields)+8)
	for _, idx := range meta.embedded {
		for k, val := range StructToMap(rv.Field(idx).Interface()) {
			res[k] = val
		}
	}
	for _, f := range meta.fields {
		res[f.column] = rv.Field(f.index).Interface()
	}
	return res
}
