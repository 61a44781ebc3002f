package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag is the struct tag naming a field's database column.
const ColumnTag = "db"

// StructTagValues lists the column names of a struct in field order.
func StructTagValues(input any) []string {
	var columns []string
	walkColumns(input, func(column string, _ reflect.Value) {
		columns = append(columns, column)
	})
	return columns
}

// StructToMap maps column names to field values, ready for an insert builder.
func StructToMap(input any) map[string]any {
	result := make(map[string]any)
	walkColumns(input, func(column string, value reflect.Value) {
		result[column] = value.Interface()
	})
	return result
}

func walkColumns(input any, fn func(column string, value reflect.Value)) {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fn(column, v.Field(i))
	}
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
