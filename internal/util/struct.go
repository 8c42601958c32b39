package util

import (
	"fmt"
	"reflect"
)

// IsStructInitialized checks that every exported pointer, interface, map,
// slice or func field of the struct behind s is non-nil. Fields tagged
// `wire:"-"` are skipped.
func IsStructInitialized(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("struct pointer is nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("wire") == "-" {
			continue
		}

		//nolint:exhaustive // only nillable kinds are checked
		switch v.Field(i).Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.Field(i).IsNil() {
				return fmt.Errorf("struct field %q is not initialized", field.Name)
			}
		}
	}

	return nil
}
