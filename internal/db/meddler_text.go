package db

import (
	"database/sql"
	"fmt"
)

// textMeddler stores a value as its canonical text form.
// Both T and *T fields are supported; a nil *T maps to NULL.
type textMeddler[T any] struct {
	parse  func(string) (T, error)
	format func(T) string
}

func (m textMeddler[T]) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

func (m textMeddler[T]) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	if ptr, ok := fieldAddr.(**T); ok {
		if !ns.Valid {
			*ptr = nil
			return nil
		}
		v, err := m.parse(ns.String)
		if err != nil {
			return err
		}
		*ptr = &v
		return nil
	}

	if ptr, ok := fieldAddr.(*T); ok {
		if !ns.Valid {
			var zero T
			*ptr = zero
			return nil
		}
		v, err := m.parse(ns.String)
		if err != nil {
			return err
		}
		*ptr = v
		return nil
	}

	var zero T
	return fmt.Errorf("expected *%T or **%T, got %T", zero, zero, fieldAddr)
}

func (m textMeddler[T]) PreWrite(field interface{}) (saveValue interface{}, err error) {
	if ptr, ok := field.(*T); ok {
		if ptr == nil {
			return nil, nil
		}
		return m.format(*ptr), nil
	}

	if v, ok := field.(T); ok {
		return m.format(v), nil
	}

	var zero T
	return nil, fmt.Errorf("expected %T or *%T, got %T", zero, zero, field)
}
