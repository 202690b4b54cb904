// Package catalog implements the columnar, null-bitmask row store and the
// case-insensitive table catalog that backs it: ColumnDef/Schema describe
// a table's shape, Table holds its per-column typed buffers and validity
// bitmask, and Catalog maps table names to tables.
package catalog

import (
	"strings"

	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// ColumnDef is a single column's (name, type, nullability).
type ColumnDef struct {
	Name     string
	Type     sqlvalue.DataType
	Nullable bool
}

// Schema is an ordered list of column definitions. Column indices are
// stable; name lookup is case-insensitive and returns the first match.
type Schema struct {
	Columns []ColumnDef
}

// FindColumnIndex returns the index of the first column whose name
// matches name case-insensitively.
func (s *Schema) FindColumnIndex(name string) (int, bool) {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// FindColumn returns the first column definition matching name.
func (s *Schema) FindColumn(name string) (ColumnDef, bool) {
	i, ok := s.FindColumnIndex(name)
	if !ok {
		return ColumnDef{}, false
	}
	return s.Columns[i], true
}

// HasColumn reports whether name matches any column.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.FindColumnIndex(name)
	return ok
}

// validateRowCount panics is avoided; returns an error if values does not
// match the schema's column count, used by Table.AppendRow.
func (s *Schema) validateRowCount(n int) error {
	if n != len(s.Columns) {
		return sqlerr.New(sqlerr.Schema, "expected %d values, got %d", len(s.Columns), n)
	}
	return nil
}
