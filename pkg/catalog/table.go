package catalog

import (
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// columnStorage holds one column's data: exactly one of the four typed
// buffers is consulted for any row, chosen by the column's DataType
// (sqlvalue.DataType.Buffer()); the others stay at their zero length.
// Interval values are stored in utf8s via sqlvalue.IntervalToStorageString,
// so the serialization-through-string is part of the contract.
type columnStorage struct {
	typ      sqlvalue.DataType
	booleans []bool
	int64s   []int64
	float64s []float64
	utf8s    []string
	valid    validityBitmask
}

func newColumnStorage(typ sqlvalue.DataType) *columnStorage {
	return &columnStorage{typ: typ}
}

func (c *columnStorage) len() int { return c.valid.len() }

func (c *columnStorage) pushNeutral(isValid bool) {
	switch c.typ.Buffer() {
	case sqlvalue.BufferBool:
		c.booleans = append(c.booleans, false)
	case sqlvalue.BufferInt64:
		c.int64s = append(c.int64s, 0)
	case sqlvalue.BufferFloat64:
		c.float64s = append(c.float64s, 0)
	case sqlvalue.BufferUtf8:
		c.utf8s = append(c.utf8s, "")
	}
	c.valid.push(isValid)
}

// pushValue appends v (already coerced to c.typ) to the typed buffer and
// sets the validity bit according to whether v is null.
func (c *columnStorage) pushValue(v sqlvalue.Scalar) {
	if v.IsNull() {
		c.pushNeutral(false)
		return
	}
	switch c.typ.Buffer() {
	case sqlvalue.BufferBool:
		c.booleans = append(c.booleans, v.Bool())
	case sqlvalue.BufferInt64:
		c.int64s = append(c.int64s, v.Int())
	case sqlvalue.BufferFloat64:
		c.float64s = append(c.float64s, v.Float())
	case sqlvalue.BufferUtf8:
		if c.typ.Base == sqlvalue.IntervalType {
			c.utf8s = append(c.utf8s, sqlvalue.IntervalToStorageString(v.Interval()))
		} else {
			c.utf8s = append(c.utf8s, v.Text())
		}
	}
	c.valid.push(true)
}

// setValue overwrites row idx (which must be < len, or exactly len to
// tail-extend, tolerating laziness the way the column store's set_value
// does) with v coerced to c.typ.
func (c *columnStorage) setValue(idx int, v sqlvalue.Scalar) {
	if idx == c.len() {
		c.pushValue(v)
		return
	}
	if idx < 0 || idx >= c.len() {
		return
	}
	if v.IsNull() {
		c.valid.set(idx, false)
		switch c.typ.Buffer() {
		case sqlvalue.BufferBool:
			c.booleans[idx] = false
		case sqlvalue.BufferInt64:
			c.int64s[idx] = 0
		case sqlvalue.BufferFloat64:
			c.float64s[idx] = 0
		case sqlvalue.BufferUtf8:
			c.utf8s[idx] = ""
		}
		return
	}
	c.valid.set(idx, true)
	switch c.typ.Buffer() {
	case sqlvalue.BufferBool:
		c.booleans[idx] = v.Bool()
	case sqlvalue.BufferInt64:
		c.int64s[idx] = v.Int()
	case sqlvalue.BufferFloat64:
		c.float64s[idx] = v.Float()
	case sqlvalue.BufferUtf8:
		if c.typ.Base == sqlvalue.IntervalType {
			c.utf8s[idx] = sqlvalue.IntervalToStorageString(v.Interval())
		} else {
			c.utf8s[idx] = v.Text()
		}
	}
}

// get reconstructs the Scalar stored at row idx, or Null if the validity
// bit is cleared.
func (c *columnStorage) get(idx int) sqlvalue.Scalar {
	if !c.valid.get(idx) {
		return sqlvalue.Null()
	}
	switch c.typ.Base {
	case sqlvalue.Boolean:
		return sqlvalue.Bool(c.booleans[idx])
	case sqlvalue.Int64:
		return sqlvalue.Int(c.int64s[idx])
	case sqlvalue.Float64, sqlvalue.Decimal:
		return sqlvalue.Float(c.float64s[idx])
	case sqlvalue.Utf8:
		return sqlvalue.Text(c.utf8s[idx])
	case sqlvalue.DateType:
		return sqlvalue.Date(c.int64s[idx])
	case sqlvalue.TimestampType:
		return sqlvalue.Timestamp(c.int64s[idx])
	case sqlvalue.TimeType:
		return sqlvalue.Time(c.int64s[idx])
	case sqlvalue.IntervalType:
		if iv, ok := sqlvalue.IntervalFromStorageString(c.utf8s[idx]); ok {
			return sqlvalue.IntervalVal(iv)
		}
		return sqlvalue.Null()
	default:
		return sqlvalue.Null()
	}
}

// Table is a schema plus per-column storage plus a row count.
type Table struct {
	Schema  Schema
	columns []*columnStorage
}

// NewTable creates an empty table for the given schema.
func NewTable(schema Schema) *Table {
	t := &Table{Schema: schema}
	for _, c := range schema.Columns {
		t.columns = append(t.columns, newColumnStorage(c.Type))
	}
	return t
}

// RowCount returns the table's current row count.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].len()
}

// coerceOnAppend casts v to col's declared type, raising sqlerr.Type when
// a non-NULL string value fails to parse against a temporal target
// (date/timestamp/time) rather than silently degrading to NULL the way a
// bare sqlvalue.Cast does.
func coerceOnAppend(v sqlvalue.Scalar, col ColumnDef) (sqlvalue.Scalar, error) {
	cv := sqlvalue.Cast(v, col.Type)
	if cv.IsNull() && !v.IsNull() && v.Kind() == sqlvalue.KindUtf8 {
		switch col.Type.Base {
		case sqlvalue.DateType, sqlvalue.TimestampType, sqlvalue.TimeType:
			return sqlvalue.Null(), sqlerr.New(sqlerr.Type, "cannot parse %q as %s for column %q", v.Text(), col.Type, col.Name)
		}
	}
	return cv, nil
}

// AppendRow validates arity, rejects NULL on NOT NULL columns, coerces
// each value to its column's declared type, and appends it.
func (t *Table) AppendRow(values []sqlvalue.Scalar) error {
	if err := t.Schema.validateRowCount(len(values)); err != nil {
		return err
	}
	coerced := make([]sqlvalue.Scalar, len(values))
	for i, v := range values {
		col := t.Schema.Columns[i]
		cv, err := coerceOnAppend(v, col)
		if err != nil {
			return err
		}
		if cv.IsNull() && !col.Nullable {
			return sqlerr.New(sqlerr.Null, "column %q does not allow NULL", col.Name)
		}
		coerced[i] = cv
	}
	for i, v := range coerced {
		t.columns[i].pushValue(v)
	}
	return nil
}

// GetValue returns the value at (row, col), erroring if either index is
// out of range.
func (t *Table) GetValue(row, col int) (sqlvalue.Scalar, error) {
	if col < 0 || col >= len(t.columns) {
		return sqlvalue.Null(), sqlerr.New(sqlerr.IndexOutOfBounds, "column index %d out of range", col)
	}
	if row < 0 || row >= t.columns[col].len() {
		return sqlvalue.Null(), sqlerr.New(sqlerr.IndexOutOfBounds, "row index %d out of range", row)
	}
	return t.columns[col].get(row), nil
}

// GetRow returns every column's value for row.
func (t *Table) GetRow(row int) ([]sqlvalue.Scalar, error) {
	out := make([]sqlvalue.Scalar, len(t.columns))
	for i := range t.columns {
		v, err := t.GetValue(row, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SetValue coerces v to the target column's type and writes it
// positionally, tolerating a tail-extending write (row == RowCount()).
func (t *Table) SetValue(row, col int, v sqlvalue.Scalar) error {
	if col < 0 || col >= len(t.columns) {
		return sqlerr.New(sqlerr.IndexOutOfBounds, "column index %d out of range", col)
	}
	colDef := t.Schema.Columns[col]
	cv, err := coerceOnAppend(v, colDef)
	if err != nil {
		return err
	}
	if cv.IsNull() && !colDef.Nullable {
		return sqlerr.New(sqlerr.Null, "column %q does not allow NULL", colDef.Name)
	}
	t.columns[col].setValue(row, cv)
	return nil
}

// AddColumn appends a new column, backfilling every existing row with NULL.
func (t *Table) AddColumn(def ColumnDef) error {
	if t.Schema.HasColumn(def.Name) {
		return sqlerr.New(sqlerr.Schema, "duplicate column %q", def.Name)
	}
	cs := newColumnStorage(def.Type)
	n := t.RowCount()
	for i := 0; i < n; i++ {
		cs.pushNeutral(false)
	}
	t.Schema.Columns = append(t.Schema.Columns, def)
	t.columns = append(t.columns, cs)
	return nil
}

// DropColumn removes the column at idx; remaining column indices shift.
func (t *Table) DropColumn(idx int) error {
	if idx < 0 || idx >= len(t.columns) {
		return sqlerr.New(sqlerr.IndexOutOfBounds, "column index %d out of range", idx)
	}
	t.Schema.Columns = append(t.Schema.Columns[:idx], t.Schema.Columns[idx+1:]...)
	t.columns = append(t.columns[:idx], t.columns[idx+1:]...)
	return nil
}

// RenameColumn changes the display name of the column at idx.
func (t *Table) RenameColumn(idx int, newName string) error {
	if idx < 0 || idx >= len(t.columns) {
		return sqlerr.New(sqlerr.IndexOutOfBounds, "column index %d out of range", idx)
	}
	t.Schema.Columns[idx].Name = newName
	return nil
}

// DeleteRows rebuilds the table keeping only rows for which keep(row) is
// true, returning the number of rows removed. Used by DELETE.
func (t *Table) DeleteRows(keep func(row int) bool) int {
	n := t.RowCount()
	fresh := NewTable(t.Schema)
	removed := 0
	for r := 0; r < n; r++ {
		if keep(r) {
			row, _ := t.GetRow(r)
			_ = fresh.AppendRow(row)
		} else {
			removed++
		}
	}
	t.columns = fresh.columns
	return removed
}
