// Package pivotffi holds the handle bookkeeping behind the C-ABI shell
// that cmd/pivotffi exposes: every engine and result crossing the cgo
// boundary is kept alive as a Go value addressed by an opaque uintptr
// handle (via runtime/cgo.Handle), so the C side never touches a raw Go
// pointer. This file has no cgo dependency itself, so it builds and
// tests without a C compiler; cmd/pivotffi is the cgo_ffi-tagged layer
// that turns these into //export C functions.
package pivotffi

import (
	"runtime/cgo"

	"pivotsql/pkg/pivotsql"
)

type resultHandle struct {
	result pivotsql.Result
}

// NewEngine creates a fresh in-memory engine and returns its handle.
func NewEngine() uintptr {
	return uintptr(cgo.NewHandle(pivotsql.New()))
}

// FreeEngine releases an engine handle created by NewEngine.
func FreeEngine(handle uintptr) {
	if handle == 0 {
		return
	}
	cgo.Handle(handle).Delete()
}

// Execute runs sql against the engine behind handle and returns a result
// handle, or 0 on any error (engine not found, parse/exec failure).
func Execute(handle uintptr, sql string) uintptr {
	engine, ok := engineFromHandle(handle)
	if !ok {
		return 0
	}
	result, err := engine.Execute(sql)
	if err != nil {
		return 0
	}
	return uintptr(cgo.NewHandle(&resultHandle{result: result}))
}

// RowCount returns the row count of the result behind handle, or 0 if
// handle is invalid.
func RowCount(handle uintptr) int {
	rh, ok := resultFromHandle(handle)
	if !ok {
		return 0
	}
	return len(rh.result.Rows)
}

// ColumnCount returns the column count of the result behind handle.
func ColumnCount(handle uintptr) int {
	rh, ok := resultFromHandle(handle)
	if !ok {
		return 0
	}
	return len(rh.result.Columns)
}

// ColumnName returns the name of column col, and false if handle or col
// is out of range.
func ColumnName(handle uintptr, col int) (string, bool) {
	rh, ok := resultFromHandle(handle)
	if !ok || col < 0 || col >= len(rh.result.Columns) {
		return "", false
	}
	return rh.result.Columns[col], true
}

// Value returns the display string for (row, col), whether the cell
// exists, and whether it is NULL.
func Value(handle uintptr, row, col int) (value string, ok bool, isNull bool) {
	rh, found := resultFromHandle(handle)
	if !found || row < 0 || row >= len(rh.result.Rows) {
		return "", false, false
	}
	r := rh.result.Rows[row]
	if col < 0 || col >= len(r) {
		return "", false, false
	}
	v := r[col]
	if v.IsNull() {
		return "", true, true
	}
	return v.String(), true, false
}

// FreeResult releases a result handle created by Execute.
func FreeResult(handle uintptr) {
	if handle == 0 {
		return
	}
	cgo.Handle(handle).Delete()
}

func engineFromHandle(handle uintptr) (*pivotsql.Engine, bool) {
	if handle == 0 {
		return nil, false
	}
	e, ok := cgo.Handle(handle).Value().(*pivotsql.Engine)
	return e, ok
}

func resultFromHandle(handle uintptr) (*resultHandle, bool) {
	if handle == 0 {
		return nil, false
	}
	rh, ok := cgo.Handle(handle).Value().(*resultHandle)
	return rh, ok
}
