//go:build cgo_ffi

// Command pivotffi is not run directly; it is built with
// `go build -buildmode=c-shared -tags cgo_ffi` to produce a C-ABI shared
// library over pkg/pivotsql. The exported functions mirror
// original_source/src/ffi.rs's surface: create/free an engine, execute
// SQL, and walk the resulting rows as C strings.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"pivotsql/pkg/pivotffi"
)

//export pivot_engine_new
func pivot_engine_new() C.uintptr_t {
	return C.uintptr_t(pivotffi.NewEngine())
}

//export pivot_engine_free
func pivot_engine_free(handle C.uintptr_t) {
	pivotffi.FreeEngine(uintptr(handle))
}

//export pivot_engine_execute
func pivot_engine_execute(handle C.uintptr_t, sql *C.char) C.uintptr_t {
	if sql == nil {
		return 0
	}
	return C.uintptr_t(pivotffi.Execute(uintptr(handle), C.GoString(sql)))
}

//export pivot_result_row_count
func pivot_result_row_count(handle C.uintptr_t) C.int {
	return C.int(pivotffi.RowCount(uintptr(handle)))
}

//export pivot_result_column_count
func pivot_result_column_count(handle C.uintptr_t) C.int {
	return C.int(pivotffi.ColumnCount(uintptr(handle)))
}

//export pivot_result_column_name
func pivot_result_column_name(handle C.uintptr_t, col C.int) *C.char {
	name, ok := pivotffi.ColumnName(uintptr(handle), int(col))
	if !ok {
		return nil
	}
	return C.CString(name)
}

//export pivot_result_value
func pivot_result_value(handle C.uintptr_t, row, col C.int) *C.char {
	val, ok, isNull := pivotffi.Value(uintptr(handle), int(row), int(col))
	if !ok || isNull {
		return nil
	}
	return C.CString(val)
}

//export pivot_result_free
func pivot_result_free(handle C.uintptr_t) {
	pivotffi.FreeResult(uintptr(handle))
}

//export pivot_string_free
func pivot_string_free(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func main() {}
