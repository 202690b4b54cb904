// Package pivotcsv imports and exports CSV against a table, the way a
// COPY statement would: LoadIntoTable infers or accepts an explicit
// schema and coerces every field through sqlvalue.Cast the same as a
// VALUES-list INSERT would, WriteTable is its inverse.
package pivotcsv

import (
	"encoding/csv"
	"fmt"
	"io"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// Options configures a CSV import/export; Delimiter defaults to ',' when
// left zero, while HasHeader is used as given (false for Options{}).
type Options struct {
	Delimiter rune
	HasHeader bool
}

// DefaultOptions returns the conventional comma-delimited, header-first
// CSV dialect.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HasHeader: true}
}

// LoadIntoTable reads CSV from r and creates a new table named name in
// cat, inferring an all-nullable Utf8 schema from the header row (or
// col0, col1, ... when HasHeader is false) unless schema is non-nil, in
// which case every field is coerced through sqlvalue.Cast against that
// column's declared type.
func LoadIntoTable(cat *catalog.Catalog, name string, r io.Reader, schema *catalog.Schema, opts Options) error {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // tolerate ragged rows; padded/truncated below

	records, err := reader.ReadAll()
	if err != nil {
		return sqlerr.Wrap(sqlerr.IO, err, "reading CSV")
	}

	var header []string
	if opts.HasHeader && len(records) > 0 {
		header = records[0]
		records = records[1:]
	}

	colCount := len(header)
	if colCount == 0 && len(records) > 0 {
		colCount = len(records[0])
	}

	var resolved catalog.Schema
	if schema != nil {
		resolved = *schema
	} else {
		cols := make([]catalog.ColumnDef, colCount)
		for i := range cols {
			colName := fmt.Sprintf("col%d", i)
			if i < len(header) {
				colName = header[i]
			}
			cols[i] = catalog.ColumnDef{Name: colName, Type: sqlvalue.DataType{Base: sqlvalue.Utf8}, Nullable: true}
		}
		resolved = catalog.Schema{Columns: cols}
	}

	if err := cat.Create(name, resolved); err != nil {
		return err
	}
	t, _ := cat.Get(name)

	for _, rec := range records {
		row := make([]sqlvalue.Scalar, len(resolved.Columns))
		for i, c := range resolved.Columns {
			if i >= len(rec) || rec[i] == "" {
				row[i] = sqlvalue.Null()
				continue
			}
			row[i] = sqlvalue.Cast(sqlvalue.Text(rec[i]), c.Type)
		}
		if err := t.AppendRow(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes every row of the named table to w as CSV, rendering
// NULL as an empty field exactly as LoadIntoTable reads one back as NULL.
func WriteTable(cat *catalog.Catalog, name string, w io.Writer, opts Options) error {
	t, ok := cat.Get(name)
	if !ok {
		return sqlerr.New(sqlerr.SQL, "table %q does not exist", name)
	}

	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}
	defer writer.Flush()

	if opts.HasHeader {
		header := make([]string, len(t.Schema.Columns))
		for i, c := range t.Schema.Columns {
			header[i] = c.Name
		}
		if err := writer.Write(header); err != nil {
			return err
		}
	}

	n := t.RowCount()
	for r := 0; r < n; r++ {
		row, err := t.GetRow(r)
		if err != nil {
			return err
		}
		record := make([]string, len(row))
		for i, v := range row {
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.String()
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
