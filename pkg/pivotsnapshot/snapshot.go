// Package pivotsnapshot exports the in-memory catalog to a SQLite file
// and re-imports one back, as a derived interchange format: the engine's
// primary storage stays purely in-memory, this package is an opt-in
// convenience for handing data to or receiving it from other SQLite
// tooling.
package pivotsnapshot

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlerr"
	"pivotsql/pkg/sqlvalue"
)

// ExportToSQLite walks every table in cat and writes its schema and rows
// into the SQLite database at path (created if missing), dropping and
// recreating each exported table; other tables already in the file are
// left in place. The export is flock-guarded so two processes sharing
// path don't interleave writes.
func ExportToSQLite(cat *catalog.Catalog, path string) (err error) {
	unlock, err := lockPath(path)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return sqlerr.Wrap(sqlerr.IO, err, "opening sqlite export file %q", path)
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	for _, name := range cat.TableNames() {
		t, ok := cat.Get(name)
		if !ok {
			continue
		}
		if err := exportTable(db, name, t); err != nil {
			return fmt.Errorf("exporting table %q: %w", name, err)
		}
	}
	return nil
}

func exportTable(db *sql.DB, name string, t *catalog.Table) error {
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return err
	}
	if _, err := db.Exec(createTableDDL(name, t.Schema)); err != nil {
		return err
	}

	placeholders := make([]string, len(t.Schema.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(placeholders, ", "))

	stmt, err := db.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	n := t.RowCount()
	for r := 0; r < n; r++ {
		row, err := t.GetRow(r)
		if err != nil {
			return err
		}
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = scalarToDriverValue(v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return nil
}

// ImportFromSQLite reads every table out of the SQLite database at path
// and recreates it in cat, overwriting any table of the same name.
func ImportFromSQLite(cat *catalog.Catalog, path string) (err error) {
	unlock, err := lockPath(path)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return sqlerr.Wrap(sqlerr.IO, err, "opening sqlite import file %q", path)
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	tableNames, err := sqliteTableNames(db)
	if err != nil {
		return err
	}
	for _, name := range tableNames {
		if err := importTable(cat, db, name); err != nil {
			return fmt.Errorf("importing table %q: %w", name, err)
		}
	}
	return nil
}

func sqliteTableNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func importTable(cat *catalog.Catalog, db *sql.DB, name string) error {
	cols, err := sqliteColumns(db, name)
	if err != nil {
		return err
	}
	schema := catalog.Schema{Columns: cols}
	cat.Drop(name) // ignore "does not exist"; re-creating either way
	if err := cat.Create(name, schema); err != nil {
		return err
	}
	t, _ := cat.Get(name)

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	scanDest := make([]interface{}, len(cols))
	scanVals := make([]sql.NullString, len(cols))
	for i := range scanDest {
		scanDest[i] = &scanVals[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return err
		}
		row := make([]sqlvalue.Scalar, len(cols))
		for i, c := range cols {
			if !scanVals[i].Valid {
				row[i] = sqlvalue.Null()
				continue
			}
			row[i] = sqlvalue.Cast(sqlvalue.Text(scanVals[i].String), c.Type)
		}
		if err := t.AppendRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func sqliteColumns(db *sql.DB, table string) ([]catalog.ColumnDef, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []catalog.ColumnDef
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, catalog.ColumnDef{
			Name:     name,
			Type:     sqliteTypeToDataType(ctype),
			Nullable: notNull == 0,
		})
	}
	return cols, rows.Err()
}

func sqliteTypeToDataType(ctype string) sqlvalue.DataType {
	switch strings.ToUpper(ctype) {
	case "INTEGER", "INT", "BIGINT":
		return sqlvalue.DataType{Base: sqlvalue.Int64}
	case "REAL", "FLOAT", "DOUBLE":
		return sqlvalue.DataType{Base: sqlvalue.Float64}
	case "BOOLEAN", "BOOL":
		return sqlvalue.DataType{Base: sqlvalue.Boolean}
	case "DATE":
		return sqlvalue.DataType{Base: sqlvalue.DateType}
	case "TIMESTAMP", "DATETIME":
		return sqlvalue.DataType{Base: sqlvalue.TimestampType}
	default:
		return sqlvalue.DataType{Base: sqlvalue.Utf8}
	}
}

func createTableDDL(name string, schema catalog.Schema) string {
	var cols []string
	for _, c := range schema.Columns {
		col := quoteIdent(c.Name) + " " + sqliteColumnType(c.Type)
		if !c.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
}

func sqliteColumnType(t sqlvalue.DataType) string {
	switch t.Base {
	case sqlvalue.Boolean:
		return "BOOLEAN"
	case sqlvalue.Int64:
		return "INTEGER"
	case sqlvalue.Float64, sqlvalue.Decimal:
		return "REAL"
	case sqlvalue.DateType:
		return "DATE"
	case sqlvalue.TimestampType:
		return "TIMESTAMP"
	case sqlvalue.TimeType:
		return "TEXT"
	case sqlvalue.IntervalType:
		return "TEXT"
	default:
		return "TEXT"
	}
}

func scalarToDriverValue(v sqlvalue.Scalar) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case sqlvalue.KindBoolean:
		return v.Bool()
	case sqlvalue.KindInt64:
		return v.Int()
	case sqlvalue.KindFloat64:
		return v.Float()
	default:
		return v.String()
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
