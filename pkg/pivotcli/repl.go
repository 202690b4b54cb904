package pivotcli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/pivotsql"
	"pivotsql/pkg/sqlvalue"
)

// REPL drives a read-eval-print loop over a pivotsql.Engine: it reads
// complete statements via a Shell, executes them, and prints results as
// an ASCII table (queries) or a row count (DDL/DML), plus a handful of
// dot commands for catalog introspection.
type REPL struct {
	engine *pivotsql.Engine
	shell  *Shell

	output    io.Writer
	errOutput io.Writer

	running       bool
	exitRequested bool
}

// NewREPL creates a REPL over a fresh in-memory Engine, reading from
// stdin and writing to output/errOutput.
func NewREPL(output, errOutput io.Writer) *REPL {
	return NewREPLWithEngine(pivotsql.New(), os.Stdin, output, errOutput)
}

// NewREPLWithInput is NewREPL with a custom input stream, useful for
// tests or scripted operation.
func NewREPLWithInput(input io.Reader, output, errOutput io.Writer) *REPL {
	return NewREPLWithEngine(pivotsql.New(), input, output, errOutput)
}

// NewREPLWithEngine builds a REPL over a caller-supplied Engine, letting
// callers apply their own Config (cache capacity, preloaded tables)
// before the loop starts.
func NewREPLWithEngine(engine *pivotsql.Engine, input io.Reader, output, errOutput io.Writer) *REPL {
	return &REPL{
		engine: engine,
		shell:  NewShell(input, output, errOutput),
		output: output, errOutput: errOutput,
	}
}

// Engine returns the REPL's underlying engine, for preloading tables
// before Run is called.
func (r *REPL) Engine() *pivotsql.Engine { return r.engine }

// Run starts the loop, reading and executing statements until EOF or
// ".exit".
func (r *REPL) Run() {
	r.running = true
	r.exitRequested = false

	fmt.Fprintln(r.output, "pivotsql")
	fmt.Fprintln(r.output, `Enter ".help" for usage hints.`)

	for r.running && !r.exitRequested {
		stmt, eof := r.shell.ReadStatement()

		if eof && stmt == "" {
			fmt.Fprintln(r.output)
			break
		}

		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			if eof {
				break
			}
			continue
		}

		if strings.HasPrefix(stmt, ".") {
			r.handleDotCommand(stmt)
		} else if err := r.ExecuteStatement(stmt); err != nil {
			r.printError(err)
		}

		if eof {
			break
		}
	}

	r.running = false
}

// ExecuteStatement runs one SQL statement and prints its result.
func (r *REPL) ExecuteStatement(sql string) error {
	result, err := r.engine.Execute(sql)
	if err != nil {
		return err
	}
	r.displayResult(result)
	return nil
}

func (r *REPL) displayResult(result pivotsql.Result) {
	if len(result.Columns) == 0 {
		if result.Message != "" {
			fmt.Fprintln(r.output, result.Message)
		} else if result.RowsAffected > 0 {
			fmt.Fprintf(r.output, "Rows affected: %d\n", result.RowsAffected)
		}
		return
	}
	r.displayTable(result.Columns, result.Rows)
}

func (r *REPL) displayTable(columns []string, rows [][]sqlvalue.Scalar) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, v := range row {
			if i < len(widths) {
				if s := formatValue(v); len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
	}

	r.printSeparator(widths)
	r.printHeaderRow(columns, widths)
	r.printSeparator(widths)
	for _, row := range rows {
		r.printDataRow(row, widths)
	}
	r.printSeparator(widths)
	fmt.Fprintf(r.output, "%d row(s)\n", len(rows))
}

func (r *REPL) printSeparator(widths []int) {
	fmt.Fprint(r.output, "+")
	for _, w := range widths {
		fmt.Fprint(r.output, strings.Repeat("-", w+2))
		fmt.Fprint(r.output, "+")
	}
	fmt.Fprintln(r.output)
}

func (r *REPL) printHeaderRow(values []string, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, v := range values {
		fmt.Fprintf(r.output, " %-*s |", widths[i], v)
	}
	fmt.Fprintln(r.output)
}

func (r *REPL) printDataRow(row []sqlvalue.Scalar, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, v := range row {
		fmt.Fprintf(r.output, " %-*s |", widths[i], formatValue(v))
	}
	fmt.Fprintln(r.output)
}

func formatValue(v sqlvalue.Scalar) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}

func (r *REPL) handleDotCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		r.exitRequested = true
	case ".help":
		r.printHelp()
	case ".tables":
		r.showTables()
	case ".schema":
		if len(parts) > 1 {
			r.showSchema(parts[1])
		} else {
			r.showAllSchemas()
		}
	default:
		fmt.Fprintf(r.errOutput, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(r.errOutput, `Use ".help" for usage hints.`)
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, `
.exit              Exit this program
.help              Show this help message
.quit              Exit this program
.schema [TABLE]    Show CREATE statement for table(s)
.tables            List all tables

Enter SQL statements terminated with a semicolon.
Multi-line statements are supported.`)
}

func (r *REPL) showTables() {
	names := r.engine.Catalog().TableNames()
	if len(names) == 0 {
		fmt.Fprintln(r.output, "(no tables)")
		return
	}
	for _, name := range names {
		fmt.Fprintln(r.output, name)
	}
}

func (r *REPL) showSchema(tableName string) {
	t, ok := r.engine.Catalog().Get(tableName)
	if !ok {
		fmt.Fprintf(r.errOutput, "Error: no such table: %s\n", tableName)
		return
	}
	fmt.Fprintln(r.output, generateCreateSQL(tableName, t.Schema))
}

func (r *REPL) showAllSchemas() {
	for _, name := range r.engine.Catalog().TableNames() {
		if t, ok := r.engine.Catalog().Get(name); ok {
			fmt.Fprintln(r.output, generateCreateSQL(name, t.Schema))
		}
	}
}

func generateCreateSQL(name string, schema catalog.Schema) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(name)
	sb.WriteString(" (")
	for i, c := range schema.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteString(" ")
		sb.WriteString(c.Type.String())
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}
	sb.WriteString(");")
	return sb.String()
}

func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "Error: %v\n", err)
}
