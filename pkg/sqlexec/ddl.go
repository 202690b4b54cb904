package sqlexec

import (
	"fmt"

	"pivotsql/pkg/catalog"
	"pivotsql/pkg/sqlast"
)

// execCreateTable builds a catalog.Schema from s.Columns and registers
// it, recording any column DEFAULT expressions for execInsert to consult
// when a column is omitted from an INSERT's column list.
func (e *Executor) execCreateTable(s *sqlast.CreateTableStatement) (QueryResult, error) {
	cols := make([]catalog.ColumnDef, len(s.Columns))
	defaults := make(map[int]sqlast.Expr)
	for i, c := range s.Columns {
		cols[i] = catalog.ColumnDef{Name: c.Name, Type: c.Type, Nullable: c.Nullable}
		if c.Default != nil {
			defaults[i] = c.Default
		}
	}
	schema := catalog.Schema{Columns: cols}

	if s.IfNotExists {
		e.cat.CreateIfNotExists(s.Name, schema)
	} else {
		if err := e.cat.Create(s.Name, schema); err != nil {
			return QueryResult{}, err
		}
	}
	if len(defaults) > 0 {
		e.defaults[tableKey(s.Name)] = defaults
	}
	return QueryResult{Message: fmt.Sprintf("table %s created", s.Name)}, nil
}

// execDropTable removes a table and its recorded defaults, if any.
func (e *Executor) execDropTable(s *sqlast.DropTableStatement) (QueryResult, error) {
	if s.IfExists && !e.cat.TableExists(s.Name) {
		return QueryResult{Message: fmt.Sprintf("table %s does not exist", s.Name)}, nil
	}
	if err := e.cat.Drop(s.Name); err != nil {
		return QueryResult{}, err
	}
	delete(e.defaults, tableKey(s.Name))
	e.invalidateCache(s.Name)
	return QueryResult{Message: fmt.Sprintf("table %s dropped", s.Name)}, nil
}

func tableKey(name string) string { return upper(name) }
