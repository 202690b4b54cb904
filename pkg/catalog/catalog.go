package catalog

import (
	"sort"
	"strings"
	"sync"

	"pivotsql/pkg/sqlerr"
)

// Catalog is a case-insensitive mapping from table name to Table. Keys
// are stored uppercased; the engine runs single-threaded, but the mutex
// guards against accidental concurrent misuse rather than being
// load-bearing for correctness.
type Catalog struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

func key(name string) string { return strings.ToUpper(name) }

// Create registers a new table, failing if name already exists.
func (c *Catalog) Create(name string, schema Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(name)
	if _, ok := c.tables[k]; ok {
		return sqlerr.New(sqlerr.SQL, "table %q already exists", name)
	}
	c.tables[k] = NewTable(schema)
	return nil
}

// CreateIfNotExists registers a new table unless name already exists, in
// which case it is a no-op (used for CREATE TABLE IF NOT EXISTS).
func (c *Catalog) CreateIfNotExists(name string, schema Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(name)
	if _, ok := c.tables[k]; ok {
		return
	}
	c.tables[k] = NewTable(schema)
}

// Drop removes a table, failing if it does not exist.
func (c *Catalog) Drop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(name)
	if _, ok := c.tables[k]; !ok {
		return sqlerr.New(sqlerr.SQL, "table %q does not exist", name)
	}
	delete(c.tables, k)
	return nil
}

// Get returns the table registered under name, if any.
func (c *Catalog) Get(name string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[key(name)]
	return t, ok
}

// TableExists reports whether name is registered.
func (c *Catalog) TableExists(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// TableNames returns every registered table name, sorted for determinism.
func (c *Catalog) TableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for k := range c.tables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
