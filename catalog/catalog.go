package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"flatdb/dberror"
	"flatdb/schema"
	"flatdb/storage"
)

// File extensions of the three artifacts in a table directory.
const (
	SchemaExt = ".schema"
	RowsExt   = ".rows"
	AuxExt    = ".aux"
)

// Catalog manages the table directories of one database. It keeps no
// schema cache: every lookup reads the schema file again.
type Catalog struct {
	dir string
}

// New opens the catalog of an existing database directory.
func New(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberror.New("open", dberror.ErrDatabaseNotFound, "%s", dir)
		}
		return nil, dberror.Wrap("open", dberror.ErrIO, err)
	}
	if !info.IsDir() {
		return nil, dberror.New("open", dberror.ErrDatabaseNotFound, "%s is not a directory", dir)
	}
	return &Catalog{dir: dir}, nil
}

// Dir is the database directory.
func (c *Catalog) Dir() string { return c.dir }

// ValidateName rejects table and database names that are not a single
// plain path element.
func ValidateName(name string) error {
	switch {
	case name == "":
		return dberror.New("", dberror.ErrInvalidName, "name is empty")
	case strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "."):
		return dberror.New("", dberror.ErrInvalidName, "%q", name)
	case len(name) > schema.IdentifierSize:
		return dberror.New("", dberror.ErrInvalidName, "%q is longer than %d bytes", name, schema.IdentifierSize)
	}
	return nil
}

func (c *Catalog) tableDir(name string) string {
	return filepath.Join(c.dir, name)
}

// SchemaPath returns the path of a table's schema file.
func (c *Catalog) SchemaPath(name string) string {
	return filepath.Join(c.tableDir(name), name+SchemaExt)
}

// RowsPath returns the path of a table's row file.
func (c *Catalog) RowsPath(name string) string {
	return filepath.Join(c.tableDir(name), name+RowsExt)
}

// AuxPath returns the path of a table's auxiliary file, which is created
// empty and otherwise left alone.
func (c *Catalog) AuxPath(name string) string {
	return filepath.Join(c.tableDir(name), name+AuxExt)
}

// CreateTable creates a new table
func (c *Catalog) CreateTable(name string, t *schema.Table) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	dir := c.tableDir(name)
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return dberror.New("create table", dberror.ErrAlreadyExists, "table '%s'", name)
		}
		return dberror.Wrap("create table", dberror.ErrIO, err)
	}

	data, err := t.MarshalBinary()
	if err == nil {
		err = os.WriteFile(c.SchemaPath(name), data, 0644)
	}
	if err == nil {
		err = os.WriteFile(c.AuxPath(name), nil, 0644)
	}
	if err == nil {
		err = storage.NewRowFile(c.RowsPath(name), storage.NewLayout(t)).Create()
	}
	if err != nil {
		os.RemoveAll(dir)
		return dberror.Wrap("create table", dberror.ErrIO, err)
	}
	t.Name = name
	return nil
}

// GetTable reads a table schema from disk.
func (c *Catalog) GetTable(name string) (*schema.Table, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.SchemaPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberror.New("load schema", dberror.ErrSchemaNotFound, "table '%s'", name)
		}
		return nil, dberror.Wrap("load schema", dberror.ErrIO, err)
	}
	t, err := schema.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("table '%s': %w", name, err)
	}
	t.Name = name
	return t, nil
}

// TableExists checks if a table exists
func (c *Catalog) TableExists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(c.SchemaPath(name))
	return err == nil
}

// Rows returns the row file of a loaded table.
func (c *Catalog) Rows(t *schema.Table) *storage.RowFile {
	return storage.NewRowFile(c.RowsPath(t.Name), storage.NewLayout(t))
}

// StageSchema stages t as the new contents of its schema file.
func (c *Catalog) StageSchema(swap *storage.SwapSet, t *schema.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := t.MarshalBinary()
	if err != nil {
		return dberror.Wrap("save schema", dberror.ErrIO, err)
	}
	return swap.Stage(c.SchemaPath(t.Name), data)
}

// DropTable removes a table directory with everything in it.
func (c *Catalog) DropTable(name string) error {
	if !c.TableExists(name) {
		return dberror.New("drop table", dberror.ErrSchemaNotFound, "table '%s'", name)
	}
	return dberror.Wrap("drop table", dberror.ErrIO, os.RemoveAll(c.tableDir(name)))
}

// RenameTable moves a table directory and renames its three files.
func (c *Catalog) RenameTable(oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	if !c.TableExists(oldName) {
		return dberror.New("rename table", dberror.ErrSchemaNotFound, "table '%s'", oldName)
	}
	newDir := c.tableDir(newName)
	if _, err := os.Stat(newDir); err == nil {
		return dberror.New("rename table", dberror.ErrAlreadyExists, "table '%s'", newName)
	}
	if err := os.Rename(c.tableDir(oldName), newDir); err != nil {
		return dberror.Wrap("rename table", dberror.ErrIO, err)
	}
	for _, ext := range []string{SchemaExt, RowsExt, AuxExt} {
		from := filepath.Join(newDir, oldName+ext)
		to := filepath.Join(newDir, newName+ext)
		if err := os.Rename(from, to); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return dberror.Wrap("rename table", dberror.ErrIO, err)
		}
	}
	return nil
}

// ListTables returns the names of all tables, sorted.
func (c *Catalog) ListTables() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, dberror.Wrap("list tables", dberror.ErrIO, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && c.TableExists(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadAll reads every table schema. Schema files are read in parallel.
func (c *Catalog) LoadAll() ([]*schema.Table, error) {
	names, err := c.ListTables()
	if err != nil {
		return nil, err
	}
	tables := make([]*schema.Table, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			t, err := c.GetTable(name)
			tables[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Referencing returns the tables holding a foreign key into name.
func (c *Catalog) Referencing(name string) ([]*schema.Table, error) {
	all, err := c.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []*schema.Table
	for _, t := range all {
		if len(t.References(name)) > 0 {
			out = append(out, t)
		}
	}
	return out, nil
}
