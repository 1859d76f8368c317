package database

import (
	"flatdb/schema"
)

// CreateTable creates a new table
func (db *Database) CreateTable(name string, t *schema.Table) error {
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == name {
			if _, err := t.Column(fk.RefColumn); err != nil {
				return wrapOp("create table", name, err)
			}
			continue
		}
		ref, err := db.catalog.GetTable(fk.RefTable)
		if err != nil {
			return wrapOp("create table", name, err)
		}
		if _, err := ref.Column(fk.RefColumn); err != nil {
			return wrapOp("create table", name, err)
		}
	}
	if err := db.catalog.CreateTable(name, t); err != nil {
		return wrapOp("create table", name, err)
	}
	db.warnTruncations(t)
	db.log.WithField("table", name).Debugf("created table with %d columns", len(t.Columns))
	return nil
}

// GetTable retrieves a table schema
func (db *Database) GetTable(name string) (*schema.Table, error) {
	t, err := db.catalog.GetTable(name)
	return t, wrapOp("describe", name, err)
}

// Describe is GetTable under the name used by listing tools.
func (db *Database) Describe(name string) (*schema.Table, error) {
	return db.GetTable(name)
}

// DescribeAll returns every table schema, sorted by name.
func (db *Database) DescribeAll() ([]*schema.Table, error) {
	return db.catalog.LoadAll()
}

// Tables returns the table names, sorted.
func (db *Database) Tables() ([]string, error) {
	return db.catalog.ListTables()
}

// DropTable removes a table and its files.
func (db *Database) DropTable(name string) error {
	if err := db.catalog.DropTable(name); err != nil {
		return wrapOp("drop table", name, err)
	}
	db.log.WithField("table", name).Debug("dropped table")
	return nil
}

// Truncate removes every row of a table, keeping its schema.
func (db *Database) Truncate(name string) error {
	_, rows, err := db.load("truncate", name)
	if err != nil {
		return err
	}
	if err := rows.Truncate(); err != nil {
		return wrapOp("truncate", name, err)
	}
	db.log.WithField("table", name).Debug("truncated table")
	return nil
}

// Count returns the number of rows in a table.
func (db *Database) Count(name string) (int, error) {
	_, rows, err := db.load("count", name)
	if err != nil {
		return 0, err
	}
	n, err := rows.Count()
	return n, wrapOp("count", name, err)
}

func (db *Database) warnTruncations(t *schema.Table) {
	for _, what := range t.Truncations() {
		db.log.WithField("table", t.Name).Warnf("%s is longer than %d bytes and is stored truncated", what, schema.IdentifierSize)
	}
}
