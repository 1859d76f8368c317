package database

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"flatdb/catalog"
	"flatdb/dberror"
	"flatdb/schema"
	"flatdb/storage"
)

// Database is one named database directory.
//
// Operations are synchronous and take no locks. Two operations against the
// same table must not run concurrently, from this process or any other.
type Database struct {
	name    string
	catalog *catalog.Catalog
	log     logrus.FieldLogger
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(db *Database) {
		if log != nil {
			db.log = log
		}
	}
}

// New opens the database stored in dir.
func New(dir string, opts ...Option) (*Database, error) {
	cat, err := catalog.New(dir)
	if err != nil {
		return nil, err
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	db := &Database{
		name:    filepath.Base(dir),
		catalog: cat,
		log:     quiet,
	}
	for _, opt := range opts {
		opt(db)
	}
	db.log = db.log.WithField("database", db.name)
	return db, nil
}

// Open opens database name under root.
func Open(root, name string, opts ...Option) (*Database, error) {
	if err := catalog.ValidateName(name); err != nil {
		return nil, err
	}
	return New(filepath.Join(root, name), opts...)
}

// CreateDatabase creates an empty database directory under root.
func CreateDatabase(root, name string) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return dberror.Wrap("create database", dberror.ErrIO, err)
	}
	if err := os.Mkdir(filepath.Join(root, name), 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return dberror.New("create database", dberror.ErrAlreadyExists, "database '%s'", name)
		}
		return dberror.Wrap("create database", dberror.ErrIO, err)
	}
	return nil
}

// DropDatabase removes a database directory and every table in it.
func DropDatabase(root, name string) error {
	if err := catalog.ValidateName(name); err != nil {
		return err
	}
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err != nil {
		return dberror.New("drop database", dberror.ErrDatabaseNotFound, "database '%s'", name)
	}
	return dberror.Wrap("drop database", dberror.ErrIO, os.RemoveAll(dir))
}

// ListDatabases returns the database names under root, sorted.
// A missing root has no databases.
func ListDatabases(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, dberror.Wrap("list databases", dberror.ErrIO, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && catalog.ValidateName(e.Name()) == nil {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// Dir returns the database directory.
func (db *Database) Dir() string { return db.catalog.Dir() }

// load reads a table schema and binds its row file.
func (db *Database) load(op, table string) (*schema.Table, *storage.RowFile, error) {
	t, err := db.catalog.GetTable(table)
	if err != nil {
		return nil, nil, wrapOp(op, table, err)
	}
	return t, db.catalog.Rows(t), nil
}

// wrapOp fills in the operation and table of an engine error.
func wrapOp(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var e *dberror.Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		if e.Table == "" {
			e.Table = table
		}
		return err
	}
	return &dberror.Error{Op: op, Table: table, Kind: dberror.ErrIO, Err: err}
}

func violation(op, table, format string, args ...any) error {
	return dberror.New(op, dberror.ErrConstraintViolation, format, args...).WithTable(table)
}
