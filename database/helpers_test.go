package database

import (
	"os"
	"testing"

	"flatdb/schema"

	"github.com/stretchr/testify/require"
)

// newTestDB creates a fresh database in a temporary root.
func newTestDB(t *testing.T) *Database {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, CreateDatabase(root, "TestDB"))
	db, err := Open(root, "TestDB")
	require.NoError(t, err)
	return db
}

func mustTable(t *testing.T, db *Database, name string, cols []schema.Column, fks ...schema.ForeignKey) {
	t.Helper()
	tbl, err := schema.New(cols, fks)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable(name, tbl))
}

func mustInsert(t *testing.T, db *Database, table string, rows ...[]string) {
	t.Helper()
	for _, r := range rows {
		require.NoError(t, db.Insert(table, r))
	}
}

func values(t *testing.T, db *Database, table string) [][]string {
	t.Helper()
	seq, err := db.Scan(table)
	require.NoError(t, err)
	var out [][]string
	for row, err := range seq {
		require.NoError(t, err)
		out = append(out, row.Values)
	}
	return out
}

func fileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// usersDB holds T(ID int PK, Name text(32), Age int nullable default 20).
func usersDB(t *testing.T) *Database {
	t.Helper()
	db := newTestDB(t)
	mustTable(t, db, "T", []schema.Column{
		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
		{Name: "Name", Kind: schema.Text, Width: 32},
		{Name: "Age", Kind: schema.Integer, Nullable: true, Default: "20"},
	})
	mustInsert(t, db, "T",
		[]string{"1", "Alice", "30"},
		[]string{"2", "Bob", "25"},
		[]string{"3", "Green", ""},
	)
	return db
}

// companyDB holds Departments(ID, DeptName) and Employees(ID, Name, DeptID)
// with Employees.DeptID referencing Departments.ID.
func companyDB(t *testing.T, onDelete, onUpdate schema.Action) *Database {
	t.Helper()
	db := newTestDB(t)
	mustTable(t, db, "Departments", []schema.Column{
		{Name: "ID", Kind: schema.Integer, PrimaryKey: true, Default: "99"},
		{Name: "DeptName", Kind: schema.Text, Width: 16},
	})
	mustTable(t, db, "Employees", []schema.Column{
		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
		{Name: "Name", Kind: schema.Text, Width: 16},
		{Name: "DeptID", Kind: schema.Integer, Nullable: true},
	}, schema.ForeignKey{Column: "DeptID", RefTable: "Departments", RefColumn: "ID", OnDelete: onDelete, OnUpdate: onUpdate})

	mustInsert(t, db, "Departments", []string{"1", "HR"}, []string{"2", "Eng"})
	mustInsert(t, db, "Employees", []string{"10", "Alice", "1"}, []string{"11", "Bob", "2"})
	return db
}

func eq(column, value string) Where {
	return Where{{Column: column, Op: Eq, Value: value}}
}
