package database

import (
	"path/filepath"
	"testing"

	"flatdb/dberror"
	"flatdb/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddThenDropColumnRestoresRows(t *testing.T) {
	db := usersDB(t)
	before := fileBytes(t, db.catalog.RowsPath("T"))

	require.NoError(t, db.AddColumns("T",
		schema.Column{Name: "Email", Kind: schema.Text, Width: 12, Default: "none"},
		schema.Column{Name: "Active", Kind: schema.Boolean, Default: "true"},
	))
	assert.Equal(t, [][]string{
		{"1", "Alice", "30", "none", "true"},
		{"2", "Bob", "25", "none", "true"},
		{"3", "Green", "20", "none", "true"},
	}, values(t, db, "T"))
	assert.Len(t, fileBytes(t, db.catalog.RowsPath("T")), len(before)+3*13)

	require.NoError(t, db.DropColumns("T", "Email", "Active", "Missing"))
	assert.Equal(t, before, fileBytes(t, db.catalog.RowsPath("T")))
}

func TestAddColumnRejectsDuplicate(t *testing.T) {
	db := usersDB(t)
	assert.ErrorIs(t, db.AddColumns("T", schema.Column{Name: "Age", Kind: schema.Integer}), dberror.ErrDuplicateColumn)
	assert.ErrorIs(t, db.AddColumns("T", schema.Column{Name: "Bad", Kind: schema.Integer, Width: 2}), dberror.ErrInvalidColumn)
}

func TestModifyColumnMigratesRows(t *testing.T) {
	db := usersDB(t)

	require.NoError(t, db.ModifyColumn("T", schema.Column{Name: "Name", Kind: schema.Text, Width: 4}))
	require.NoError(t, db.ModifyColumn("T", schema.Column{Name: "Age", Kind: schema.Float, Nullable: true}))

	assert.Equal(t, [][]string{
		{"1", "Alic", "30"},
		{"2", "Bob", "25"},
		{"3", "Gree", "20"},
	}, values(t, db, "T"))

	tbl, err := db.GetTable("T")
	require.NoError(t, err)
	assert.Equal(t, 4+4+4, tbl.RowWidth())
}

func TestModifyColumnUnconvertibleLeavesFilesUntouched(t *testing.T) {
	db := usersDB(t)
	rows := fileBytes(t, db.catalog.RowsPath("T"))
	sch := fileBytes(t, db.catalog.SchemaPath("T"))

	err := db.ModifyColumn("T", schema.Column{Name: "Name", Kind: schema.Integer})
	assert.ErrorIs(t, err, dberror.ErrEncoding)

	assert.Equal(t, rows, fileBytes(t, db.catalog.RowsPath("T")))
	assert.Equal(t, sch, fileBytes(t, db.catalog.SchemaPath("T")))
}

func TestRenameAndChangeColumn(t *testing.T) {
	db := usersDB(t)
	rows := fileBytes(t, db.catalog.RowsPath("T"))

	require.NoError(t, db.RenameColumn("T", "Age", "Years"))
	assert.Equal(t, rows, fileBytes(t, db.catalog.RowsPath("T")), "rename does not touch rows")

	res, err := db.Select("T", []string{"Years"}, eq("ID", "2"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"25"}}, res.Rows)

	require.NoError(t, db.ChangeColumn("T", "Name", schema.Column{Name: "Label", Kind: schema.Text, Width: 64}))
	res, err = db.Select("T", []string{"Label"}, eq("ID", "1"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alice"}}, res.Rows)

	assert.ErrorIs(t, db.RenameColumn("T", "Label", "ID"), dberror.ErrDuplicateColumn)
}

func TestAlterKeepsReferencedColumns(t *testing.T) {
	db := companyDB(t, schema.Restrict, schema.Restrict)

	assert.ErrorIs(t, db.DropColumns("Departments", "ID"), dberror.ErrConstraintViolation)
	assert.ErrorIs(t, db.RenameColumn("Departments", "ID", "DeptNo"), dberror.ErrConstraintViolation)
	require.NoError(t, db.DropColumns("Departments", "DeptName"))

	require.NoError(t, db.DropColumns("Employees", "DeptID"))
	tbl, err := db.GetTable("Employees")
	require.NoError(t, err)
	assert.Empty(t, tbl.ForeignKeys)
}

func TestForeignKeyAddAndDrop(t *testing.T) {
	db := companyDB(t, schema.Restrict, schema.Restrict)

	require.NoError(t, db.DropForeignKey("Employees", "DeptID"))
	require.NoError(t, db.Insert("Employees", []string{"12", "Carol", "7"}))
	assert.ErrorIs(t, db.DropForeignKey("Employees", "DeptID"), dberror.ErrColumnNotFound)

	fk := schema.ForeignKey{Column: "DeptID", RefTable: "Departments", RefColumn: "ID", OnDelete: schema.Cascade}
	assert.ErrorIs(t, db.AddForeignKey("Employees", fk), dberror.ErrConstraintViolation, "Carol's department does not exist")

	_, err := db.Delete("Employees", eq("ID", "12"))
	require.NoError(t, err)
	require.NoError(t, db.AddForeignKey("Employees", fk))
	assert.ErrorIs(t, db.Insert("Employees", []string{"12", "Carol", "7"}), dberror.ErrConstraintViolation)

	bad := schema.ForeignKey{Column: "Name", RefTable: "Departments", RefColumn: "Budget"}
	assert.ErrorIs(t, db.AddForeignKey("Employees", bad), dberror.ErrColumnNotFound)
}

func TestRenameTable(t *testing.T) {
	db := companyDB(t, schema.Restrict, schema.Restrict)
	rows := fileBytes(t, db.catalog.RowsPath("Departments"))

	schemaBefore := fileBytes(t, db.catalog.SchemaPath("Employees"))
	assert.ErrorIs(t, db.RenameTable("Departments", "Employees"), dberror.ErrAlreadyExists)
	assert.Equal(t, schemaBefore, fileBytes(t, db.catalog.SchemaPath("Employees")))
	tmps, err := filepath.Glob(filepath.Join(db.Dir(), "*", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmps)
	require.NoError(t, db.RenameTable("Departments", "Depts"))

	assert.Equal(t, rows, fileBytes(t, db.catalog.RowsPath("Depts")))
	assert.False(t, db.catalog.TableExists("Departments"))

	emp, err := db.GetTable("Employees")
	require.NoError(t, err)
	assert.Equal(t, "Depts", emp.ForeignKeys[0].RefTable)

	require.NoError(t, db.Insert("Employees", []string{"12", "Carol", "2"}))
	assert.ErrorIs(t, db.Insert("Employees", []string{"13", "Dan", "8"}), dberror.ErrConstraintViolation)
}

func TestRenameSelfReferencingTable(t *testing.T) {
	db := newTestDB(t)
	mustTable(t, db, "Nodes", []schema.Column{
		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
		{Name: "Parent", Kind: schema.Integer, Nullable: true},
	}, schema.ForeignKey{Column: "Parent", RefTable: "Nodes", RefColumn: "ID"})
	mustInsert(t, db, "Nodes", []string{"1", ""}, []string{"2", "1"})

	require.NoError(t, db.RenameTable("Nodes", "Tree"))
	tree, err := db.GetTable("Tree")
	require.NoError(t, err)
	assert.Equal(t, "Tree", tree.ForeignKeys[0].RefTable)
	assert.Equal(t, [][]string{{"1", "0"}, {"2", "1"}}, values(t, db, "Tree"))
	assert.ErrorIs(t, db.Insert("Tree", []string{"3", "9"}), dberror.ErrConstraintViolation)
}
