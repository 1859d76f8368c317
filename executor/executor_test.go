package executor

import (
	"path/filepath"
	"testing"

	"flatdb/auth"
	"flatdb/database"
	"flatdb/dberror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, e *Executor, sql string) *Output {
	t.Helper()
	out, err := e.Run(sql)
	require.NoError(t, err, sql)
	return out
}

// companyExecutor sets up Departments and Employees in database Company.
func companyExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	e := New(database.NewSession(t.TempDir()), opts...)
	for _, sql := range []string{
		"CREATE DATABASE Company",
		"USE Company",
		"CREATE TABLE Departments (ID int PRIMARY KEY, DeptName str(16))",
		"CREATE TABLE Employees (ID int PRIMARY KEY, Name str(16) NOT NULL, Age int DEFAULT 20, DeptID int REFERENCES Departments(ID) ON DELETE CASCADE)",
		"INSERT INTO Departments VALUES (1, 'HR')",
		"INSERT INTO Departments VALUES (2, 'Eng')",
		"INSERT INTO Employees VALUES (10, 'Alice', 30, 1)",
		"INSERT INTO Employees (ID, Name, DeptID) VALUES (11, 'Bob', 2)",
		"INSERT INTO Employees VALUES (12, 'Carol', 41, NULL)",
	} {
		run(t, e, sql)
	}
	return e
}

func TestSessionStatements(t *testing.T) {
	e := New(database.NewSession(t.TempDir()))

	_, err := e.Run("SHOW TABLES")
	assert.ErrorIs(t, err, dberror.ErrDatabaseNotFound)

	assert.Equal(t, "Database 'Shop' created", run(t, e, "CREATE DATABASE Shop").String())
	assert.Equal(t, [][]string{{"Shop"}}, run(t, e, "SHOW DATABASES").Result.Rows)
	run(t, e, "USE Shop")
	assert.Equal(t, "No rows returned", run(t, e, "SHOW TABLES").String())
	run(t, e, "DROP DATABASE Shop")

	_, err = e.Run("USE Shop")
	assert.ErrorIs(t, err, dberror.ErrDatabaseNotFound)
	_, err = e.Run("FROBNICATE")
	assert.ErrorIs(t, err, dberror.ErrSyntax)
}

func TestQueries(t *testing.T) {
	e := companyExecutor(t)

	out := run(t, e, "SELECT Name, Age FROM Employees WHERE Age >= 20 ORDER BY Age DESC")
	assert.Equal(t, [][]string{{"Carol", "41"}, {"Alice", "30"}, {"Bob", "20"}}, out.Result.Rows)

	out = run(t, e, "SELECT Name, DeptName FROM Employees JOIN Departments ON Employees.DeptID = Departments.ID")
	assert.Equal(t, [][]string{{"Alice", "HR"}, {"Bob", "Eng"}}, out.Result.Rows)
	assert.Equal(t, "Name   DeptName\nAlice  HR\nBob    Eng", out.String())

	assert.Equal(t, [][]string{{"3"}}, run(t, e, "SELECT COUNT(*) FROM Employees").Result.Rows)
	assert.Equal(t, [][]string{{"91"}}, run(t, e, "SELECT SUM(Age) FROM Employees").Result.Rows)
	assert.Equal(t, [][]string{{"35.5"}}, run(t, e, "SELECT AVG(Age) FROM Employees WHERE Age > 20").Result.Rows)
	assert.Equal(t, [][]string{{"41"}}, run(t, e, "SELECT MAX(Age) FROM Employees").Result.Rows)
	assert.Equal(t, []string{"MIN(Age)"}, run(t, e, "SELECT MIN(Age) FROM Employees").Result.Columns)

	_, err := e.Run("SELECT SUM(Name) FROM Employees")
	assert.ErrorIs(t, err, dberror.ErrEncoding)
}

func TestMutations(t *testing.T) {
	e := companyExecutor(t)

	assert.Equal(t, "Updated 1 row(s)", run(t, e, "UPDATE Employees SET Age = 31 WHERE Name = 'Alice'").String())

	_, err := e.Run("INSERT INTO Employees VALUES (13, 'Dan', 22, 9)")
	assert.ErrorIs(t, err, dberror.ErrConstraintViolation)

	// deleting Bob cascades to his department
	assert.Equal(t, "Deleted 1 row(s)", run(t, e, "DELETE FROM Employees WHERE ID = 11").String())
	assert.Equal(t, [][]string{{"1", "HR"}}, run(t, e, "SELECT * FROM Departments").Result.Rows)

	run(t, e, "ALTER TABLE Employees ADD COLUMN Email str(24) DEFAULT 'none'")
	run(t, e, "ALTER TABLE Employees RENAME COLUMN Age TO Years")
	out := run(t, e, "SELECT Years, Email FROM Employees WHERE ID = 10")
	assert.Equal(t, [][]string{{"31", "none"}}, out.Result.Rows)

	run(t, e, "ALTER TABLE Employees DROP FOREIGN KEY DeptID")
	run(t, e, "RENAME TABLE Departments TO Depts")
	assert.Equal(t, [][]string{{"Depts"}, {"Employees"}}, run(t, e, "SHOW TABLES").Result.Rows)

	run(t, e, "TRUNCATE TABLE Employees")
	assert.Equal(t, [][]string{{"0"}}, run(t, e, "SELECT COUNT(*) FROM Employees").Result.Rows)
	run(t, e, "DROP TABLE Employees")

	_, err = e.Run("DESCRIBE Employees")
	assert.ErrorIs(t, err, dberror.ErrSchemaNotFound)
}

func TestDescribe(t *testing.T) {
	e := companyExecutor(t)

	out := run(t, e, "DESCRIBE Employees")
	require.NotNil(t, out.Table)
	assert.Equal(t, []string{"ID", "Name", "Age", "DeptID"}, out.Table.ColumnNames())
	assert.Contains(t, out.String(), "Departments(ID) ON DELETE CASCADE ON UPDATE RESTRICT")
}

func TestPermissions(t *testing.T) {
	store, err := auth.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	require.NoError(t, store.AddUser("bob", "secret", false))
	require.NoError(t, store.Grant("bob", "Company", "Employees", auth.Select))

	admin := companyExecutor(t, WithAuth(store, auth.DefaultAdmin))
	bob := New(database.NewSession(admin.session.Root()), WithAuth(store, "bob"))
	run(t, bob, "USE Company")

	run(t, bob, "SELECT * FROM Employees")
	_, err = bob.Run("SELECT * FROM Departments")
	assert.ErrorIs(t, err, dberror.ErrPermission)
	_, err = bob.Run("SELECT * FROM Employees JOIN Departments ON Employees.DeptID = Departments.ID")
	assert.ErrorIs(t, err, dberror.ErrPermission)
	_, err = bob.Run("DELETE FROM Employees")
	assert.ErrorIs(t, err, dberror.ErrPermission)
	_, err = bob.Run("CREATE DATABASE Other")
	assert.ErrorIs(t, err, dberror.ErrPermission)

	require.NoError(t, store.Grant("bob", "Company", auth.Any, auth.Select))
	run(t, bob, "SELECT * FROM Departments")
}
