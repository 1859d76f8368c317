package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flatdb/dberror"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default so commands can run
// several times in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return strings.TrimSpace(buf.String()), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	require.NoError(t, err, "flatdb %s", strings.Join(args, " "))
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setupShop creates database "shop" with a Users table under a fresh root.
func setupShop(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	out := mustRun(t, "--root", root, "create-database", "shop")
	assert.Equal(t, "Database 'shop' created", out)
	out = mustRun(t, "--root", root, "--db", "shop", "exec",
		"CREATE TABLE Users (ID int PRIMARY KEY, Name str(16) NOT NULL, Age int)")
	assert.Equal(t, "Table 'Users' created", out)
	return root
}

func TestCreateAndList(t *testing.T) {
	root := setupShop(t)

	assert.Equal(t, "Database\nshop", mustRun(t, "--root", root, "databases"))
	assert.Equal(t, "Table\nUsers", mustRun(t, "--root", root, "--db", "shop", "tables"))

	_, err := runCLI(t, "--root", root, "tables")
	assert.ErrorIs(t, err, dberror.ErrDatabaseNotFound)
}

func TestLoadAndQuery(t *testing.T) {
	root := setupShop(t)
	csvPath := writeFile(t, t.TempDir(), "users.csv", "Name,ID,Age\nAlice,1,30\nBob,2,25\nCarol,3,19\n")

	mustRun(t, "--root", root, "--db", "shop", "load", "Users", csvPath, "--header", "--progress=false")

	out := mustRun(t, "--root", root, "--db", "shop", "select", "Users", "--where", "Age > 20", "--fields", "Name")
	assert.Equal(t, "Name\nAlice\nBob", out)

	out = mustRun(t, "--root", root, "--db", "shop", "select", "Users", "--order", "Age", "--fields", "Name,Age")
	assert.Equal(t, "Name   Age\nCarol  19\nBob    25\nAlice  30", out)

	out = mustRun(t, "--root", root, "--db", "shop", "aggregate", "sum", "Users", "Age")
	assert.Equal(t, "SUM(Age)\n74", out)

	out = mustRun(t, "--root", root, "--db", "shop", "aggregate", "count", "Users", "ID", "--where", "Age < 26")
	assert.Equal(t, "COUNT(ID)\n2", out)

	out = mustRun(t, "--root", root, "--db", "shop", "scan", "Users")
	assert.Equal(t, "1\tAlice\t30\n2\tBob\t25\n3\tCarol\t19", out)
}

func TestScanJSON(t *testing.T) {
	root := setupShop(t)
	mustRun(t, "--root", root, "--db", "shop", "exec", "INSERT INTO Users VALUES (1, 'Alice', 30)")

	out := mustRun(t, "--root", root, "--db", "shop", "--json", "scan", "Users")
	var row map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &row))
	assert.Equal(t, map[string]string{"ID": "1", "Name": "Alice", "Age": "30"}, row)
}

func TestLoadBadRows(t *testing.T) {
	root := setupShop(t)
	csvPath := writeFile(t, t.TempDir(), "users.csv", "1,Alice,30\n1,Bob,25\n2,Carol,19\n")

	_, err := runCLI(t, "--root", root, "--db", "shop", "load", "Users", csvPath, "--progress=false")
	assert.ErrorIs(t, err, dberror.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "record 2")

	mustRun(t, "--root", root, "--db", "shop", "truncate", "Users")
	mustRun(t, "--root", root, "--db", "shop", "load", "Users", csvPath, "--progress=false", "--skip-errors")

	out := mustRun(t, "--root", root, "--db", "shop", "select", "Users", "--fields", "Name")
	assert.Equal(t, "Name\nAlice\nCarol", out)
}

func TestShell(t *testing.T) {
	root := setupShop(t)
	rootCmd.SetIn(strings.NewReader(strings.Join([]string{
		"INSERT INTO Users VALUES (1, 'Alice', 30);",
		"INSERT INTO Users VALUES (1, 'Again', 31);",
		"",
		"SELECT Name FROM Users;",
		"exit",
		"DROP TABLE Users;",
	}, "\n")))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out := mustRun(t, "--root", root, "--db", "shop", "shell")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Inserted 1 row", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "error: "), lines[1])
	assert.Equal(t, []string{"Name", "Alice"}, lines[2:])

	assert.Equal(t, "Table\nUsers", mustRun(t, "--root", root, "--db", "shop", "tables"))
}

func TestUsersAndPermissions(t *testing.T) {
	root := setupShop(t)
	admin := []string{"--root", root, "--db", "shop", "--user", "admin", "--password", "admin123"}

	out := mustRun(t, append(admin, "user", "add", "bob", "secret")...)
	assert.Equal(t, "User 'bob' created", out)
	mustRun(t, append(admin, "user", "grant", "bob", "shop", "Users", "select")...)
	assert.FileExists(t, filepath.Join(root, "users.json"))
	assert.Equal(t, "admin\nbob", mustRun(t, append(admin, "user", "list")...))

	bob := []string{"--root", root, "--db", "shop", "--user", "bob", "--password", "secret"}
	out = mustRun(t, append(bob, "select", "Users")...)
	assert.Equal(t, "No rows returned", out)

	_, err := runCLI(t, append(bob, "exec", "INSERT INTO Users VALUES (1, 'Bob', 40)")...)
	assert.ErrorIs(t, err, dberror.ErrPermission)

	_, err = runCLI(t, append(bob, "user", "add", "eve", "pw")...)
	assert.ErrorIs(t, err, dberror.ErrPermission)

	_, err = runCLI(t, "--root", root, "--db", "shop", "--user", "bob", "--password", "wrong", "tables")
	assert.ErrorIs(t, err, dberror.ErrPermission)

	// users.json in the root is not a database.
	assert.Equal(t, "Database\nshop", mustRun(t, "--root", root, "databases"))
}
