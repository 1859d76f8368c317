package storage

import (
	"os"
	"path/filepath"
	"testing"

	"flatdb/dberror"
	"flatdb/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.New([]schema.Column{
		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
		{Name: "Name", Kind: schema.Text, Width: 8},
		{Name: "Score", Kind: schema.Float},
		{Name: "Active", Kind: schema.Boolean},
	}, nil)
	require.NoError(t, err)
	return tbl
}

func newRowFile(t *testing.T) *RowFile {
	t.Helper()
	f := NewRowFile(filepath.Join(t.TempDir(), "T.rows"), NewLayout(testTable(t)))
	require.NoError(t, f.Create())
	return f
}

func appendRows(t *testing.T, f *RowFile, rows ...[]string) {
	t.Helper()
	for _, values := range rows {
		raw, err := f.Layout.Encode(values)
		require.NoError(t, err)
		require.NoError(t, f.Append(raw))
	}
}

func collect(t *testing.T, f *RowFile) [][]string {
	t.Helper()
	var out [][]string
	for row, err := range f.Scan() {
		require.NoError(t, err)
		out = append(out, row.Values)
	}
	return out
}

func TestLayoutOffsets(t *testing.T) {
	l := NewLayout(testTable(t))

	assert.Equal(t, 17, l.Width())
	assert.Equal(t, []int{0, 4, 12, 16}, []int{l.Offset(0), l.Offset(1), l.Offset(2), l.Offset(3)})
}

func TestRowRoundTrip(t *testing.T) {
	l := NewLayout(testTable(t))
	values := []string{"-7", "Alice", "2.25", "true"}

	raw, err := l.Encode(values)
	require.NoError(t, err)
	require.Len(t, raw, l.Width())

	row, err := l.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, values, row.Values)
	assert.Equal(t, "Alice", row.Map()["Name"])

	v, ok := row.Get("Score")
	assert.True(t, ok)
	assert.Equal(t, "2.25", v)
}

func TestEncodeErrors(t *testing.T) {
	l := NewLayout(testTable(t))

	_, err := l.Encode([]string{"1", "x"})
	assert.ErrorIs(t, err, dberror.ErrEncoding)

	_, err = l.Encode([]string{"one", "x", "1", "true"})
	assert.ErrorIs(t, err, dberror.ErrEncoding)

	_, err = l.Decode(make([]byte, 3))
	assert.ErrorIs(t, err, dberror.ErrEncoding)
}

func TestAppendScanPreservesOrder(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f,
		[]string{"1", "Alice", "1.5", "true"},
		[]string{"2", "Bob", "2", "false"},
		[]string{"3", "Green", "0", "true"},
	)

	got := collect(t, f)
	assert.Equal(t, [][]string{
		{"1", "Alice", "1.5", "true"},
		{"2", "Bob", "2", "false"},
		{"3", "Green", "0", "true"},
	}, got)

	// restartable
	assert.Len(t, collect(t, f), 3)
	n, err := f.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestScanIgnoresPartialTrailingRow(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f, []string{"1", "Alice", "1", "true"})

	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = file.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, file.Close())

	assert.Len(t, collect(t, f), 1)
}

func TestScanMissingFile(t *testing.T) {
	f := NewRowFile(filepath.Join(t.TempDir(), "missing.rows"), NewLayout(testTable(t)))
	for _, err := range f.Scan() {
		assert.ErrorIs(t, err, dberror.ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestScanEarlyBreak(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f, []string{"1", "a", "1", "1"}, []string{"2", "b", "2", "0"})

	seen := 0
	for _, err := range f.Scan() {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestSwapSetCommit(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f,
		[]string{"1", "Alice", "1", "true"},
		[]string{"2", "Bob", "2", "false"},
	)

	swap := NewSwapSet()
	n, err := swap.Rewrite(f, func(raw []byte) ([]byte, bool, error) {
		return raw, f.Layout.DecodeField(raw, 0) != "1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, collect(t, f), 2, "nothing visible before commit")

	// a second pass sees the first
	n, err = swap.Rewrite(f, func(raw []byte) ([]byte, bool, error) {
		require.NoError(t, f.Layout.EncodeField(raw, 1, "Robert"))
		return raw, true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, swap.Len())

	require.NoError(t, swap.Commit())
	assert.Equal(t, [][]string{{"2", "Robert", "2", "false"}}, collect(t, f))

	entries, err := os.ReadDir(filepath.Dir(f.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are gone")
}

func TestSwapSetDiscardOnError(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f, []string{"1", "Alice", "1", "true"})
	before, err := os.ReadFile(f.Path)
	require.NoError(t, err)

	swap := NewSwapSet()
	require.NoError(t, swap.Stage(f.Path+".extra", []byte("x")))
	_, err = swap.Rewrite(f, func(raw []byte) ([]byte, bool, error) {
		return nil, false, dberror.New("delete", dberror.ErrConstraintViolation, "blocked")
	})
	assert.ErrorIs(t, err, dberror.ErrConstraintViolation)
	swap.Discard()

	after, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(filepath.Dir(f.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMigratorAddAndModify(t *testing.T) {
	f := newRowFile(t)
	appendRows(t, f, []string{"1", "Alice", "1.5", "true"})

	next, plan, err := schema.Migration{Operations: []schema.MigrationOp{
		&schema.ModifyColumnOp{NewDef: schema.Column{Name: "Name", Kind: schema.Text, Width: 3}},
		&schema.AddColumnOp{Columns: []schema.Column{{Name: "Age", Kind: schema.Integer, Default: "20"}}},
	}}.Apply(f.Layout.Table())
	require.NoError(t, err)

	m := NewMigrator(plan)
	swap := NewSwapSet()
	_, err = swap.Rewrite(f, m.Rewrite())
	require.NoError(t, err)
	require.NoError(t, swap.Commit())

	migrated := NewRowFile(f.Path, NewLayout(next))
	assert.Equal(t, [][]string{{"1", "Ali", "1.5", "true", "20"}}, collect(t, migrated))
}

func TestMigratorRejectsUnparsableValue(t *testing.T) {
	l := NewLayout(testTable(t))
	raw, err := l.Encode([]string{"1", "abc", "1", "true"})
	require.NoError(t, err)

	_, plan, err := schema.Migration{Operations: []schema.MigrationOp{
		&schema.ModifyColumnOp{NewDef: schema.Column{Name: "Name", Kind: schema.Integer}},
	}}.Apply(l.Table())
	require.NoError(t, err)

	_, err = NewMigrator(plan).MigrateRow(raw)
	assert.ErrorIs(t, err, dberror.ErrEncoding)
}
