package database

import (
	"iter"
	"slices"

	"flatdb/dberror"
	"flatdb/schema"
	"flatdb/storage"
)

// Result is a projected set of rows.
type Result struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Scan returns a lazy sequence over every row of a table. Each range over
// the sequence reopens the row file.
func (db *Database) Scan(table string) (iter.Seq2[storage.Row, error], error) {
	_, rows, err := db.load("scan", table)
	if err != nil {
		return nil, err
	}
	return func(yield func(storage.Row, error) bool) {
		for row, err := range rows.Scan() {
			if !yield(row, wrapOp("scan", table, err)) || err != nil {
				return
			}
		}
	}, nil
}

// Select returns the fields of every row matching where. Fields come out
// in schema order whatever order they are requested in; no fields, or
// "*", selects every column.
func (db *Database) Select(table string, fields []string, where Where) (*Result, error) {
	t, rows, err := db.load("select", table)
	if err != nil {
		return nil, err
	}
	proj, err := projection(t, fields)
	if err != nil {
		return nil, wrapOp("select", table, err)
	}
	m, err := where.bind(rows.Layout)
	if err != nil {
		return nil, wrapOp("select", table, err)
	}

	res := &Result{Columns: pick(t.ColumnNames(), proj)}
	for raw, err := range rows.ScanRaw() {
		if err != nil {
			return nil, wrapOp("select", table, err)
		}
		if !m.match(raw) {
			continue
		}
		values := make([]string, len(proj))
		for i, col := range proj {
			values[i] = rows.Layout.DecodeField(raw, col)
		}
		res.Rows = append(res.Rows, values)
	}
	return res, nil
}

// ReadColumn returns every value of one column in row order.
func (db *Database) ReadColumn(table, column string) ([]string, error) {
	res, err := db.Select(table, []string{column}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		out[i] = r[0]
	}
	return out, nil
}

// projection returns the column indices selected by fields in schema order.
func projection(t *schema.Table, fields []string) ([]int, error) {
	all := len(fields) == 0 || slices.Contains(fields, "*")
	for _, f := range fields {
		if f != "*" && t.ColumnIndex(f) < 0 {
			return nil, dberror.New("", dberror.ErrColumnNotFound, "column '%s'", f)
		}
	}
	var idx []int
	for i, c := range t.Columns {
		if all || slices.Contains(fields, c.Name) {
			idx = append(idx, i)
		}
	}
	return idx, nil
}
