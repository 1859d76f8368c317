package database

import (
	"sort"
	"strings"

	"flatdb/dberror"
)

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Desc   bool
}

// OrderBy returns the fields of the rows matching where, sorted by keys.
// Keys are applied in order, ties falling through to the next key. Values
// compare as strings within a key, numeric columns included. The sort is
// stable, so fully tied rows keep their file order.
func (db *Database) OrderBy(table string, keys []SortKey, fields []string, where Where) (*Result, error) {
	t, err := db.GetTable(table)
	if err != nil {
		return nil, err
	}
	proj, err := projection(t, fields)
	if err != nil {
		return nil, wrapOp("order by", table, err)
	}
	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		keyIdx[i] = t.ColumnIndex(k.Column)
		if keyIdx[i] < 0 {
			return nil, dberror.New("order by", dberror.ErrColumnNotFound, "sort column '%s'", k.Column).WithTable(table)
		}
	}

	// materialize whole rows so keys outside the projection still sort
	full, err := db.Select(table, nil, where)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(full.Rows, func(a, b int) bool {
		for i, k := range keys {
			c := strings.Compare(full.Rows[a][keyIdx[i]], full.Rows[b][keyIdx[i]])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	res := &Result{Columns: pick(t.ColumnNames(), proj), Rows: make([][]string, len(full.Rows))}
	for i, r := range full.Rows {
		res.Rows[i] = pick(r, proj)
	}
	return res, nil
}
