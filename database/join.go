package database

import (
	"flatdb/dberror"
	"flatdb/index"
	"flatdb/schema"
)

// InnerJoin pairs every row of left with every row of right whose join
// columns are equal, numerically when both columns are numeric. Each
// selected field is taken from left if left has that column, else from
// right. No fields selects every left column followed by every right one.
//
// The right table is read once into a hash index on its join column.
// Rows come out in left order, and within a left row in right order.
func (db *Database) InnerJoin(left, right, leftColumn, rightColumn string, fields []string) (*Result, error) {
	lt, lrows, err := db.load("join", left)
	if err != nil {
		return nil, err
	}
	rt, rrows, err := db.load("join", right)
	if err != nil {
		return nil, err
	}
	li, ri := lt.ColumnIndex(leftColumn), rt.ColumnIndex(rightColumn)
	if li < 0 {
		return nil, dberror.New("join", dberror.ErrColumnNotFound, "column '%s'", leftColumn).WithTable(left)
	}
	if ri < 0 {
		return nil, dberror.New("join", dberror.ErrColumnNotFound, "column '%s'", rightColumn).WithTable(right)
	}
	numeric := numericPair(lt.Columns[li].Kind, rt.Columns[ri].Kind)

	sources, columns, err := joinFields(lt, rt, fields)
	if err != nil {
		return nil, err
	}

	idx := index.New(numeric)
	var stored [][]byte
	for rraw, err := range rrows.ScanRaw() {
		if err != nil {
			return nil, wrapOp("join", right, err)
		}
		idx.Add(rrows.Layout.DecodeField(rraw, ri), len(stored))
		stored = append(stored, rraw)
	}

	res := &Result{Columns: columns}
	for lraw, err := range lrows.ScanRaw() {
		if err != nil {
			return nil, wrapOp("join", left, err)
		}
		for _, pos := range idx.Lookup(lrows.Layout.DecodeField(lraw, li)) {
			rraw := stored[pos]
			values := make([]string, len(sources))
			for i, src := range sources {
				if src.left {
					values[i] = lrows.Layout.DecodeField(lraw, src.index)
				} else {
					values[i] = rrows.Layout.DecodeField(rraw, src.index)
				}
			}
			res.Rows = append(res.Rows, values)
		}
	}
	return res, nil
}

type joinSource struct {
	left  bool
	index int
}

func joinFields(lt, rt *schema.Table, fields []string) ([]joinSource, []string, error) {
	if len(fields) == 0 {
		var src []joinSource
		for i := range lt.Columns {
			src = append(src, joinSource{left: true, index: i})
		}
		for i := range rt.Columns {
			src = append(src, joinSource{index: i})
		}
		return src, append(lt.ColumnNames(), rt.ColumnNames()...), nil
	}
	src := make([]joinSource, len(fields))
	for i, f := range fields {
		if j := lt.ColumnIndex(f); j >= 0 {
			src[i] = joinSource{left: true, index: j}
		} else if j := rt.ColumnIndex(f); j >= 0 {
			src[i] = joinSource{index: j}
		} else {
			return nil, nil, dberror.New("join", dberror.ErrColumnNotFound, "column '%s' in %s or %s", f, lt.Name, rt.Name)
		}
	}
	return src, append([]string(nil), fields...), nil
}
