package storage

import (
	"flatdb/dberror"
	"flatdb/schema"
)

// Row is one decoded record: values in schema column order.
type Row struct {
	Columns []string
	Values  []string
}

// Get returns the value of the named column.
func (r Row) Get(name string) (string, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return "", false
}

// Map returns the row as a column name to value map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// Layout is the fixed byte layout of a table's rows.
//
// Column i occupies raw[Offset(i) : Offset(i)+width(i)].
type Layout struct {
	table   *schema.Table
	names   []string
	offsets []int
	width   int
}

// NewLayout computes column offsets for t.
func NewLayout(t *schema.Table) *Layout {
	l := &Layout{
		table:   t,
		names:   t.ColumnNames(),
		offsets: make([]int, len(t.Columns)),
	}
	for i, c := range t.Columns {
		l.offsets[i] = l.width
		l.width += c.Width
	}
	return l
}

// Table returns the schema the layout was built from.
func (l *Layout) Table() *schema.Table { return l.table }

// Width is the byte size of one row.
func (l *Layout) Width() int { return l.width }

// Columns returns the column names in layout order. The slice must not be modified.
func (l *Layout) Columns() []string { return l.names }

// Offset is the byte position of column i within a row.
func (l *Layout) Offset(i int) int { return l.offsets[i] }

// Field returns the bytes of column i within raw.
func (l *Layout) Field(raw []byte, i int) []byte {
	off := l.Offset(i)
	return raw[off : off+l.table.Columns[i].Width]
}

// DecodeField returns the string value of column i.
func (l *Layout) DecodeField(raw []byte, i int) string {
	return l.table.Columns[i].Kind.Decode(l.Field(raw, i))
}

// EncodeField overwrites column i of raw with value.
func (l *Layout) EncodeField(raw []byte, i int, value string) error {
	c := l.table.Columns[i]
	if err := c.Kind.Encode(l.Field(raw, i), value); err != nil {
		return dberror.New("encode", dberror.ErrEncoding, "column '%s': %v", c.Name, err)
	}
	return nil
}

// Encode builds a row from values given in column order.
func (l *Layout) Encode(values []string) ([]byte, error) {
	if len(values) != len(l.names) {
		return nil, dberror.New("encode", dberror.ErrEncoding,
			"got %d values for %d columns", len(values), len(l.names))
	}
	raw := make([]byte, l.width)
	for i, v := range values {
		if err := l.EncodeField(raw, i, v); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// Decode is the inverse of Encode.
func (l *Layout) Decode(raw []byte) (Row, error) {
	if len(raw) != l.width {
		return Row{}, dberror.New("decode", dberror.ErrEncoding,
			"row is %d bytes, layout needs %d", len(raw), l.width)
	}
	row := Row{Columns: l.names, Values: make([]string, len(l.names))}
	for i := range l.names {
		row.Values[i] = l.DecodeField(raw, i)
	}
	return row, nil
}
