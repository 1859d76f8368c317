package schema

import (
	"fmt"

	"flatdb/dberror"
)

// IdentifierSize is the fixed slot size of names, type tags and defaults
// in a schema file. Longer strings are truncated when written.
const IdentifierSize = 32

// Column defines a table column
type Column struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Width      int    `json:"width"`
	PrimaryKey bool   `json:"primary_key"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"default,omitempty"`
}

// ForeignKey binds a local column to a column of another table.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
	OnDelete  Action `json:"on_delete"`
	OnUpdate  Action `json:"on_update"`
}

// Table holds table metadata. Column order fixes the row layout.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
}

// New builds a validated table schema.
// Fixed-size columns declared with a zero width get their kind's width.
func New(columns []Column, foreignKeys []ForeignKey) (*Table, error) {
	t := &Table{
		Columns:     append([]Column(nil), columns...),
		ForeignKeys: append([]ForeignKey(nil), foreignKeys...),
	}
	for i := range t.Columns {
		if t.Columns[i].Width == 0 {
			t.Columns[i].Width = t.Columns[i].Kind.FixedWidth()
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants every persisted schema must satisfy.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return dberror.New("", dberror.ErrInvalidColumn, "table has no columns")
	}
	// names are compared as they read back from a schema file slot
	seen := make(map[string]bool, len(t.Columns))
	slots := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if err := c.Validate(); err != nil {
			return err
		}
		if slots[slotName(c.Name)] {
			return dberror.New("", dberror.ErrDuplicateColumn, "column '%s'", c.Name)
		}
		seen[c.Name] = true
		slots[slotName(c.Name)] = true
	}

	bound := make(map[string]bool, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		if !seen[fk.Column] {
			return dberror.New("", dberror.ErrColumnNotFound, "foreign key column '%s'", fk.Column)
		}
		if bound[slotName(fk.Column)] {
			return dberror.New("", dberror.ErrInvalidColumn, "column '%s' already has a foreign key", fk.Column)
		}
		bound[slotName(fk.Column)] = true
		if fk.RefTable == "" || fk.RefColumn == "" {
			return dberror.New("", dberror.ErrInvalidColumn, "foreign key on '%s' has no reference", fk.Column)
		}
		if !fk.OnDelete.Valid() || !fk.OnUpdate.Valid() {
			return dberror.New("", dberror.ErrInvalidColumn, "foreign key on '%s' has an unknown action", fk.Column)
		}
	}
	return nil
}

// Validate checks a single column definition.
func (c Column) Validate() error {
	if c.Name == "" {
		return dberror.New("", dberror.ErrInvalidColumn, "column name is empty")
	}
	if !c.Kind.Valid() {
		return dberror.New("", dberror.ErrInvalidColumn, "column '%s' has unknown kind %d", c.Name, uint8(c.Kind))
	}
	want := c.Kind.FixedWidth()
	switch {
	case want == 0 && c.Width <= 0:
		return dberror.New("", dberror.ErrInvalidColumn, "text column '%s' needs a positive length", c.Name)
	case want != 0 && c.Width != want:
		return dberror.New("", dberror.ErrInvalidColumn,
			"column '%s' of type %s must be %d bytes wide, got %d", c.Name, c.Kind, want, c.Width)
	}
	if c.Default != "" {
		if err := c.Kind.Check(c.Default); err != nil {
			return dberror.New("", dberror.ErrInvalidColumn, "column '%s' default: %v", c.Name, err)
		}
	}
	return nil
}

// Truncations lists the identifiers that do not fit a schema file slot.
func (t *Table) Truncations() []string {
	var out []string
	check := func(what, s string) {
		if len(s) > IdentifierSize {
			out = append(out, fmt.Sprintf("%s %q", what, s))
		}
	}
	for _, c := range t.Columns {
		check("column", c.Name)
		check("default", c.Default)
	}
	for _, fk := range t.ForeignKeys {
		check("reference table", fk.RefTable)
		check("reference column", fk.RefColumn)
	}
	return out
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return Column{}, dberror.New("", dberror.ErrColumnNotFound, "column '%s'", name).WithTable(t.Name)
	}
	return t.Columns[i], nil
}

// ColumnNames returns the column names in layout order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKey returns the foreign key bound to column, if any.
func (t *Table) ForeignKey(column string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// References returns the foreign keys that point at refTable.
func (t *Table) References(refTable string) []ForeignKey {
	var out []ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == refTable {
			out = append(out, fk)
		}
	}
	return out
}

// PrimaryKey returns the names of the primary key columns.
func (t *Table) PrimaryKey() []string {
	var keys []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// RowWidth is the byte size of one row.
func (t *Table) RowWidth() int {
	w := 0
	for _, c := range t.Columns {
		w += c.Width
	}
	return w
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{
		Name:        t.Name,
		Columns:     append([]Column(nil), t.Columns...),
		ForeignKeys: append([]ForeignKey(nil), t.ForeignKeys...),
	}
}
