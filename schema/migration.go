package schema

import (
	"fmt"
	"slices"

	"flatdb/dberror"
)

// Migration is an ordered list of schema changes applied as one unit.
type Migration struct {
	Operations []MigrationOp
}

// MigrationOp represents a single schema change operation
type MigrationOp interface {
	apply(d *draft) error
}

// AddColumnOp appends columns. Existing rows get each column's default.
type AddColumnOp struct {
	Columns []Column
}

// RemoveColumnOp drops columns by name. Unknown names are ignored, and
// foreign keys bound to a dropped column go with it.
type RemoveColumnOp struct {
	Names []string
}

// ModifyColumnOp replaces the definition of the column named NewDef.Name,
// keeping its position.
type ModifyColumnOp struct {
	NewDef Column
}

// RenameColumnOp renames a column. Foreign keys bound to it follow.
type RenameColumnOp struct {
	OldName string
	NewName string
}

// ChangeColumnOp renames a column and replaces its definition in one step.
type ChangeColumnOp struct {
	OldName string
	NewDef  Column
}

type AddForeignKeyOp struct {
	Key ForeignKey
}

type DropForeignKeyOp struct {
	Column string
}

// draft is a table being rewritten. origin[i] is the index in the source
// table that column i is read from, or -1 for a new column.
type draft struct {
	t      *Table
	origin []int
}

// Apply runs the migration against a copy of t and returns the resulting
// schema together with the row conversion plan. t is not modified.
func (m Migration) Apply(t *Table) (*Table, *Plan, error) {
	d := &draft{t: t.Clone(), origin: make([]int, len(t.Columns))}
	for i := range d.origin {
		d.origin[i] = i
	}
	for _, op := range m.Operations {
		if err := op.apply(d); err != nil {
			return nil, nil, err
		}
	}
	if err := d.t.Validate(); err != nil {
		return nil, nil, err
	}
	return d.t, newPlan(t, d.t, d.origin), nil
}

func (op *AddColumnOp) apply(d *draft) error {
	for _, c := range op.Columns {
		if c.Width == 0 {
			c.Width = c.Kind.FixedWidth()
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if d.t.ColumnIndex(c.Name) >= 0 {
			return dberror.New("", dberror.ErrDuplicateColumn, "column '%s'", c.Name)
		}
		d.t.Columns = append(d.t.Columns, c)
		d.origin = append(d.origin, -1)
	}
	return nil
}

func (op *RemoveColumnOp) apply(d *draft) error {
	for _, name := range op.Names {
		i := d.t.ColumnIndex(name)
		if i < 0 {
			continue
		}
		d.t.Columns = slices.Delete(d.t.Columns, i, i+1)
		d.origin = slices.Delete(d.origin, i, i+1)
		d.t.ForeignKeys = slices.DeleteFunc(d.t.ForeignKeys, func(fk ForeignKey) bool {
			return fk.Column == name
		})
	}
	if len(d.t.Columns) == 0 {
		return dberror.New("", dberror.ErrInvalidColumn, "cannot drop every column of a table")
	}
	return nil
}

func (op *ModifyColumnOp) apply(d *draft) error {
	return d.replace(op.NewDef.Name, op.NewDef)
}

func (op *RenameColumnOp) apply(d *draft) error {
	i := d.t.ColumnIndex(op.OldName)
	if i < 0 {
		return dberror.New("", dberror.ErrColumnNotFound, "column '%s'", op.OldName)
	}
	def := d.t.Columns[i]
	def.Name = op.NewName
	return (&ChangeColumnOp{OldName: op.OldName, NewDef: def}).apply(d)
}

func (op *ChangeColumnOp) apply(d *draft) error {
	def := op.NewDef
	if def.Name != op.OldName && d.t.ColumnIndex(def.Name) >= 0 {
		return dberror.New("", dberror.ErrDuplicateColumn, "column '%s'", def.Name)
	}
	if err := d.replace(op.OldName, def); err != nil {
		return err
	}
	for i := range d.t.ForeignKeys {
		if d.t.ForeignKeys[i].Column == op.OldName {
			d.t.ForeignKeys[i].Column = def.Name
		}
	}
	return nil
}

func (d *draft) replace(name string, def Column) error {
	i := d.t.ColumnIndex(name)
	if i < 0 {
		return dberror.New("", dberror.ErrColumnNotFound, "column '%s'", name)
	}
	if def.Width == 0 {
		def.Width = def.Kind.FixedWidth()
	}
	if err := def.Validate(); err != nil {
		return err
	}
	d.t.Columns[i] = def
	return nil
}

func (op *AddForeignKeyOp) apply(d *draft) error {
	if _, ok := d.t.ForeignKey(op.Key.Column); ok {
		return dberror.New("", dberror.ErrAlreadyExists, "foreign key on column '%s'", op.Key.Column)
	}
	d.t.ForeignKeys = append(d.t.ForeignKeys, op.Key)
	return nil
}

func (op *DropForeignKeyOp) apply(d *draft) error {
	n := len(d.t.ForeignKeys)
	d.t.ForeignKeys = slices.DeleteFunc(d.t.ForeignKeys, func(fk ForeignKey) bool {
		return fk.Column == op.Column
	})
	if len(d.t.ForeignKeys) == n {
		return dberror.New("", dberror.ErrColumnNotFound, "no foreign key on column '%s'", op.Column)
	}
	if len(d.t.ForeignKeys) == 0 {
		d.t.ForeignKeys = nil
	}
	return nil
}

func (op *AddColumnOp) String() string    { return fmt.Sprintf("add %d column(s)", len(op.Columns)) }
func (op *RemoveColumnOp) String() string { return fmt.Sprintf("drop %v", op.Names) }
func (op *ModifyColumnOp) String() string { return "modify " + op.NewDef.Name }
func (op *RenameColumnOp) String() string { return "rename " + op.OldName + " to " + op.NewName }
func (op *ChangeColumnOp) String() string { return "change " + op.OldName + " to " + op.NewDef.Name }
