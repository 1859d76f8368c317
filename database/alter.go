package database

import (
	"flatdb/dberror"
	"flatdb/schema"
	"flatdb/storage"
)

// Alter applies schema changes to a table as one statement. When the row
// layout changes every row is rewritten: unchanged columns are copied byte
// for byte, changed columns are re-encoded, and added columns get their
// default. The schema file and the row file are replaced together; if any
// row cannot be converted neither changes.
func (db *Database) Alter(table string, ops ...schema.MigrationOp) error {
	s := db.begin("alter", table)
	defer s.discard()

	t, err := s.schema(table)
	if err != nil {
		return err
	}
	next, plan, err := schema.Migration{Operations: ops}.Apply(t)
	if err != nil {
		return wrapOp(s.op, table, err)
	}
	if err := s.checkAlteredReferences(next); err != nil {
		return err
	}

	if plan.RowsChanged() {
		if _, err := s.rewrite(s.rows(t), storage.NewMigrator(plan).Rewrite()); err != nil {
			return err
		}
	}
	if err := db.catalog.StageSchema(s.swap, next); err != nil {
		return wrapOp(s.op, table, err)
	}
	if err := s.commit(); err != nil {
		return err
	}
	db.warnTruncations(next)
	s.log.WithField("ops", ops).Debug("altered table")
	return nil
}

// checkAlteredReferences makes sure the new schema keeps every column
// other tables point at, and that its own foreign keys resolve.
func (s *statement) checkAlteredReferences(next *schema.Table) error {
	if _, err := s.inbound(next); err != nil {
		return err
	}
	for _, child := range s.referencing {
		if child.Name == next.Name {
			child = next
		}
		for _, fk := range child.References(next.Name) {
			if next.ColumnIndex(fk.RefColumn) < 0 {
				return violation(s.op, next.Name, "column '%s' is referenced by %s.%s", fk.RefColumn, child.Name, fk.Column)
			}
		}
	}
	for _, fk := range next.ForeignKeys {
		ref := next
		if fk.RefTable != next.Name {
			var err error
			if ref, err = s.schema(fk.RefTable); err != nil {
				return err
			}
		}
		if ref.ColumnIndex(fk.RefColumn) < 0 {
			return dberror.New(s.op, dberror.ErrColumnNotFound, "column '%s'", fk.RefColumn).WithTable(fk.RefTable)
		}
	}
	return nil
}

// AddColumns appends columns to a table. Existing rows get each new
// column's default.
func (db *Database) AddColumns(table string, columns ...schema.Column) error {
	return db.Alter(table, &schema.AddColumnOp{Columns: columns})
}

// DropColumns removes columns from a table. Unknown names are ignored.
func (db *Database) DropColumns(table string, names ...string) error {
	return db.Alter(table, &schema.RemoveColumnOp{Names: names})
}

// ModifyColumn replaces the definition of column def.Name and converts
// stored values to the new kind and width.
func (db *Database) ModifyColumn(table string, def schema.Column) error {
	return db.Alter(table, &schema.ModifyColumnOp{NewDef: def})
}

// RenameColumn renames a column.
func (db *Database) RenameColumn(table, oldName, newName string) error {
	return db.Alter(table, &schema.RenameColumnOp{OldName: oldName, NewName: newName})
}

// ChangeColumn renames a column and replaces its definition.
func (db *Database) ChangeColumn(table, oldName string, def schema.Column) error {
	return db.Alter(table, &schema.ChangeColumnOp{OldName: oldName, NewDef: def})
}

// AddForeignKey adds a foreign key to a table. Every non-NULL value
// already stored in the column must exist in the referenced table.
func (db *Database) AddForeignKey(table string, fk schema.ForeignKey) error {
	t, err := db.GetTable(table)
	if err != nil {
		return err
	}
	i := t.ColumnIndex(fk.Column)
	if i < 0 {
		return dberror.New("add foreign key", dberror.ErrColumnNotFound, "column '%s'", fk.Column).WithTable(table)
	}
	s := db.begin("add foreign key", table)
	defer s.discard()
	f := s.rows(t)
	for raw, err := range s.scan(f) {
		if err != nil {
			return wrapOp(s.op, table, err)
		}
		if isNull(t.Columns[i], f.Layout.Field(raw, i)) {
			continue
		}
		v := f.Layout.DecodeField(raw, i)
		ok, err := s.checkForeignKey(fk.RefTable, fk.RefColumn, v, t.Columns[i].Kind)
		if err != nil {
			return err
		}
		if !ok {
			return violation(s.op, table, "value %q of '%s' has no match in %s.%s", v, fk.Column, fk.RefTable, fk.RefColumn)
		}
	}
	return db.Alter(table, &schema.AddForeignKeyOp{Key: fk})
}

// DropForeignKey removes the foreign key bound to column.
func (db *Database) DropForeignKey(table, column string) error {
	return db.Alter(table, &schema.DropForeignKeyOp{Column: column})
}

// RenameTable renames a table directory and its files. Foreign keys of
// other tables that referenced the old name are pointed at the new one.
// Their schemas are staged before the directory moves, and the move is
// undone if the rest of the rename cannot be staged or committed.
func (db *Database) RenameTable(oldName, newName string) error {
	referencing, err := db.catalog.Referencing(oldName)
	if err != nil {
		return wrapOp("rename table", oldName, err)
	}

	s := db.begin("rename table", newName)
	defer s.discard()
	var self *schema.Table
	for _, child := range referencing {
		for i := range child.ForeignKeys {
			if child.ForeignKeys[i].RefTable == oldName {
				child.ForeignKeys[i].RefTable = newName
			}
		}
		if child.Name == oldName {
			self = child
			continue
		}
		if err := db.catalog.StageSchema(s.swap, child); err != nil {
			return wrapOp(s.op, child.Name, err)
		}
	}

	if err := db.catalog.RenameTable(oldName, newName); err != nil {
		return wrapOp("rename table", oldName, err)
	}
	err = func() error {
		if self != nil {
			self.Name = newName
			if err := db.catalog.StageSchema(s.swap, self); err != nil {
				return wrapOp(s.op, newName, err)
			}
		}
		return s.commit()
	}()
	if err != nil {
		s.discard()
		if rerr := db.catalog.RenameTable(newName, oldName); rerr != nil {
			db.log.WithError(rerr).Errorf("cannot move table '%s' back to '%s'", newName, oldName)
		}
		return err
	}
	db.log.WithField("table", oldName).Debugf("renamed to %s", newName)
	return nil
}
