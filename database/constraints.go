package database

import (
	"flatdb/dberror"
	"flatdb/schema"
)

// CheckForeignKey reports whether refTable has a row whose refColumn equals
// value. Numeric kinds compare by parsed value, others verbatim.
func (db *Database) CheckForeignKey(refTable, refColumn, value string, kind schema.Kind) (bool, error) {
	s := db.begin("check foreign key", refTable)
	defer s.discard()
	return s.checkForeignKey(refTable, refColumn, value, kind)
}

func (s *statement) checkForeignKey(refTable, refColumn, value string, kind schema.Kind) (bool, error) {
	t, err := s.schema(refTable)
	if err != nil {
		return false, err
	}
	idx := t.ColumnIndex(refColumn)
	if idx < 0 {
		return false, dberror.New(s.op, dberror.ErrColumnNotFound, "column '%s'", refColumn).WithTable(refTable)
	}
	numeric := numericPair(kind, t.Columns[idx].Kind)

	f := s.rows(t)
	for raw, err := range s.scan(f) {
		if err != nil {
			return false, wrapOp(s.op, refTable, err)
		}
		if valuesMatch(numeric, f.Layout.DecodeField(raw, idx), value) {
			return true, nil
		}
	}
	return false, nil
}

// checkReferences approves the foreign key values of a new row.
// Empty values in nullable columns are not checked.
func (s *statement) checkReferences(t *schema.Table, values []string) error {
	for _, fk := range t.ForeignKeys {
		i := t.ColumnIndex(fk.Column)
		if values[i] == "" && t.Columns[i].Nullable {
			continue
		}
		ok, err := s.checkForeignKey(fk.RefTable, fk.RefColumn, values[i], t.Columns[i].Kind)
		if err != nil {
			return err
		}
		if !ok {
			return violation(s.op, t.Name, "value %q of '%s' has no match in %s.%s",
				values[i], fk.Column, fk.RefTable, fk.RefColumn)
		}
	}
	return nil
}

// isNull reports whether a stored field holds no value. Empty text is
// zero bytes; a nullable numeric or boolean column stores NULL as zero
// bytes too, so a zero there reads as NULL.
func isNull(c schema.Column, field []byte) bool {
	if c.Kind != schema.Text && !c.Nullable {
		return false
	}
	for _, b := range field {
		if b != 0 {
			return false
		}
	}
	return true
}

// trigger is a foreign key firing for one value of its column.
type trigger struct {
	fk     schema.ForeignKey
	kind   schema.Kind
	value  string
	action schema.Action
}

// collect records a trigger once per distinct foreign key and value.
func collect(triggers []trigger, tr trigger) []trigger {
	for _, t := range triggers {
		if t.fk.Column == tr.fk.Column && t.value == tr.value && t.action == tr.action {
			return triggers
		}
	}
	return append(triggers, tr)
}

// handleForeignKeyAction applies a fired foreign key to the referenced
// table: rows whose reference column equals the value are blocked on,
// dropped, nulled or reset to the column default. The referenced table
// is only rewritten when it has a matching row.
func (s *statement) handleForeignKeyAction(tr trigger) error {
	fk := tr.fk
	ref, err := s.schema(fk.RefTable)
	if err != nil {
		return err
	}
	idx := ref.ColumnIndex(fk.RefColumn)
	if idx < 0 {
		return dberror.New(s.op, dberror.ErrColumnNotFound, "column '%s'", fk.RefColumn).WithTable(fk.RefTable)
	}
	numeric := numericPair(tr.kind, ref.Columns[idx].Kind)
	f := s.rows(ref)
	matches := func(raw []byte) bool {
		return valuesMatch(numeric, f.Layout.DecodeField(raw, idx), tr.value)
	}

	found := false
	for raw, err := range s.scan(f) {
		if err != nil {
			return wrapOp(s.op, fk.RefTable, err)
		}
		if matches(raw) {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if tr.action.Blocks() {
		return violation(s.op, s.table, "%s on '%s': %s.%s still holds %q",
			tr.action, fk.Column, fk.RefTable, fk.RefColumn, tr.value)
	}

	n, err := s.swap.Rewrite(f, func(raw []byte) ([]byte, bool, error) {
		if !matches(raw) {
			return raw, true, nil
		}
		switch tr.action {
		case schema.Cascade:
			return nil, false, nil
		case schema.SetNull:
			clear(f.Layout.Field(raw, idx))
		case schema.SetDefault:
			if err := f.Layout.EncodeField(raw, idx, ref.Columns[idx].Default); err != nil {
				return nil, false, err
			}
		}
		return raw, true, nil
	})
	if err != nil {
		return wrapOp(s.op, fk.RefTable, err)
	}
	s.log.WithField("ref_table", fk.RefTable).Debugf("%s affected %d row(s) where %s = %q", tr.action, n, fk.RefColumn, tr.value)
	return nil
}

// inbound returns the columns of t that foreign keys of other tables (or
// of t itself) point at, loading the referencing tables once per statement.
func (s *statement) inbound(t *schema.Table) (map[string]bool, error) {
	if s.referencing == nil {
		refs, err := s.db.catalog.Referencing(t.Name)
		if err != nil {
			return nil, wrapOp(s.op, t.Name, err)
		}
		s.referencing = append([]*schema.Table{}, refs...)
	}
	cols := make(map[string]bool)
	for _, child := range s.referencing {
		for _, fk := range child.References(t.Name) {
			cols[fk.RefColumn] = true
		}
	}
	return cols, nil
}

// guardInbound rejects removing or changing values that rows of other
// tables still reference through a RESTRICT or NO ACTION foreign key.
// removed maps a column of t to the values leaving it. onUpdate selects
// which action of the referencing keys applies.
func (s *statement) guardInbound(t *schema.Table, removed map[string][]string, onUpdate bool) error {
	if len(removed) == 0 {
		return nil
	}
	if _, err := s.inbound(t); err != nil {
		return err
	}
	for _, child := range s.referencing {
		if child.Name == t.Name {
			child = t
		}
		for _, fk := range child.References(t.Name) {
			action := fk.OnDelete
			if onUpdate {
				action = fk.OnUpdate
			}
			values := removed[fk.RefColumn]
			if !action.Blocks() || len(values) == 0 {
				continue
			}
			if err := s.guardKey(t, child, fk, values); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *statement) guardKey(parent, child *schema.Table, fk schema.ForeignKey, values []string) error {
	idx := child.ColumnIndex(fk.Column)
	numeric := numericPair(child.Columns[idx].Kind, parent.Columns[parent.ColumnIndex(fk.RefColumn)].Kind)
	f := s.rows(child)
	for raw, err := range s.scan(f) {
		if err != nil {
			return wrapOp(s.op, child.Name, err)
		}
		if isNull(child.Columns[idx], f.Layout.Field(raw, idx)) {
			continue
		}
		field := f.Layout.DecodeField(raw, idx)
		for _, v := range values {
			if valuesMatch(numeric, field, v) {
				return violation(s.op, parent.Name, "%s.%s = %q is referenced by %s.%s",
					parent.Name, fk.RefColumn, v, child.Name, fk.Column)
			}
		}
	}
	return nil
}
