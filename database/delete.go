package database

// Delete removes every row matching where and returns how many were
// removed. For each removed row, every foreign key of the table fires its
// OnDelete action against the referenced table. Values that other tables
// still reference through RESTRICT or NO ACTION keys block the delete.
// Either every affected file changes or none does.
func (db *Database) Delete(table string, where Where) (int, error) {
	s := db.begin("delete", table)
	defer s.discard()

	t, err := s.schema(table)
	if err != nil {
		return 0, err
	}
	f := s.rows(t)
	m, err := where.bind(f.Layout)
	if err != nil {
		return 0, wrapOp(s.op, table, err)
	}
	inbound, err := s.inbound(t)
	if err != nil {
		return 0, err
	}

	var triggers []trigger
	removed := make(map[string][]string)
	deleted, err := s.rewrite(f, func(raw []byte) ([]byte, bool, error) {
		if !m.match(raw) {
			return raw, true, nil
		}
		for _, fk := range t.ForeignKeys {
			i := t.ColumnIndex(fk.Column)
			if isNull(t.Columns[i], f.Layout.Field(raw, i)) {
				continue
			}
			v := f.Layout.DecodeField(raw, i)
			triggers = collect(triggers, trigger{fk: fk, kind: t.Columns[i].Kind, value: v, action: fk.OnDelete})
		}
		for col := range inbound {
			removed[col] = append(removed[col], f.Layout.DecodeField(raw, t.ColumnIndex(col)))
		}
		return nil, false, nil
	})
	if err != nil || deleted == 0 {
		return 0, err
	}

	for _, tr := range triggers {
		if err := s.handleForeignKeyAction(tr); err != nil {
			return 0, err
		}
	}
	if err := s.guardInbound(t, removed, false); err != nil {
		return 0, err
	}
	if err := s.commit(); err != nil {
		return 0, err
	}
	s.log.Debugf("deleted %d row(s)", deleted)
	return deleted, nil
}
