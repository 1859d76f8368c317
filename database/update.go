package database

import (
	"slices"

	"flatdb/dberror"
	"flatdb/schema"
)

type assignment struct {
	index int
	value string
}

// Update sets columns of every row matching where and returns how many
// rows matched. A primary key cannot be set empty or to a key another row
// holds; an empty value for any
// other column takes its default and must then satisfy nullability. New
// foreign key values must exist in the referenced table. When a foreign
// key column changes, its OnUpdate action fires with the old value
// against the referenced table. Either every affected file changes or
// none does.
func (db *Database) Update(table string, where Where, set map[string]string) (int, error) {
	s := db.begin("update", table)
	defer s.discard()

	t, err := s.schema(table)
	if err != nil {
		return 0, err
	}
	assigns, err := s.assignments(t, set)
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

	matched := 0
	var triggers []trigger
	removed := make(map[string][]string)
	_, err = s.rewrite(f, func(raw []byte) ([]byte, bool, error) {
		if !m.match(raw) {
			return raw, true, nil
		}
		matched++
		for _, a := range assigns {
			c := t.Columns[a.index]
			old := f.Layout.DecodeField(raw, a.index)
			if valuesMatch(c.Kind.Numeric(), old, a.value) {
				continue
			}
			if fk, ok := t.ForeignKey(c.Name); ok && !isNull(c, f.Layout.Field(raw, a.index)) {
				triggers = collect(triggers, trigger{fk: fk, kind: c.Kind, value: old, action: fk.OnUpdate})
			}
			if inbound[c.Name] {
				removed[c.Name] = append(removed[c.Name], old)
			}
			if err := f.Layout.EncodeField(raw, a.index, a.value); err != nil {
				return nil, false, err
			}
		}
		return raw, true, nil
	})
	if err != nil || matched == 0 {
		return 0, err
	}
	if slices.ContainsFunc(assigns, func(a assignment) bool { return t.Columns[a.index].PrimaryKey }) {
		if err := s.checkUniqueKeys(t, f); err != nil {
			return 0, err
		}
	}

	for _, tr := range triggers {
		if err := s.handleForeignKeyAction(tr); err != nil {
			return 0, err
		}
	}
	if err := s.guardInbound(t, removed, true); err != nil {
		return 0, err
	}
	if err := s.commit(); err != nil {
		return 0, err
	}
	s.log.Debugf("updated %d row(s)", matched)
	return matched, nil
}

// assignments validates set against t and returns it in column order.
func (s *statement) assignments(t *schema.Table, set map[string]string) ([]assignment, error) {
	assigns := make([]assignment, 0, len(set))
	for name, v := range set {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, dberror.New(s.op, dberror.ErrColumnNotFound, "column '%s'", name).WithTable(t.Name)
		}
		c := t.Columns[i]
		if v == "" {
			if c.PrimaryKey {
				return nil, violation(s.op, t.Name, "primary key set empty: '%s'", name)
			}
			v = c.Default
			if v == "" && !c.Nullable {
				return nil, violation(s.op, t.Name, "non-nullable column without value: '%s'", name)
			}
		}
		if err := c.Kind.Check(v); err != nil {
			return nil, wrapOp(s.op, t.Name, err)
		}
		if fk, ok := t.ForeignKey(name); ok && v != "" {
			found, err := s.checkForeignKey(fk.RefTable, fk.RefColumn, v, c.Kind)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, violation(s.op, t.Name, "value %q of '%s' has no match in %s.%s", v, name, fk.RefTable, fk.RefColumn)
			}
		}
		assigns = append(assigns, assignment{index: i, value: v})
	}
	slices.SortFunc(assigns, func(a, b assignment) int { return a.index - b.index })
	return assigns, nil
}
