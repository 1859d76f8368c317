package database

import (
	"strings"

	"flatdb/dberror"
	"flatdb/index"
	"flatdb/schema"
	"flatdb/storage"
)

// Insert appends a row. values are given in column order; an empty value
// takes the column default, and a column that is still empty must be
// nullable. Foreign key values must exist in the referenced table and
// primary keys must be unique.
func (db *Database) Insert(table string, values []string) error {
	s := db.begin("insert", table)
	defer s.discard()

	t, err := s.schema(table)
	if err != nil {
		return err
	}
	if len(values) != len(t.Columns) {
		return dberror.New(s.op, dberror.ErrEncoding, "got %d values for %d columns", len(values), len(t.Columns)).WithTable(table)
	}

	row, err := applyDefaults(s.op, t, values)
	if err != nil {
		return err
	}
	f := s.rows(t)
	raw, err := f.Layout.Encode(row)
	if err != nil {
		return wrapOp(s.op, table, err)
	}
	if err := s.checkReferences(t, row); err != nil {
		return err
	}
	if err := s.checkPrimaryKey(t, row); err != nil {
		return err
	}
	if err := f.Append(raw); err != nil {
		return wrapOp(s.op, table, err)
	}
	s.log.Debug("inserted row")
	return nil
}

// InsertNamed inserts a row given as column name to value. Columns not in
// values are empty.
func (db *Database) InsertNamed(table string, values map[string]string) error {
	t, err := db.GetTable(table)
	if err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for name, v := range values {
		i := t.ColumnIndex(name)
		if i < 0 {
			return dberror.New("insert", dberror.ErrColumnNotFound, "column '%s'", name).WithTable(table)
		}
		row[i] = v
	}
	return db.Insert(table, row)
}

func applyDefaults(op string, t *schema.Table, values []string) ([]string, error) {
	row := append([]string(nil), values...)
	for i, c := range t.Columns {
		if row[i] == "" {
			row[i] = c.Default
		}
		if row[i] != "" {
			continue
		}
		if c.PrimaryKey {
			return nil, violation(op, t.Name, "primary key '%s' is empty", c.Name)
		}
		if !c.Nullable {
			return nil, violation(op, t.Name, "non-nullable column without value: '%s'", c.Name)
		}
	}
	return row, nil
}

// checkPrimaryKey rejects a row whose primary key values are already stored.
func (s *statement) checkPrimaryKey(t *schema.Table, row []string) error {
	keys := primaryKey(t)
	if len(keys) == 0 {
		return nil
	}
	f := s.rows(t)
	for raw, err := range s.scan(f) {
		if err != nil {
			return wrapOp(s.op, t.Name, err)
		}
		dup := true
		for _, i := range keys {
			if !valuesMatch(t.Columns[i].Kind.Numeric(), f.Layout.DecodeField(raw, i), row[i]) {
				dup = false
				break
			}
		}
		if dup {
			return violation(s.op, t.Name, "duplicate primary key %v", pick(row, keys))
		}
	}
	return nil
}

// checkUniqueKeys rejects the current contents of f, as this statement
// sees them, when two rows share a primary key.
func (s *statement) checkUniqueKeys(t *schema.Table, f *storage.RowFile) error {
	keys := primaryKey(t)
	if len(keys) == 0 {
		return nil
	}
	canon := make([]*index.Index, len(keys))
	for j, i := range keys {
		canon[j] = index.New(t.Columns[i].Kind.Numeric())
	}
	seen := index.New(false)
	pos := 0
	for raw, err := range s.scan(f) {
		if err != nil {
			return wrapOp(s.op, t.Name, err)
		}
		key := make([]string, len(keys))
		parts := make([]string, len(keys))
		for j, i := range keys {
			key[j] = f.Layout.DecodeField(raw, i)
			parts[j] = key[j]
			if k, ok := canon[j].Key(key[j]); ok {
				parts[j] = k
			}
		}
		joined := strings.Join(parts, "\x00")
		if seen.Exists(joined) {
			return violation(s.op, t.Name, "duplicate primary key %v", key)
		}
		seen.Add(joined, pos)
		pos++
	}
	return nil
}

func primaryKey(t *schema.Table) []int {
	var keys []int
	for i, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, i)
		}
	}
	return keys
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
