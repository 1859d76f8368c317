package storage

import (
	"flatdb/dberror"
	"flatdb/schema"
)

// Migrator converts rows written for plan.Old into rows for plan.New.
// Compatible columns are copied byte for byte, changed columns are decoded
// and re-encoded, and added columns receive their default value.
type Migrator struct {
	plan *schema.Plan
	from *Layout
	to   *Layout
}

// NewMigrator prepares the row conversion for plan.
func NewMigrator(plan *schema.Plan) *Migrator {
	return &Migrator{
		plan: plan,
		from: NewLayout(plan.Old),
		to:   NewLayout(plan.New),
	}
}

// MigrateRow returns the converted copy of raw.
func (m *Migrator) MigrateRow(raw []byte) ([]byte, error) {
	out := make([]byte, m.to.Width())
	for i, src := range m.plan.Sources {
		switch src.Status {
		case schema.Added:
			if err := m.to.EncodeField(out, i, m.plan.New.Columns[i].Default); err != nil {
				return nil, err
			}
		case schema.Compatible:
			copy(m.to.Field(out, i), m.from.Field(raw, src.From))
		case schema.MigrationNeeded:
			value := m.from.DecodeField(raw, src.From)
			if err := m.to.EncodeField(out, i, value); err != nil {
				return nil, dberror.New("migrate", dberror.ErrEncoding,
					"value %q of column '%s' does not fit %s", value, m.plan.New.Columns[i].Name, m.plan.New.Columns[i].Kind)
			}
		}
	}
	return out, nil
}

// Rewrite returns a RewriteFunc applying the migration to every row.
func (m *Migrator) Rewrite() RewriteFunc {
	return func(raw []byte) ([]byte, bool, error) {
		out, err := m.MigrateRow(raw)
		return out, true, err
	}
}
