package schema

// CompatibilityStatus says how a column of a migrated schema is filled
// from an old row.
type CompatibilityStatus string

const (
	// Compatible columns are copied byte for byte.
	Compatible CompatibilityStatus = "COMPATIBLE"
	// MigrationNeeded columns are decoded with the old kind and encoded with the new one.
	MigrationNeeded CompatibilityStatus = "MIGRATION_NEEDED"
	// Added columns are filled with their default value.
	Added CompatibilityStatus = "ADDED"
)

// ColumnSource describes where column i of the new schema comes from.
type ColumnSource struct {
	From   int
	Status CompatibilityStatus
}

// Plan maps rows of Old onto rows of New.
type Plan struct {
	Old     *Table
	New     *Table
	Sources []ColumnSource
}

func newPlan(old, next *Table, origin []int) *Plan {
	p := &Plan{Old: old, New: next, Sources: make([]ColumnSource, len(origin))}
	for i, from := range origin {
		src := ColumnSource{From: from, Status: Added}
		if from >= 0 {
			oc, nc := old.Columns[from], next.Columns[i]
			src.Status = Compatible
			if oc.Kind != nc.Kind || oc.Width != nc.Width {
				src.Status = MigrationNeeded
			}
		}
		p.Sources[i] = src
	}
	return p
}

// RowsChanged reports whether existing row bytes must be rewritten.
// A pure rename or flag change leaves them untouched.
func (p *Plan) RowsChanged() bool {
	if len(p.Sources) != len(p.Old.Columns) {
		return true
	}
	for i, src := range p.Sources {
		if src.From != i || src.Status != Compatible {
			return true
		}
	}
	return false
}
