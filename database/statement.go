package database

import (
	"iter"

	"github.com/sirupsen/logrus"

	"flatdb/schema"
	"flatdb/storage"
)

// statement holds the state of one mutating operation: schemas loaded so
// far and the temp files staged for every table it touches. Either all
// staged files are committed or none are.
type statement struct {
	db     *Database
	op     string
	table  string
	swap   *storage.SwapSet
	loaded map[string]*schema.Table
	log    logrus.FieldLogger

	// tables with a foreign key into table, loaded on first use
	referencing []*schema.Table
}

func (db *Database) begin(op, table string) *statement {
	return &statement{
		db:     db,
		op:     op,
		table:  table,
		swap:   storage.NewSwapSet(),
		loaded: make(map[string]*schema.Table),
		log:    db.log.WithFields(logrus.Fields{"op": op, "table": table}),
	}
}

// schema loads a table schema once per statement.
func (s *statement) schema(name string) (*schema.Table, error) {
	if t, ok := s.loaded[name]; ok {
		return t, nil
	}
	t, err := s.db.catalog.GetTable(name)
	if err != nil {
		return nil, wrapOp(s.op, name, err)
	}
	s.loaded[name] = t
	return t, nil
}

func (s *statement) rows(t *schema.Table) *storage.RowFile {
	return s.db.catalog.Rows(t)
}

// scan reads the current contents of a table as this statement sees them.
func (s *statement) scan(f *storage.RowFile) iter.Seq2[[]byte, error] {
	return s.swap.Scan(f)
}

func (s *statement) rewrite(f *storage.RowFile, fn storage.RewriteFunc) (int, error) {
	n, err := s.swap.Rewrite(f, fn)
	return n, wrapOp(s.op, s.table, err)
}

func (s *statement) commit() error {
	files := s.swap.Len()
	if err := s.swap.Commit(); err != nil {
		return wrapOp(s.op, s.table, err)
	}
	s.log.Debugf("committed %d file(s)", files)
	return nil
}

func (s *statement) discard() {
	if s.swap.Len() > 0 {
		s.log.Debugf("discarded %d staged file(s)", s.swap.Len())
	}
	s.swap.Discard()
}
