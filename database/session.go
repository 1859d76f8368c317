package database

import (
	"flatdb/dberror"
)

// Session tracks the database selected by a client. It replaces any
// process-wide notion of a current database: each client holds its own.
type Session struct {
	root    string
	opts    []Option
	current *Database
}

// NewSession starts a session over the databases under root.
func NewSession(root string, opts ...Option) *Session {
	return &Session{root: root, opts: opts}
}

// Root returns the directory holding the databases.
func (s *Session) Root() string { return s.root }

// Use selects a database.
func (s *Session) Use(name string) error {
	db, err := Open(s.root, name, s.opts...)
	if err != nil {
		return err
	}
	s.current = db
	return nil
}

// Current returns the selected database.
func (s *Session) Current() (*Database, error) {
	if s.current == nil {
		return nil, dberror.New("session", dberror.ErrDatabaseNotFound, "no database selected")
	}
	return s.current, nil
}

// CurrentName returns the selected database name, or "".
func (s *Session) CurrentName() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name()
}

// CreateDatabase creates a database under the session root.
func (s *Session) CreateDatabase(name string) error {
	return CreateDatabase(s.root, name)
}

// DropDatabase drops a database, deselecting it if it is current.
func (s *Session) DropDatabase(name string) error {
	if err := DropDatabase(s.root, name); err != nil {
		return err
	}
	if s.CurrentName() == name {
		s.current = nil
	}
	return nil
}

// Databases lists the databases under the session root.
func (s *Session) Databases() ([]string, error) {
	return ListDatabases(s.root)
}
