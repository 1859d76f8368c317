package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"flatdb/dberror"

	json "github.com/goccy/go-json"
)

// Permission names one kind of access to a table.
type Permission string

const (
	Insert Permission = "insert"
	Update Permission = "update"
	Create Permission = "create"
	Delete Permission = "delete"
	Alter  Permission = "alter"
	Select Permission = "select"
)

// Permissions lists every valid permission.
var Permissions = []Permission{Insert, Update, Create, Delete, Alter, Select}

// Any matches every database or table name in a grant.
const Any = "*"

const (
	DefaultAdmin    = "admin"
	DefaultPassword = "admin123"
)

// ParsePermission validates a permission name.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !slices.Contains(Permissions, p) {
		return "", dberror.New("", dberror.ErrPermission, "invalid permission %q", s)
	}
	return p, nil
}

// User is one account of the store.
type User struct {
	Name     string                             `json:"name"`
	Salt     string                             `json:"salt"`
	Password string                             `json:"password"`
	Admin    bool                               `json:"admin"`
	Grants   map[string]map[string][]Permission `json:"grants,omitempty"`
}

func (u *User) setPassword(password string) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	u.Salt = hex.EncodeToString(salt)
	u.Password = digest(u.Salt, password)
	return nil
}

func digest(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

// Store holds every user of one users file.
type Store struct {
	path  string
	users map[string]*User
}

// Open loads the users file at path. A missing file gives a store holding
// only the default admin; nothing is written until Save.
func Open(path string) (*Store, error) {
	s := &Store{path: path, users: make(map[string]*User)}
	err := s.Load()
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.seed(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seed() error {
	if err := s.AddUser(DefaultAdmin, DefaultPassword, true); err != nil {
		return err
	}
	for _, p := range Permissions {
		if err := s.Grant(DefaultAdmin, Any, Any, p); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the users file location.
func (s *Store) Path() string { return s.path }

// Users returns the user names in order.
func (s *Store) Users() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddUser creates a user. Names are unique.
func (s *Store) AddUser(name, password string, admin bool) error {
	if name == "" {
		return dberror.New("add user", dberror.ErrInvalidName, "empty user name")
	}
	if _, ok := s.users[name]; ok {
		return dberror.New("add user", dberror.ErrAlreadyExists, "user '%s'", name)
	}
	u := &User{Name: name, Admin: admin}
	if err := u.setPassword(password); err != nil {
		return dberror.Wrap("add user", dberror.ErrIO, err)
	}
	s.users[name] = u
	return nil
}

// SetPassword replaces the password of an existing user.
func (s *Store) SetPassword(name, password string) error {
	u, err := s.user("set password", name)
	if err != nil {
		return err
	}
	if err := u.setPassword(password); err != nil {
		return dberror.Wrap("set password", dberror.ErrIO, err)
	}
	return nil
}

// ValidatePassword reports whether password belongs to the user.
// Unknown users never validate.
func (s *Store) ValidatePassword(name, password string) bool {
	u, ok := s.users[name]
	if !ok {
		return false
	}
	return digest(u.Salt, password) == u.Password
}

// Grant gives a user a permission on db.table. Either name may be Any.
func (s *Store) Grant(name, db, table string, p Permission) error {
	if _, err := ParsePermission(string(p)); err != nil {
		return err
	}
	u, err := s.user("grant", name)
	if err != nil {
		return err
	}
	if u.Grants == nil {
		u.Grants = make(map[string]map[string][]Permission)
	}
	if u.Grants[db] == nil {
		u.Grants[db] = make(map[string][]Permission)
	}
	if !slices.Contains(u.Grants[db][table], p) {
		u.Grants[db][table] = append(u.Grants[db][table], p)
	}
	return nil
}

// Revoke takes back a permission given by Grant with the same db and table.
// It reports whether the permission was held.
func (s *Store) Revoke(name, db, table string, p Permission) (bool, error) {
	u, err := s.user("revoke", name)
	if err != nil {
		return false, err
	}
	perms := u.Grants[db][table]
	i := slices.Index(perms, p)
	if i < 0 {
		return false, nil
	}
	u.Grants[db][table] = slices.Delete(perms, i, i+1)
	return true, nil
}

// Check reports whether the user may perform p on db.table. Admins may do
// anything; other users need a grant naming db (or Any) and table (or Any).
func (s *Store) Check(name, db, table string, p Permission) bool {
	u, ok := s.users[name]
	if !ok {
		return false
	}
	if u.Admin {
		return true
	}
	for _, d := range []string{db, Any} {
		for _, t := range []string{table, Any} {
			if slices.Contains(u.Grants[d][t], p) {
				return true
			}
		}
	}
	return false
}

// IsAdmin reports whether name is an existing admin.
func (s *Store) IsAdmin(name string) bool {
	u, ok := s.users[name]
	return ok && u.Admin
}

// Authorize is Check returning dberror.ErrPermission on refusal.
func (s *Store) Authorize(name, db, table string, p Permission) error {
	if s.Check(name, db, table, p) {
		return nil
	}
	return dberror.New("authorize", dberror.ErrPermission, "user '%s' may not %s %s.%s", name, p, db, table)
}

func (s *Store) user(op, name string) (*User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, dberror.New(op, dberror.ErrPermission, "user '%s' does not exist", name)
	}
	return u, nil
}

// Save writes every user to the users file.
func (s *Store) Save() error {
	users := make([]*User, 0, len(s.users))
	for _, name := range s.Users() {
		users = append(users, s.users[name])
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return dberror.Wrap("save users", dberror.ErrEncoding, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return dberror.Wrap("save users", dberror.ErrIO, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return dberror.Wrap("save users", dberror.ErrIO, err)
	}
	return nil
}

// Load replaces the users in memory with the contents of the users file.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return dberror.Wrap("load users", dberror.ErrIO, err)
	}
	var users []*User
	if err := json.Unmarshal(data, &users); err != nil {
		return dberror.Wrap("load users", dberror.ErrEncoding, err)
	}
	s.users = make(map[string]*User, len(users))
	for _, u := range users {
		s.users[u.Name] = u
	}
	return nil
}
