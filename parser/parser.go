package parser

import (
	"strings"

	"flatdb/database"
	"flatdb/dberror"
	"flatdb/schema"
)

// Type identifies what a statement does.
type Type string

const (
	CreateDatabase Type = "CREATE_DATABASE"
	DropDatabase   Type = "DROP_DATABASE"
	ShowDatabases  Type = "SHOW_DATABASES"
	UseDatabase    Type = "USE"
	ShowTables     Type = "SHOW_TABLES"
	Describe       Type = "DESCRIBE"
	CreateTable    Type = "CREATE_TABLE"
	DropTable      Type = "DROP_TABLE"
	TruncateTable  Type = "TRUNCATE_TABLE"
	RenameTable    Type = "RENAME_TABLE"
	AlterTable     Type = "ALTER_TABLE"
	AddForeignKey  Type = "ADD_FOREIGN_KEY"
	Insert         Type = "INSERT"
	Select         Type = "SELECT"
	Join           Type = "JOIN"
	Aggregate      Type = "AGGREGATE"
	Update         Type = "UPDATE"
	Delete         Type = "DELETE"
)

// Statement is a parsed statement. Which fields are set depends on Type.
type Statement struct {
	Type Type
	// Name is the database for database statements and the table otherwise.
	Name string

	// CREATE TABLE
	Table *schema.Table

	// Fields is the select list, or the column list of an INSERT.
	Fields  []string
	Values  []string
	Where   database.Where
	OrderBy []database.SortKey
	Set     map[string]string
	Join    *JoinCondition

	// Func is COUNT, SUM, AVG, MIN or MAX; Column is its argument, "*" for COUNT(*).
	Func   string
	Column string

	// ALTER TABLE
	Ops        []schema.MigrationOp
	ForeignKey schema.ForeignKey
	NewName    string
}

// JoinCondition represents the ON clause of a join.
type JoinCondition struct {
	LeftTable   string
	LeftColumn  string
	RightTable  string
	RightColumn string
}

// Parser turns statement text into Statements.
type Parser struct{}

// New creates a new parser
func New() *Parser {
	return &Parser{}
}

var statements = []struct {
	prefix string
	parse  func(p *Parser, sql string) (*Statement, error)
}{
	{"CREATE DATABASE", (*Parser).parseCreateDatabase},
	{"DROP DATABASE", (*Parser).parseDropDatabase},
	{"SHOW DATABASES", (*Parser).parseShowDatabases},
	{"USE", (*Parser).parseUse},
	{"SHOW TABLES", (*Parser).parseShowTables},
	{"DESCRIBE", (*Parser).parseDescribe},
	{"DESC", (*Parser).parseDescribe},
	{"CREATE TABLE", (*Parser).parseCreateTable},
	{"DROP TABLE", (*Parser).parseDropTable},
	{"TRUNCATE", (*Parser).parseTruncate},
	{"RENAME TABLE", (*Parser).parseRenameTable},
	{"ALTER TABLE", (*Parser).parseAlter},
	{"INSERT INTO", (*Parser).parseInsert},
	{"SELECT", (*Parser).parseSelect},
	{"UPDATE", (*Parser).parseUpdate},
	{"DELETE FROM", (*Parser).parseDelete},
}

// Parse parses one statement. A trailing semicolon is ignored.
func (p *Parser) Parse(sql string) (*Statement, error) {
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	sql = strings.TrimSpace(sql)
	head := strings.ToUpper(strings.Join(strings.Fields(sql), " "))

	for _, s := range statements {
		if head == s.prefix || strings.HasPrefix(head, s.prefix+" ") {
			return s.parse(p, sql)
		}
	}
	return nil, syntaxError("unsupported statement %q", firstWord(sql))
}

func syntaxError(format string, args ...any) error {
	return dberror.New("parse", dberror.ErrSyntax, format, args...)
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
