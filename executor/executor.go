package executor

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"flatdb/aggregate"
	"flatdb/auth"
	"flatdb/database"
	"flatdb/dberror"
	"flatdb/parser"
	"flatdb/schema"

	"github.com/sirupsen/logrus"
)

// Output is what a statement produced: a message, rows, or a schema.
type Output struct {
	Message string           `json:"message,omitempty"`
	Result  *database.Result `json:"result,omitempty"`
	Table   *schema.Table    `json:"table,omitempty"`
}

// String renders rows as an aligned table, a schema as one line per
// column, and anything else as its message.
func (o *Output) String() string {
	switch {
	case o.Result != nil:
		return formatRows(o.Result)
	case o.Table != nil:
		return formatTable(o.Table)
	}
	return o.Message
}

// Option configures an Executor.
type Option func(*Executor)

// WithAuth makes the executor check user's permissions before each statement.
func WithAuth(store *auth.Store, user string) Option {
	return func(e *Executor) {
		e.auth = store
		e.user = user
	}
}

// WithLogger sets the logger statements are reported to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Executor) { e.log = log }
}

// Executor executes parsed statements against a session
type Executor struct {
	session *database.Session
	parser  *parser.Parser
	auth    *auth.Store
	user    string
	log     logrus.FieldLogger
}

// New creates a new executor
func New(session *database.Session, opts ...Option) *Executor {
	e := &Executor{session: session, parser: parser.New()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		e.log = l
	}
	return e
}

// Run parses and executes one statement.
func (e *Executor) Run(sql string) (*Output, error) {
	stmt, err := e.parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Execute(stmt)
}

// Execute executes a parsed statement
func (e *Executor) Execute(stmt *parser.Statement) (*Output, error) {
	if err := e.authorize(stmt); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"type": stmt.Type, "name": stmt.Name}).Debug("executing statement")

	switch stmt.Type {
	case parser.CreateDatabase:
		if err := e.session.CreateDatabase(stmt.Name); err != nil {
			return nil, err
		}
		return message("Database '%s' created", stmt.Name), nil
	case parser.DropDatabase:
		if err := e.session.DropDatabase(stmt.Name); err != nil {
			return nil, err
		}
		return message("Database '%s' dropped", stmt.Name), nil
	case parser.ShowDatabases:
		names, err := e.session.Databases()
		if err != nil {
			return nil, err
		}
		return list("Database", names), nil
	case parser.UseDatabase:
		if err := e.session.Use(stmt.Name); err != nil {
			return nil, err
		}
		return message("Using database '%s'", stmt.Name), nil
	}

	db, err := e.session.Current()
	if err != nil {
		return nil, err
	}
	switch stmt.Type {
	case parser.ShowTables:
		names, err := db.Tables()
		if err != nil {
			return nil, err
		}
		return list("Table", names), nil
	case parser.Describe:
		t, err := db.Describe(stmt.Name)
		if err != nil {
			return nil, err
		}
		return &Output{Table: t}, nil
	case parser.CreateTable:
		if err := db.CreateTable(stmt.Name, stmt.Table); err != nil {
			return nil, err
		}
		return message("Table '%s' created", stmt.Name), nil
	case parser.DropTable:
		if err := db.DropTable(stmt.Name); err != nil {
			return nil, err
		}
		return message("Table '%s' dropped", stmt.Name), nil
	case parser.TruncateTable:
		if err := db.Truncate(stmt.Name); err != nil {
			return nil, err
		}
		return message("Table '%s' truncated", stmt.Name), nil
	case parser.RenameTable:
		if err := db.RenameTable(stmt.Name, stmt.NewName); err != nil {
			return nil, err
		}
		return message("Table '%s' renamed to '%s'", stmt.Name, stmt.NewName), nil
	case parser.AlterTable:
		if err := db.Alter(stmt.Name, stmt.Ops...); err != nil {
			return nil, err
		}
		return message("Table '%s' altered", stmt.Name), nil
	case parser.AddForeignKey:
		if err := db.AddForeignKey(stmt.Name, stmt.ForeignKey); err != nil {
			return nil, err
		}
		return message("Table '%s' altered", stmt.Name), nil
	case parser.Insert:
		return e.executeInsert(db, stmt)
	case parser.Select:
		return e.executeSelect(db, stmt)
	case parser.Join:
		j := stmt.Join
		res, err := db.InnerJoin(j.LeftTable, j.RightTable, j.LeftColumn, j.RightColumn, stmt.Fields)
		if err != nil {
			return nil, err
		}
		return &Output{Result: res}, nil
	case parser.Aggregate:
		return e.executeAggregate(db, stmt)
	case parser.Update:
		count, err := db.Update(stmt.Name, stmt.Where, stmt.Set)
		if err != nil {
			return nil, err
		}
		return message("Updated %d row(s)", count), nil
	case parser.Delete:
		count, err := db.Delete(stmt.Name, stmt.Where)
		if err != nil {
			return nil, err
		}
		return message("Deleted %d row(s)", count), nil
	default:
		return nil, dberror.New("execute", dberror.ErrSyntax, "unknown statement type: %s", stmt.Type)
	}
}

func (e *Executor) executeInsert(db *database.Database, stmt *parser.Statement) (*Output, error) {
	if stmt.Fields == nil {
		if err := db.Insert(stmt.Name, stmt.Values); err != nil {
			return nil, err
		}
	} else {
		named := make(map[string]string, len(stmt.Fields))
		for i, f := range stmt.Fields {
			named[f] = stmt.Values[i]
		}
		if err := db.InsertNamed(stmt.Name, named); err != nil {
			return nil, err
		}
	}
	return message("Inserted 1 row"), nil
}

func (e *Executor) executeSelect(db *database.Database, stmt *parser.Statement) (*Output, error) {
	var (
		res *database.Result
		err error
	)
	if len(stmt.OrderBy) > 0 {
		res, err = db.OrderBy(stmt.Name, stmt.OrderBy, stmt.Fields, stmt.Where)
	} else {
		res, err = db.Select(stmt.Name, stmt.Fields, stmt.Where)
	}
	if err != nil {
		return nil, err
	}
	return &Output{Result: res}, nil
}

func (e *Executor) executeAggregate(db *database.Database, stmt *parser.Statement) (*Output, error) {
	column := stmt.Column
	if column == "*" {
		t, err := db.GetTable(stmt.Name)
		if err != nil {
			return nil, err
		}
		column = t.Columns[0].Name
	}
	res, err := db.Select(stmt.Name, []string{column}, stmt.Where)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		values[i] = r[0]
	}

	var out string
	switch stmt.Func {
	case "COUNT":
		out = strconv.Itoa(aggregate.Count(values, stmt.Column == "*"))
	case "SUM":
		sum, err := aggregate.Sum(values)
		if err != nil {
			return nil, err
		}
		out = strconv.FormatInt(sum, 10)
	case "AVG":
		avg, err := aggregate.Average(values)
		if err != nil {
			return nil, err
		}
		out = strconv.FormatFloat(avg, 'f', -1, 64)
	case "MIN", "MAX":
		reduce := aggregate.Min
		if stmt.Func == "MAX" {
			reduce = aggregate.Max
		}
		v, ok, err := reduce(values)
		if err != nil {
			return nil, err
		}
		if ok {
			out = strconv.FormatInt(v, 10)
		}
	}
	heading := fmt.Sprintf("%s(%s)", stmt.Func, stmt.Column)
	return &Output{Result: &database.Result{Columns: []string{heading}, Rows: [][]string{{out}}}}, nil
}

// authorize checks the permission a statement needs on its target table.
// Without an auth store every statement is allowed.
func (e *Executor) authorize(stmt *parser.Statement) error {
	if e.auth == nil {
		return nil
	}
	perm, ok := permissionFor(stmt.Type)
	if !ok {
		return nil
	}
	dbName, table := e.session.CurrentName(), stmt.Name
	switch stmt.Type {
	case parser.CreateDatabase, parser.DropDatabase:
		dbName, table = stmt.Name, auth.Any
	case parser.ShowTables:
		table = auth.Any
	}
	if err := e.auth.Authorize(e.user, dbName, table, perm); err != nil {
		return err
	}
	if stmt.Join != nil {
		return e.auth.Authorize(e.user, dbName, stmt.Join.RightTable, perm)
	}
	return nil
}

func permissionFor(t parser.Type) (auth.Permission, bool) {
	switch t {
	case parser.CreateDatabase, parser.CreateTable:
		return auth.Create, true
	case parser.DropDatabase, parser.DropTable, parser.TruncateTable, parser.Delete:
		return auth.Delete, true
	case parser.AlterTable, parser.AddForeignKey, parser.RenameTable:
		return auth.Alter, true
	case parser.Insert:
		return auth.Insert, true
	case parser.Update:
		return auth.Update, true
	case parser.Select, parser.Join, parser.Aggregate, parser.Describe, parser.ShowTables:
		return auth.Select, true
	}
	return "", false
}

func message(format string, args ...any) *Output {
	return &Output{Message: fmt.Sprintf(format, args...)}
}

func list(heading string, names []string) *Output {
	res := &database.Result{Columns: []string{heading}}
	for _, n := range names {
		res.Rows = append(res.Rows, []string{n})
	}
	return &Output{Result: res}
}

// Format rows for display
func formatRows(res *database.Result) string {
	if len(res.Rows) == 0 {
		return "No rows returned"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatTable(t *schema.Table) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Field\tType\tWidth\tKey\tNull\tDefault\tReferences")
	for _, c := range t.Columns {
		key, null, ref := "", "NO", ""
		if c.PrimaryKey {
			key = "PRI"
		}
		if c.Nullable {
			null = "YES"
		}
		if fk, ok := t.ForeignKey(c.Name); ok {
			ref = fmt.Sprintf("%s(%s) ON DELETE %s ON UPDATE %s", fk.RefTable, fk.RefColumn, fk.OnDelete, fk.OnUpdate)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n", c.Name, c.Kind, c.Width, key, null, c.Default, ref)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
