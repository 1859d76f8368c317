package parser

import (
	"regexp"
	"strconv"

	"flatdb/schema"
)

var createTableRe = regexp.MustCompile(`(?is)^CREATE\s+TABLE\s+(\w+)\s*\((.*)\)$`)

func (p *Parser) parseCreateTable(sql string) (*Statement, error) {
	// CREATE TABLE Employees (ID int PRIMARY KEY, Name str(32) NOT NULL,
	//   DeptID int REFERENCES Departments(ID) ON DELETE CASCADE)
	matches := createTableRe.FindStringSubmatch(sql)
	if len(matches) != 3 {
		return nil, syntaxError("invalid CREATE TABLE syntax")
	}

	var (
		columns []schema.Column
		fks     []schema.ForeignKey
		pk      []string
	)
	for _, item := range splitList(matches[2]) {
		c := newCursor(item)
		switch {
		case c.accept("PRIMARY", "KEY"):
			names, err := nameList(c)
			if err != nil {
				return nil, err
			}
			pk = append(pk, names...)
		case c.accept("FOREIGN", "KEY"):
			names, err := nameList(c)
			if err != nil {
				return nil, err
			}
			if len(names) != 1 {
				return nil, syntaxError("a foreign key binds exactly one column")
			}
			if err := c.expect("REFERENCES"); err != nil {
				return nil, err
			}
			fk, err := parseReference(c, names[0])
			if err != nil {
				return nil, err
			}
			fks = append(fks, fk)
		default:
			col, fk, err := parseColumn(c, true)
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
			if fk != nil {
				fks = append(fks, *fk)
			}
		}
		if !c.done() {
			return nil, syntaxError("unexpected %q in %q", c.peek(), item)
		}
	}

	for _, name := range pk {
		found := false
		for i := range columns {
			if columns[i].Name == name {
				columns[i].PrimaryKey = true
				columns[i].Nullable = false
				found = true
			}
		}
		if !found {
			return nil, syntaxError("primary key column %q is not defined", name)
		}
	}

	t, err := schema.New(columns, fks)
	if err != nil {
		return nil, err
	}
	t.Name = matches[1]
	return &Statement{Type: CreateTable, Name: matches[1], Table: t}, nil
}

// parseColumn parses "name type[(width)] [constraints]". Columns are
// nullable unless they are part of the primary key or marked NOT NULL.
// Text columns without a width get schema.IdentifierSize.
func parseColumn(c *cursor, allowReference bool) (schema.Column, *schema.ForeignKey, error) {
	var col schema.Column
	name, err := c.name()
	if err != nil {
		return col, nil, err
	}
	typ, err := c.name()
	if err != nil {
		return col, nil, err
	}
	kind, err := schema.ParseKind(typ)
	if err != nil {
		return col, nil, syntaxError("column %s: %v", name, err)
	}
	col = schema.Column{Name: name, Kind: kind, Nullable: true}

	if c.accept("(") {
		w, err := strconv.Atoi(c.next())
		if err != nil || w <= 0 {
			return col, nil, syntaxError("column %s: invalid width", name)
		}
		col.Width = w
		if err := c.expect(")"); err != nil {
			return col, nil, err
		}
	} else if kind == schema.Text {
		col.Width = schema.IdentifierSize
	}

	var fk *schema.ForeignKey
	for !c.done() && c.peek() != "," {
		switch {
		case c.accept("PRIMARY", "KEY"):
			col.PrimaryKey = true
			col.Nullable = false
		case c.accept("NOT", "NULL"):
			col.Nullable = false
		case c.accept("NULL"):
			col.Nullable = !col.PrimaryKey
		case c.accept("DEFAULT"):
			col.Default = parseValue(c.next())
		case allowReference && c.accept("REFERENCES"):
			ref, err := parseReference(c, name)
			if err != nil {
				return col, nil, err
			}
			fk = &ref
		default:
			return col, nil, syntaxError("column %s: unexpected %q", name, c.peek())
		}
	}
	return col, fk, nil
}

// parseReference parses "table(column) [ON DELETE action] [ON UPDATE action]"
// after the REFERENCES keyword.
func parseReference(c *cursor, column string) (schema.ForeignKey, error) {
	fk := schema.ForeignKey{Column: column}
	var err error
	if fk.RefTable, err = c.name(); err != nil {
		return fk, err
	}
	cols, err := nameList(c)
	if err != nil {
		return fk, err
	}
	if len(cols) != 1 {
		return fk, syntaxError("a foreign key references exactly one column")
	}
	fk.RefColumn = cols[0]

	for {
		switch {
		case c.accept("ON", "DELETE"):
			if fk.OnDelete, err = parseAction(c); err != nil {
				return fk, err
			}
		case c.accept("ON", "UPDATE"):
			if fk.OnUpdate, err = parseAction(c); err != nil {
				return fk, err
			}
		default:
			return fk, nil
		}
	}
}

func parseAction(c *cursor) (schema.Action, error) {
	switch {
	case c.accept("RESTRICT"):
		return schema.Restrict, nil
	case c.accept("NO", "ACTION"):
		return schema.NoAction, nil
	case c.accept("CASCADE"):
		return schema.Cascade, nil
	case c.accept("SET", "NULL"):
		return schema.SetNull, nil
	case c.accept("SET", "DEFAULT"):
		return schema.SetDefault, nil
	}
	return 0, syntaxError("unknown foreign key action near %q", c.peek())
}

// nameList parses "(a, b, ...)".
func nameList(c *cursor) ([]string, error) {
	if err := c.expect("("); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := c.name()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if c.accept(")") {
			return names, nil
		}
		if err := c.expect(","); err != nil {
			return nil, err
		}
	}
}
