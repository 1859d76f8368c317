package parser

import (
	"regexp"

	"flatdb/schema"
)

var alterRe = regexp.MustCompile(`(?is)^ALTER\s+TABLE\s+(\w+)\s+(.+)$`)

func (p *Parser) parseAlter(sql string) (*Statement, error) {
	// ALTER TABLE users ADD COLUMN Email str(64) DEFAULT 'none'
	// ALTER TABLE users DROP COLUMN Email, Age
	// ALTER TABLE users MODIFY COLUMN Age number
	// ALTER TABLE users RENAME COLUMN Age TO Years
	// ALTER TABLE users CHANGE COLUMN Name Label str(64)
	// ALTER TABLE users ADD FOREIGN KEY (DeptID) REFERENCES Departments(ID) ON DELETE CASCADE
	// ALTER TABLE users DROP FOREIGN KEY DeptID
	// ALTER TABLE users RENAME TO people
	matches := alterRe.FindStringSubmatch(sql)
	if len(matches) != 3 {
		return nil, syntaxError("invalid ALTER TABLE syntax")
	}
	table := matches[1]
	c := newCursor(matches[2])
	stmt := &Statement{Type: AlterTable, Name: table}

	switch {
	case c.accept("ADD", "FOREIGN", "KEY"):
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
		stmt.Type = AddForeignKey
		stmt.ForeignKey = fk

	case c.accept("DROP", "FOREIGN", "KEY"):
		column := c.next()
		if column == "(" {
			column = c.next()
			if err := c.expect(")"); err != nil {
				return nil, err
			}
		}
		if column == "" {
			return nil, syntaxError("DROP FOREIGN KEY needs a column")
		}
		stmt.Ops = []schema.MigrationOp{&schema.DropForeignKeyOp{Column: column}}

	case c.accept("ADD"):
		c.accept("COLUMN")
		var cols []schema.Column
		for {
			col, _, err := parseColumn(c, false)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
			if !c.accept(",") {
				break
			}
		}
		stmt.Ops = []schema.MigrationOp{&schema.AddColumnOp{Columns: cols}}

	case c.accept("DROP"):
		c.accept("COLUMN")
		var names []string
		for {
			name, err := c.name()
			if err != nil {
				return nil, err
			}
			names = append(names, name)
			if !c.accept(",") {
				break
			}
		}
		stmt.Ops = []schema.MigrationOp{&schema.RemoveColumnOp{Names: names}}

	case c.accept("MODIFY"):
		c.accept("COLUMN")
		col, _, err := parseColumn(c, false)
		if err != nil {
			return nil, err
		}
		stmt.Ops = []schema.MigrationOp{&schema.ModifyColumnOp{NewDef: col}}

	case c.accept("RENAME", "COLUMN"):
		oldName, err := c.name()
		if err != nil {
			return nil, err
		}
		if err := c.expect("TO"); err != nil {
			return nil, err
		}
		newName, err := c.name()
		if err != nil {
			return nil, err
		}
		stmt.Ops = []schema.MigrationOp{&schema.RenameColumnOp{OldName: oldName, NewName: newName}}

	case c.accept("CHANGE"):
		c.accept("COLUMN")
		oldName, err := c.name()
		if err != nil {
			return nil, err
		}
		col, _, err := parseColumn(c, false)
		if err != nil {
			return nil, err
		}
		stmt.Ops = []schema.MigrationOp{&schema.ChangeColumnOp{OldName: oldName, NewDef: col}}

	case c.accept("RENAME"):
		c.accept("TO")
		newName, err := c.name()
		if err != nil {
			return nil, err
		}
		stmt.Type = RenameTable
		stmt.NewName = newName

	default:
		return nil, syntaxError("unsupported ALTER TABLE action near %q", c.peek())
	}

	if !c.done() {
		return nil, syntaxError("unexpected %q", c.peek())
	}
	return stmt, nil
}
