package parser

// single parses statements of the form "<prefix> name".
func single(sql string, typ Type, prefix ...string) (*Statement, error) {
	c := newCursor(sql)
	if err := c.expect(prefix...); err != nil {
		return nil, err
	}
	name, err := c.name()
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, syntaxError("unexpected %q after %s", c.peek(), name)
	}
	return &Statement{Type: typ, Name: name}, nil
}

func bare(sql string, typ Type, words ...string) (*Statement, error) {
	c := newCursor(sql)
	if err := c.expect(words...); err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, syntaxError("unexpected %q", c.peek())
	}
	return &Statement{Type: typ}, nil
}

func (p *Parser) parseCreateDatabase(sql string) (*Statement, error) {
	return single(sql, CreateDatabase, "CREATE", "DATABASE")
}

func (p *Parser) parseDropDatabase(sql string) (*Statement, error) {
	return single(sql, DropDatabase, "DROP", "DATABASE")
}

func (p *Parser) parseShowDatabases(sql string) (*Statement, error) {
	return bare(sql, ShowDatabases, "SHOW", "DATABASES")
}

func (p *Parser) parseUse(sql string) (*Statement, error) {
	return single(sql, UseDatabase, "USE")
}

func (p *Parser) parseShowTables(sql string) (*Statement, error) {
	return bare(sql, ShowTables, "SHOW", "TABLES")
}

func (p *Parser) parseDescribe(sql string) (*Statement, error) {
	c := newCursor(sql)
	if !c.accept("DESCRIBE") && !c.accept("DESC") {
		return nil, syntaxError("expected DESCRIBE")
	}
	return single(c.rest(), Describe)
}

func (p *Parser) parseDropTable(sql string) (*Statement, error) {
	return single(sql, DropTable, "DROP", "TABLE")
}

func (p *Parser) parseTruncate(sql string) (*Statement, error) {
	c := newCursor(sql)
	c.accept("TRUNCATE")
	c.accept("TABLE")
	return single(c.rest(), TruncateTable)
}

func (p *Parser) parseRenameTable(sql string) (*Statement, error) {
	c := newCursor(sql)
	if err := c.expect("RENAME", "TABLE"); err != nil {
		return nil, err
	}
	return renameTo(c)
}

// renameTo parses "old TO new" for RENAME TABLE.
func renameTo(c *cursor) (*Statement, error) {
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
	if !c.done() {
		return nil, syntaxError("unexpected %q", c.peek())
	}
	return &Statement{Type: RenameTable, Name: oldName, NewName: newName}, nil
}
