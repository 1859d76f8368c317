package parser

import (
	"regexp"
)

var (
	updateRe     = regexp.MustCompile(`(?is)^UPDATE\s+(\w+)\s+SET\s+(.+?)(?:\s+WHERE\s+(.+))?$`)
	assignmentRe = regexp.MustCompile(`(?s)^(\w+)\s*=\s*(.*)$`)
)

func (p *Parser) parseUpdate(sql string) (*Statement, error) {
	// UPDATE users SET name = 'Bob', Age = 31 WHERE id = 1
	matches := updateRe.FindStringSubmatch(sql)
	if len(matches) != 4 {
		return nil, syntaxError("invalid UPDATE syntax")
	}

	stmt := &Statement{Type: Update, Name: matches[1], Set: make(map[string]string)}
	for _, item := range splitList(matches[2]) {
		a := assignmentRe.FindStringSubmatch(item)
		if a == nil {
			return nil, syntaxError("invalid assignment %q", item)
		}
		if _, dup := stmt.Set[a[1]]; dup {
			return nil, syntaxError("column %s assigned twice", a[1])
		}
		stmt.Set[a[1]] = parseValue(a[2])
	}
	if matches[3] != "" {
		where, err := ParseWhere(matches[3])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}
