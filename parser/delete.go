package parser

import (
	"regexp"
)

var deleteRe = regexp.MustCompile(`(?is)^DELETE\s+FROM\s+(\w+)(?:\s+WHERE\s+(.+))?$`)

func (p *Parser) parseDelete(sql string) (*Statement, error) {
	// DELETE FROM users WHERE id = 1
	// DELETE FROM users
	matches := deleteRe.FindStringSubmatch(sql)
	if len(matches) != 3 {
		return nil, syntaxError("invalid DELETE syntax")
	}

	stmt := &Statement{Type: Delete, Name: matches[1]}
	if matches[2] != "" {
		where, err := ParseWhere(matches[2])
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}
