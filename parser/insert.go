package parser

import (
	"regexp"
	"strings"
)

var insertRe = regexp.MustCompile(`(?is)^INSERT\s+INTO\s+(\w+)\s*(?:\(([^)]*)\)\s*)?VALUES\s*\((.*)\)$`)

func (p *Parser) parseInsert(sql string) (*Statement, error) {
	// INSERT INTO users VALUES (1, 'Alice', 30)
	// INSERT INTO users (ID, Name) VALUES (2, 'Bob')
	matches := insertRe.FindStringSubmatch(sql)
	if len(matches) != 4 {
		return nil, syntaxError("invalid INSERT syntax")
	}

	stmt := &Statement{
		Type:   Insert,
		Name:   matches[1],
		Values: parseValues(matches[3]),
	}
	if strings.TrimSpace(matches[2]) != "" {
		stmt.Fields = splitList(matches[2])
		if len(stmt.Fields) != len(stmt.Values) {
			return nil, syntaxError("%d columns but %d values", len(stmt.Fields), len(stmt.Values))
		}
	}
	return stmt, nil
}
